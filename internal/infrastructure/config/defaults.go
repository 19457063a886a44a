package config

import (
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
)

const defaultSystemPrompt = "You are a professional software engineer. Output ONLY valid pure code. Do NOT include markdown or ```."

// DefaultConfig describes the arXiv CS Daily web app: a FastAPI backend, two
// Jinja2 templates and a clipboard helper.
func DefaultConfig() *Config {
	files := DefaultFiles()
	return &Config{
		TargetScore:          36,
		MaxRounds:            3,
		CorruptionGuardRatio: artifact.DefaultCorruptionGuardRatio,
		MaxSubScore:          evaluation.DefaultMaxSubScore,
		MaxScore:             evaluation.DefaultMaxSubScore * float64(len(files)),
		AI: AIConfig{
			Provider:     "dashscope",
			Model:        "qwen-plus",
			APIKeyEnv:    "DASHSCOPE_API_KEY",
			SystemPrompt: defaultSystemPrompt,
			Temperature:  0.2,
			MaxTokens:    2048,
			MaxRetries:   2,
			RetryDelayMs: 1000,
			TimeoutSec:   300,
		},
		Store: StoreConfig{
			Backend: BackendFilesystem,
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				Namespace: "default",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Files: files,
		Scaffold: map[string]string{
			"requirements.txt": "fastapi\nuvicorn[standard]\njinja2\nfeedparser\nrequests\npytest\n",
			"README.md":        "# arXiv CS Daily\n\nGenerated and refined by autorefine.\n\nRun:\n\n    uvicorn webapp.main:app --reload\n",
		},
	}
}

// DefaultFiles returns the tracked files of the default project.
func DefaultFiles() []artifact.FileSpec {
	return []artifact.FileSpec{
		{
			Key:         "main",
			Path:        "webapp/main.py",
			Description: "FastAPI backend serving the paper list",
			Prompt: `Build a FastAPI backend named main.py for "arXiv CS Daily" with these strict rules:

1) Import fetch_category_rss from tools.arxiv_tools and use it to fetch papers. Import StaticFiles.
2) CATEGORIES = ["cs.AI","cs.CV","cs.CL","cs.LG","cs.NE"]
3) Route '/' renders templates/index.html with request, categories, selected, papers,
   where papers is a dict mapping category -> list of paper dicts.
4) TEMPLATES_DIR = BASE_DIR / "templates" using absolute paths, and
   templates = Jinja2Templates(directory=str(TEMPLATES_DIR))
5) STATIC_DIR = Path(__file__).parent / "static"; create it if missing and mount it at '/static'.
6) Keep paper['abs_link'] and paper['pdf_link'] unchanged.
7) Do not await synchronous functions.
Provide minimal, well-formed Python code only.`,
			Rubric: `- Must import fetch_category_rss from tools.arxiv_tools and StaticFiles
- Must define TEMPLATES_DIR using absolute Path
- Must initialize templates = Jinja2Templates(directory=str(TEMPLATES_DIR))
- Must mount static directory at '/static'
- Route '/' must render index.html
- Variable papers must be dict(category -> list)
- Must NOT use 'await' on synchronous functions`,
		},
		{
			Key:         "index",
			Path:        "webapp/templates/index.html",
			Description: "two-column paper list page",
			Prompt: `Create an index.html Jinja2 template.

Input: categories (list), selected (string), papers (dict category -> list of paper dicts with
title, authors, summary, published, arxiv_tag, abs_link, pdf_link, bibtex, citation).

For each paper show the title linking to paper.abs_link, authors joined by ', ', the summary,
the published date, the tag as [arxiv_tag] and a PDF link to paper.pdf_link.
Add two buttons: Copy BibTeX with data-bib="{{ paper.bibtex | tojson }}" and Copy Citation with
data-cite="{{ paper.citation | tojson }}", both calling copyFromData(btn).
Do not use filters like |e('js').
Layout: fixed category list on the left, scrollable papers on the right, stacked on small screens.
Output only valid HTML.`,
			Rubric: `- Two-column layout: fixed category list left, scrollable paper list right
- Each paper shows title link to paper.abs_link, comma separated authors, summary, published date, tag as [arxiv_tag], PDF link to paper.pdf_link
- Must contain Copy BibTeX (data-bib) and Copy Citation (data-cite) buttons
- Buttons must call copyFromData(btn)
- Must NOT use filters like |e('js')`,
		},
		{
			Key:         "paper",
			Path:        "webapp/templates/paper.html",
			Description: "single paper detail page",
			Prompt: `Create a minimal paper.html Jinja2 template that expects a variable 'paper' with
title, authors (list), published, arxiv_tag, abs_link, pdf_link, bibtex, citation.
Show the title linking to paper.abs_link (target _blank), authors joined by comma, published and tag,
and a pre block with the bibtex plus a copy button using data-bib and copyFromData(btn).
Include /static/copy.js. Output only valid HTML.`,
			Rubric: `- Must link title to paper.abs_link
- Must show authors and published + tag
- Must include BibTeX block with copy button
- Must use copyFromData(btn)
- Must include /static/copy.js`,
		},
		{
			Key:         "js",
			Path:        "webapp/static/copy.js",
			Description: "clipboard helper",
			Prompt: `Create copy.js (plain JavaScript) defining a global function copyFromData(btn) that
reads btn.dataset.bib or btn.dataset.cite, decodes the value if it is JSON-escaped, writes it with
navigator.clipboard.writeText, and briefly changes the button text to "Copied!" before reverting.
Provide only valid JavaScript source.`,
			Rubric: `- Must define global function copyFromData(btn)
- Must read btn.dataset.bib or btn.dataset.cite
- Must safely handle JSON-escaped strings
- Must use navigator.clipboard.writeText
- Must temporarily change text to "Copied!" then revert`,
		},
	}
}
