package application

import (
	"encoding/json"
	"fmt"
	"strings"

	infraAI "github.com/felixgeelhaar/autorefine/pkg/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
)

const patchMarker = "---"

// Patch holds proposed full replacements per tracked key.
type Patch map[artifact.Key]string

// Keys returns the patched keys in layout order.
func (p Patch) Keys(layout *artifact.Layout) []artifact.Key {
	var out []artifact.Key
	for _, k := range layout.Keys() {
		if _, ok := p[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// ParsePatch splits a response of ---<label>--- blocks. Labels resolve
// through the layout (key, base name or path); unknown labels and any text
// before the first marker are dropped. A repeated label keeps the last block.
func ParsePatch(text string, layout *artifact.Layout) Patch {
	patch := Patch{}

	var (
		current artifact.Key
		inBlock bool
		buf     []string
	)
	flush := func() {
		if inBlock && current != "" {
			if block := infraAI.StripCodeFences(strings.Join(buf, "\n")); block != "" {
				patch[current] = block
			}
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if label, ok := markerLabel(line); ok {
			flush()
			inBlock = true
			current, _ = layout.Resolve(label)
			continue
		}
		buf = append(buf, strings.TrimRight(line, "\r"))
	}
	flush()

	return patch
}

// markerLabel recognises a ---label--- line. Bare dash rules are content.
func markerLabel(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= 2*len(patchMarker) {
		return "", false
	}
	if !strings.HasPrefix(trimmed, patchMarker) || !strings.HasSuffix(trimmed, patchMarker) {
		return "", false
	}
	label := strings.TrimSpace(trimmed[len(patchMarker) : len(trimmed)-len(patchMarker)])
	if label == "" || strings.Trim(label, "-") == "" || strings.ContainsAny(label, " \t") {
		return "", false
	}
	return label, true
}

// PatchPrompt asks for targeted fixes of every tracked file in one response.
func PatchPrompt(report evaluation.Report, current artifact.Artifact, layout *artifact.Layout) string {
	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		reportJSON = []byte(report.Summary())
	}

	var b strings.Builder
	b.WriteString("You are a professional software engineer.\n\n")
	b.WriteString("You must ONLY apply targeted fixes based on the evaluation report.\n")
	b.WriteString("Do NOT rewrite everything.\nDo NOT delete working code.\n\n")
	fmt.Fprintf(&b, "Evaluation Report:\n%s\n\nFiles follow.\n\n", reportJSON)
	for _, f := range layout.Files() {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", f.Path, current[f.Key])
	}
	b.WriteString("Rules:\n")
	b.WriteString("1. Keep all unrelated code unchanged.\n")
	b.WriteString("2. Fix only reported errors and warnings.\n")
	b.WriteString("3. If a file is already correct, output it unchanged.\n")
	b.WriteString("4. NEVER return empty files.\n")
	b.WriteString("5. Output pure code only, no markdown, no commentary.\n\n")
	b.WriteString("Return results structured exactly like:\n\n")
	for _, k := range layout.Keys() {
		fmt.Fprintf(&b, "%s%s%s\n(full code)\n", patchMarker, k, patchMarker)
	}
	return b.String()
}
