package artifact

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultCorruptionGuardRatio is the minimum fraction of the previous trimmed
// length a replacement must keep.
const DefaultCorruptionGuardRatio = 0.4

var (
	// ErrEmptyReplacement is returned for replacements that are blank after trimming.
	ErrEmptyReplacement = errors.New("replacement is empty")
	// ErrReplacementTooShort is returned when a replacement shrinks below the guard ratio.
	ErrReplacementTooShort = errors.New("replacement too short, possible corruption")
)

// CheckReplacement decides whether newText may replace oldText. Lengths are
// counted in runes over whitespace-trimmed text.
func CheckReplacement(oldText, newText string, ratio float64) error {
	next := strings.TrimSpace(newText)
	if next == "" {
		return ErrEmptyReplacement
	}
	prev := strings.TrimSpace(oldText)
	if float64(utf8.RuneCountInString(next)) < ratio*float64(utf8.RuneCountInString(prev)) {
		return ErrReplacementTooShort
	}
	return nil
}
