package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures Make.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	replace   map[string]string
}

// MaxLength caps the slug at n runes; the cut never leaves a trailing separator.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Replace substitutes words before slugifying, e.g. {"&": "and"}.
func Replace(replacements map[string]string) Option {
	return func(c *config) { c.replace = replacements }
}

// Make turns s into a lowercase URL-safe slug. Diacritics are folded to their
// base letter, every other non-alphanumeric run becomes one separator.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	for old, repl := range cfg.replace {
		s = strings.ReplaceAll(s, old, " "+repl+" ")
	}

	s = fold(s)

	var b strings.Builder
	b.Grow(len(s))

	pendingSep := false
	count := 0
	for _, r := range strings.ToLower(s) {
		if !isSlugRune(r) {
			pendingSep = count > 0
			continue
		}

		if pendingSep {
			if cfg.maxLength > 0 && count+len(cfg.separator)+1 > cfg.maxLength {
				break
			}
			b.WriteString(cfg.separator)
			count += len(cfg.separator)
			pendingSep = false
		}

		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}
		b.WriteRune(r)
		count++
	}

	return b.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold strips combining marks and maps letters without a decomposition.
func fold(s string) string {
	out, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		out = s
	}
	return specialLetters.Replace(out)
}

var specialLetters = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "AE", "ø", "o", "Ø", "O",
	"œ", "oe", "Œ", "OE", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D",
	"þ", "th", "Þ", "TH",
)
