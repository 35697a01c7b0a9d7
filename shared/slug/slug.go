// Package slug turns post file names into stable, filesystem safe post
// identifiers.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalid     = regexp.MustCompile(`[^a-z0-9._-]+`)
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// markdownExts are stripped from file names by FromFile.
var markdownExts = []string{".md", ".markdown", ".mkd", ".txt"}

// From converts s into a lowercase ASCII slug. Accents are dropped, runs of
// other characters become a single hyphen.
func From(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	result = strings.ToLower(result)
	result = invalid.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-.")
}

// FromFile derives a slug from the base name of path, without its markdown
// extension.
func FromFile(path string) string {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range markdownExts {
		if ext == e {
			base = strings.TrimSuffix(base, filepath.Ext(base))
			break
		}
	}
	return From(base)
}
