package patient

import (
	"regexp"
	"strings"
)

// Surface forms are tried in order; the first pattern that matches anywhere
// in the query wins. Later forms are kept for readability of intent even
// though the bare form already covers them.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)patient\s+(p\d{3})`),
	regexp.MustCompile(`(?i)(p\d{3})`),
	regexp.MustCompile(`(?i)pt\s+(p\d{3})`),
	regexp.MustCompile(`(?i)case\s+(p\d{3})`),
}

var exactID = regexp.MustCompile(`(?i)^p\d{3}$`)

// ExtractID returns the patient identifier mentioned in query, normalized to
// uppercase ("P003"), or "" when none is present. When several ids appear,
// only the first pattern match is honored.
func ExtractID(query string) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(query); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// NormalizeID accepts an identifier supplied on its own, not embedded in a
// sentence. It must be exactly P followed by three digits.
func NormalizeID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if !exactID.MatchString(id) {
		return "", false
	}
	return strings.ToUpper(id), true
}
