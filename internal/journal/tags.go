package journal

import (
	"strings"

	"github.com/julianstephens/mindbloom/internal/constants"
)

// NormalizeTags trims labels, drops empties and duplicates (first occurrence wins) and
// falls back to the default tag when nothing remains.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return []string{constants.DefaultJournalTag}
	}
	return out
}

// ParseTags splits a comma-separated list as typed on the command line.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}
