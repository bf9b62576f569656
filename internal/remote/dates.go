package remote

import (
	"regexp"
	"strings"
	"time"
)

// Folder names are matched against two date conventions. Pattern order is
// the only disambiguation rule: the year-first form wins when a name could
// satisfy both.
var (
	yearFirstPattern  = regexp.MustCompile(`^\d{4}[-_]\d{1,2}[-_]\d{1,2}$`)
	monthFirstPattern = regexp.MustCompile(`^\d{1,2}[-_]\d{1,2}[-_]\d{4}$`)
)

// parseFolderDate parses a folder name as YYYY[-_]MM[-_]DD or
// MM[-_]DD[-_]YYYY. Names matching neither form, and names whose fields do
// not form a real calendar date, are excluded from the date-folder set.
func parseFolderDate(name string) (time.Time, bool) {
	name = strings.TrimSpace(name)
	normalized := strings.ReplaceAll(name, "_", "-")

	if yearFirstPattern.MatchString(name) {
		if t, err := time.Parse("2006-1-2", normalized); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if monthFirstPattern.MatchString(name) {
		if t, err := time.Parse("1-2-2006", normalized); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	return time.Time{}, false
}
