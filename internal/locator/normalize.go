package locator

import "strings"

// separators are dropped by normalize so that "St. Larry's" and "st larrys"
// compare equal.
var separators = strings.NewReplacer(
	"'", "",
	"’", "",
	".", "",
	"-", "",
	"_", "",
	" ", "",
	"\t", "",
)

// fold lower-cases and trims s.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalize folds s and strips punctuation and separators.
func normalize(s string) string {
	return separators.Replace(fold(s))
}
