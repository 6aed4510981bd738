package catalog

import (
	"regexp"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains returns an ILIKE pattern matching search literally anywhere in
// the value. Backslash is the escape character.
func likeContains(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// regexContains returns a case-insensitive regex matching search literally.
// PostgREST rewrites * in like patterns, so its backend filters with imatch.
func regexContains(search string) string {
	return regexp.QuoteMeta(search)
}
