// Package reduce implements the debug line-reduction tool: it strips
// variable identifiers from a failing raw log line and replaces them
// with stable placeholders, so that otherwise-distinct failure messages
// collapse into countable clusters.
package reduce

import "regexp"

// Each pattern below targets one class of variable token. Order
// matters: dictionary/query fragments are replaced before the more
// generic hex/number passes would otherwise chew into them.
var (
	dictPattern  = regexp.MustCompile(`\{[^{}]*\}`)
	queryPattern = regexp.MustCompile(`SELECT\s+fl_result\([^)]*\)[^;]*;?`)
	docIDPattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9_]*::[0-9a-fA-F-]{8,}\b`)
	revIDPattern = regexp.MustCompile(`\b#?\d+-[0-9a-fA-F]{32}\b`)
	quotedPattern = regexp.MustCompile(`'[^']*'`)
	hexPattern    = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	numberPattern = regexp.MustCompile(`\b\d+(\.\d+)?\b`)

	domainPrefix = regexp.MustCompile(`^\S+\s+[A-Za-z]+\s+(Error|Warning|Info|Verbose|Debug):?\s*`)
)

// Reduce normalizes line into a cluster key: domain and level prefixes
// are stripped, then dictionary fragments, SQL fl_result queries,
// doc-id and rev-id patterns, single-quoted literals, hex-looking
// tokens, and numeric substrings are each replaced with a fixed
// placeholder.
func Reduce(line string) string {
	s := domainPrefix.ReplaceAllString(line, "")
	s = dictPattern.ReplaceAllString(s, "{DICT}")
	s = queryPattern.ReplaceAllString(s, "{QUERY}")
	s = docIDPattern.ReplaceAllString(s, "{DOCID}")
	s = revIDPattern.ReplaceAllString(s, "{REVID}")
	s = quotedPattern.ReplaceAllString(s, "{QUOTED}")
	s = hexPattern.ReplaceAllString(s, "{HEX}")
	s = numberPattern.ReplaceAllString(s, "{NUMBER}")
	return s
}
