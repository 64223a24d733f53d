package sqldb

import (
	"strconv"
	"strings"
)

// RebindDollar rewrites ? placeholders to $1, $2, ... for PostgreSQL. The
// shared queries never contain a literal question mark.
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
