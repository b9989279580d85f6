package domain

import (
	"strconv"
	"strings"
)

// ParseCodeCounter returns the counter of a code written exactly the way the
// sequence generator writes it: prefix followed by at least three digits,
// zero-padded to three and never beyond. Under that form a longer code always
// carries a larger counter.
func ParseCodeCounter(code, prefix string) (int, bool) {
	tail, ok := strings.CutPrefix(code, prefix)
	if !ok || len(tail) < 3 {
		return 0, false
	}
	for i := 0; i < len(tail); i++ {
		if tail[i] < '0' || tail[i] > '9' {
			return 0, false
		}
	}
	if len(tail) > 3 && tail[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, false
	}
	return n, true
}
