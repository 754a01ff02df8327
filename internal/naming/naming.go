package naming

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"inspectpozo/core-go/internal/tagging"
)

const (
	PrefixWell  = "pz"
	PrefixDrain = "sm"
	PrefixOther = "es"
	PrefixPipe  = "tub"

	// Width is the zero-padded suffix width shared by every prefix.
	Width = 4

	// MaxSuffix bounds the numeric part of a caller-supplied id.
	MaxSuffix = 99_999_999
)

// PrefixForKind returns the identifier prefix for a structure kind.
func PrefixForKind(kind tagging.Kind) string {
	switch kind {
	case tagging.KindWell:
		return PrefixWell
	case tagging.KindDrain:
		return PrefixDrain
	default:
		return PrefixOther
	}
}

// NextID returns prefix + the zero-padded successor of the largest numeric
// suffix among existing ids that start with prefix (case-insensitive). Ids
// whose remainder is not a non-negative integer below math.MaxInt are ignored,
// so the successor never wraps.
func NextID(existing []string, prefix string, width int) string {
	maxNum := 0
	for _, id := range existing {
		n, ok := SuffixNumber(id, prefix)
		if !ok {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}
	return prefix + fmt.Sprintf("%0*d", width, maxNum+1)
}

// SuffixNumber parses the numeric remainder of id after prefix.
func SuffixNumber(id, prefix string) (int, bool) {
	if len(id) <= len(prefix) || !strings.EqualFold(id[:len(prefix)], prefix) {
		return 0, false
	}
	rest := id[len(prefix):]
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n == math.MaxInt {
		return 0, false
	}
	return n, true
}

// Canonical validates a caller-supplied id against prefix and returns it with
// the prefix lowercased, so "PZ0001" and "pz0001" name the same record.
func Canonical(id, prefix string) (string, bool) {
	if n, ok := SuffixNumber(id, prefix); !ok || n > MaxSuffix {
		return "", false
	}
	return prefix + id[len(prefix):], true
}
