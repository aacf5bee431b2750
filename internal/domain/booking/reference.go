package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ReferencePrefix starts every booking reference.
const ReferencePrefix = "BK-"

var referencePattern = regexp.MustCompile(`^BK-(\d+)$`)

// FormatReference renders n as a zero-padded reference, e.g. 7 -> "BK-007".
func FormatReference(n int) string {
	return fmt.Sprintf("%s%03d", ReferencePrefix, n)
}

// ParseReferenceNumber extracts the numeric suffix of a reference.
func ParseReferenceNumber(ref string) (int, bool) {
	m := referencePattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextReferenceNumber returns the number that follows latest. An empty or
// unparseable latest reference restarts numbering at 1.
func NextReferenceNumber(latest string) int {
	n, ok := ParseReferenceNumber(latest)
	if !ok {
		return 1
	}
	return n + 1
}

// NextReference returns the reference that follows latest.
func NextReference(latest string) string {
	return FormatReference(NextReferenceNumber(latest))
}
