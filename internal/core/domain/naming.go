package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// versionMarker separates a base identifier from its revision number.
const versionMarker = "_v"

// EncodeRevisionName builds the object key for a revision.
// Revision 0 is "{base}.{ext}", revision n is "{base}_v{n}.{ext}".
func EncodeRevisionName(base string, n RevisionNumber, format Format) string {
	if n <= 0 {
		return base + "." + format.Extension()
	}
	return base + versionMarker + strconv.Itoa(int(n)) + "." + format.Extension()
}

// DecodeRevisionName tests name against one specific base and format.
// Names that do not match "^{base}(_v(\d+))?\.{ext}$" are reported as
// unrelated (ok == false). Suffixes with leading zeros, a zero suffix, or
// non-digit characters are also unrelated, which keeps decoding the exact
// inverse of EncodeRevisionName.
func DecodeRevisionName(name, base string, format Format) (RevisionNumber, bool) {
	if base == "" || !strings.HasPrefix(name, base) {
		return 0, false
	}
	rest := strings.TrimPrefix(name, base)

	ext := "." + format.Extension()
	if !strings.HasSuffix(rest, ext) {
		return 0, false
	}
	rest = strings.TrimSuffix(rest, ext)

	if rest == "" {
		return 0, true
	}
	if !strings.HasPrefix(rest, versionMarker) {
		return 0, false
	}

	digits := strings.TrimPrefix(rest, versionMarker)
	if digits == "" || digits[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return RevisionNumber(n), true
}

// ValidateBase checks that base can be used verbatim in object keys
// without colliding with another base's suffixed names.
func ValidateBase(base string) error {
	if strings.TrimSpace(base) == "" {
		return fmt.Errorf("%w: base identifier is empty", ErrInvalidInput)
	}
	if base != strings.TrimSpace(base) {
		return fmt.Errorf("%w: base identifier %q has surrounding whitespace", ErrInvalidInput, base)
	}
	if strings.ContainsAny(base, "/\\") {
		return fmt.Errorf("%w: base identifier %q contains a path separator", ErrInvalidInput, base)
	}
	if hasVersionSuffix(base) {
		return fmt.Errorf("%w: base identifier %q ends with a version suffix", ErrInvalidInput, base)
	}
	return nil
}

// hasVersionSuffix reports whether s ends in "_v" followed by digits.
func hasVersionSuffix(s string) bool {
	i := strings.LastIndex(s, versionMarker)
	if i < 0 {
		return false
	}
	digits := s[i+len(versionMarker):]
	if digits == "" {
		return false
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return false
		}
	}
	return true
}
