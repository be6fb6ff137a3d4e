package database

import (
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/crypto/sha3"
)

// NormalizeQuery returns the canonical form of a query used for
// fingerprinting. Runs of whitespace collapse to one space and text outside
// single-quoted literals is lower-cased, so formatting and keyword case do
// not matter. Literal contents are kept verbatim.
func NormalizeQuery(soql string) string {
	var b strings.Builder
	b.Grow(len(soql))

	inLiteral := false
	escaped := false
	pendingSpace := false

	for _, r := range strings.TrimSpace(soql) {
		if inLiteral {
			b.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '\'':
				inLiteral = false
			}
			continue
		}

		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		if r == '\'' {
			inLiteral = true
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Fingerprint returns the hex SHA3-256 digest of the normalized query.
func Fingerprint(soql string) string {
	sum := sha3.Sum256([]byte(NormalizeQuery(soql)))
	return hex.EncodeToString(sum[:])
}
