package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lowerCaser = cases.Lower(language.Und)

// CanonicalFileName normalizes a file name for hashing so that byte-level
// unicode variants of the same name dedupe to one content key
func CanonicalFileName(name string) string {
	name = strings.TrimSpace(name)
	name = norm.NFC.String(name)
	return lowerCaser.String(name)
}

// ContentKey hashes file bytes together with the canonical file name
// the pair (ContentKey, toolName) identifies one processing attempt
func ContentKey(data []byte, fileName string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte(CanonicalFileName(fileName)))
	return hex.EncodeToString(h.Sum(nil))
}
