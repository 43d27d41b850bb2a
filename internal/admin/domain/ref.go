package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// newReference builds an opaque human-quotable reference such as
// "TR20250817A3F29B1C": prefix, date, then 8 uppercase hex characters.
func newReference(prefix string, now time.Time) string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("domain: reading random bytes: " + err.Error())
	}
	return prefix + now.UTC().Format("20060102") + strings.ToUpper(hex.EncodeToString(b[:]))
}
