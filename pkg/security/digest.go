package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeContact lower-cases and trims an email address or phone number.
func NormalizeContact(contact string) string {
	return strings.ToLower(strings.TrimSpace(contact))
}

// BindCode returns the hex SHA-256 of "<normalized contact>::<code>".
// The digest ties a one-time code to the contact it was issued for.
func BindCode(contact, code string) string {
	return SHA256Hex(NormalizeContact(contact) + "::" + code)
}

// SHA256Hex returns the lowercase hex digest of value.
func SHA256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
