package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ValidSignature checks the forwarding provider's delivery signature:
// hex(HMAC-SHA256(key, timestamp||token)).
func ValidSignature(signingKey, timestamp, token, signature string) bool {
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp + token))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
