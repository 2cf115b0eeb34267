package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the base64 HMAC-SHA256 digest of body under the channel secret.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature reports whether signature matches the digest of body under
// the channel secret. Comparison is constant time.
func ValidateSignature(channelSecret, signature string, body []byte) bool {
	if channelSecret == "" || signature == "" {
		return false
	}

	expected := Sign(channelSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
