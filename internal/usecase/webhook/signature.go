package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader is the HTTP header carrying the provider's HMAC.
const SignatureHeader = "X-Media-Signature"

// Sign computes the hex HMAC-SHA256 of the payload under the shared secret.
// Exposed so tests and local tooling can forge valid deliveries.
func Sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the signature header against the payload using a
// constant-time comparison. The optional "sha256=" prefix is accepted.
func VerifySignature(payload []byte, signature string, secret []byte) bool {
	signature = strings.TrimPrefix(signature, "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}
