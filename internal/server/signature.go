package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signatureHeader = "Ashby-Signature"

// verifySignature checks the HMAC-SHA256 signature Ashby computes over the
// raw request body. The header carries "sha256=<hex digest>".
func verifySignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}

	digest, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}

	got, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(got, mac.Sum(nil))
}

// SignBody computes the signature header value for a payload. Used by the
// test webhook tooling to produce valid deliveries.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
