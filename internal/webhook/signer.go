package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signature header names, shared with the calling system's verifier.
const (
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"
	HeaderKeyID     = "X-Key-Id"
)

// Signer produces the HMAC-SHA256 signature headers for webhook payloads.
// The calling system verifies the signature before trusting the payload.
type Signer struct {
	secret []byte
	keyID  string
}

// NewSigner creates a Signer. An empty secret disables signing; Headers
// then returns nil and the webhook is sent unsigned.
func NewSigner(secret, keyID string) *Signer {
	return &Signer{secret: []byte(secret), keyID: keyID}
}

// Headers returns the signature headers for the given raw payload body.
func (s *Signer) Headers(body []byte, now time.Time) map[string]string {
	if len(s.secret) == 0 {
		return nil
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	return map[string]string{
		HeaderSignature: "sha256=" + sig,
		HeaderTimestamp: strconv.FormatInt(now.Unix(), 10),
		HeaderKeyID:     s.keyID,
	}
}

// Verify reports whether the signature header matches the body. Exposed for
// the calling system's convenience and for tests; comparison is
// constant time.
func (s *Signer) Verify(body []byte, signatureHeader string) bool {
	if len(s.secret) == 0 {
		return false
	}

	const prefix = "sha256="
	if len(signatureHeader) <= len(prefix) || signatureHeader[:len(prefix)] != prefix {
		return false
	}

	want, err := hex.DecodeString(signatureHeader[len(prefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
