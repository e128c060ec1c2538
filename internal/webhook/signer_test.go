package webhook_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avschaefer/cloudhire-ai-api/internal/webhook"
)

func TestSignerHeaders(t *testing.T) {
	t.Parallel()

	signer := webhook.NewSigner("topsecret", "go-v1")
	body := []byte(`{"job_id":"abc","status":"completed"}`)
	now := time.Unix(1756300000, 0)

	headers := signer.Headers(body, now)
	require.NotNil(t, headers)

	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, headers[webhook.HeaderSignature])
	assert.Equal(t, "1756300000", headers[webhook.HeaderTimestamp])
	assert.Equal(t, "go-v1", headers[webhook.HeaderKeyID])
}

func TestSignerEmptySecretDisablesSigning(t *testing.T) {
	t.Parallel()

	signer := webhook.NewSigner("", "go-v1")
	assert.Nil(t, signer.Headers([]byte("body"), time.Now()))
	assert.False(t, signer.Verify([]byte("body"), "sha256=00"))
}

func TestSignerVerify(t *testing.T) {
	t.Parallel()

	signer := webhook.NewSigner("topsecret", "go-v1")
	body := []byte(`{"job_id":"abc"}`)
	headers := signer.Headers(body, time.Now())

	assert.True(t, signer.Verify(body, headers[webhook.HeaderSignature]))
	assert.False(t, signer.Verify([]byte("tampered"), headers[webhook.HeaderSignature]))
	assert.False(t, signer.Verify(body, "sha256=deadbeef"))
	assert.False(t, signer.Verify(body, "md5=abc"))
	assert.False(t, signer.Verify(body, "sha256=zz"))
}
