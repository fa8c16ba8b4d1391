package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxTimestampSkew bounds how stale a delivery may be before it is rejected
// as a possible replay.
const maxTimestampSkew = 5 * time.Minute

// Verifier validates that inbound webhook requests were signed by Slack
// with the app's signing secret.
type Verifier struct {
	SigningSecret string
	// Now is the clock used for the replay-window check. Defaults to time.Now.
	Now func() time.Time
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(signingSecret string) *Verifier {
	return &Verifier{SigningSecret: signingSecret}
}

// Verify reports whether signature matches the v0 HMAC-SHA256 of the raw
// request body and timestamp header. It returns false for a missing secret,
// an unparseable or stale timestamp, or a signature mismatch. Callers must
// not distinguish between the failure modes in their response.
func (v *Verifier) Verify(body []byte, timestamp, signature string) bool {
	if v.SigningSecret == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}

	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxTimestampSkew {
		return false
	}

	mac := hmac.New(sha256.New, []byte(v.SigningSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal is constant time.
	return hmac.Equal([]byte(expected), []byte(signature))
}
