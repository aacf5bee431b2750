package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment.paid"}`)
	now := time.Unix(1_760_000_000, 0)
	valid := Sign(body, "whsec", now)

	tests := []struct {
		name    string
		header  string
		body    []byte
		secret  string
		now     time.Time
		wantErr bool
	}{
		{"valid", valid, body, "whsec", now, false},
		{"valid within tolerance", valid, body, "whsec", now.Add(4 * time.Minute), false},
		{"expired", valid, body, "whsec", now.Add(6 * time.Minute), true},
		{"wrong secret", valid, body, "other", now, true},
		{"tampered body", valid, []byte(`{"id":"evt_1","type":"payment.paid","x":1}`), "whsec", now, true},
		{"empty header", "", body, "whsec", now, true},
		{"malformed header", "garbage", body, "whsec", now, true},
		{"bad timestamp", "t=abc,v1=00", body, "whsec", now, true},
		{"non-hex signature", "t=1760000000,v1=zz", body, "whsec", now, true},
		{"no secret configured", valid, body, "", now, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.header, tt.body, tt.secret, DefaultSignatureTolerance, tt.now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifySignature_AcceptsAnyListedSignature(t *testing.T) {
	body := []byte(`{}`)
	now := time.Unix(1_760_000_000, 0)
	header := "t=1760000000,v1=deadbeef," + Sign(body, "whsec", now)[len("t=1760000000,"):]

	assert.NoError(t, VerifySignature(header, body, "whsec", DefaultSignatureTolerance, now))
}

func TestVerifySignature_ExpiredOnlyWhenAuthentic(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"payment.paid"}`)
	signedAt := time.Unix(1_760_000_000, 0)
	later := signedAt.Add(10 * time.Minute)

	err := VerifySignature(Sign(body, "whsec", signedAt), body, "whsec", DefaultSignatureTolerance, later)
	assert.ErrorIs(t, err, ErrSignatureExpired)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// A forged signature outside the window is a mismatch, never an expiry.
	err = VerifySignature(Sign(body, "other", signedAt), body, "whsec", DefaultSignatureTolerance, later)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.NotErrorIs(t, err, ErrSignatureExpired)

	err = VerifySignature(Sign(body, "whsec", signedAt), []byte(`{}`), "whsec", DefaultSignatureTolerance, later)
	assert.NotErrorIs(t, err, ErrSignatureExpired)
}
