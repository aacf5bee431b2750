package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the gateway's signature over a notification body.
const SignatureHeader = "X-Gateway-Signature"

// DefaultSignatureTolerance bounds the age of a signed notification.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	// ErrInvalidSignature is returned when a notification cannot be authenticated.
	ErrInvalidSignature = errors.New("invalid gateway signature")
	// ErrSignatureExpired is returned for an authentic signature whose
	// timestamp falls outside the tolerance. It wraps ErrInvalidSignature.
	ErrSignatureExpired = fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
)

// VerifySignature checks a "t=<unix>,v1=<hex>" header against
// HMAC-SHA256("<t>.<body>") keyed by secret. The timestamp is checked only
// after the HMAC matches, so ErrSignatureExpired always means an authentic body.
func VerifySignature(header string, body []byte, secret string, tolerance time.Duration, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if !matchesAny(signatures, computeSignature(timestamp, body, secret)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}

	if tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > tolerance || age < -tolerance {
			return ErrSignatureExpired
		}
	}
	return nil
}

func matchesAny(signatures []string, expected []byte) bool {
	for _, sig := range signatures {
		given, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(given, expected) {
			return true
		}
	}
	return false
}

// Sign produces a signature header for body at time t.
func Sign(body []byte, secret string, t time.Time) string {
	ts := t.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature(ts, body, secret)))
}

func computeSignature(timestamp int64, body []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, fmt.Errorf("%w: missing header", ErrInvalidSignature)
	}

	var (
		timestamp  int64
		haveTS     bool
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			timestamp, haveTS = ts, true
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if !haveTS || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}
	return timestamp, signatures, nil
}
