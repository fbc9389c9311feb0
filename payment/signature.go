package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// ErrBadSignature rejects a webhook whose signature does not match the body.
var ErrBadSignature = errors.New("webhook signature verification failed")

// VerifyRazorpaySignature checks the X-Razorpay-Signature header: a
// hex-encoded HMAC-SHA256 of the raw request body.
func VerifyRazorpaySignature(body []byte, signature, secret string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

// VerifyCashfreeSignature checks the x-webhook-signature header: a
// base64-encoded HMAC-SHA256 of the x-webhook-timestamp header concatenated
// with the raw request body.
func VerifyCashfreeSignature(body []byte, timestamp, signature, secret string) error {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
