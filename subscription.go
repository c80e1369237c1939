package webpush

// ContentCoding identifies the content-coding scheme used to frame an
// encrypted push message. Both values appear bit-exact in the
// Content-Encoding HTTP header and in the VAPID header cache key.
type ContentCoding string

const (
	// AESGCM is the legacy coding (draft-ietf-webpush-encryption-04 +
	// draft-ietf-webpush-vapid-02): salt and sender key travel in
	// Encryption/Crypto-Key headers, no framing bytes precede the
	// ciphertext.
	AESGCM ContentCoding = "aesgcm"

	// AES128GCM is the standardized coding (RFC 8188 + RFC 8291): the
	// salt, record size, and sender key are prepended to the
	// ciphertext as a single framed body.
	AES128GCM ContentCoding = "aes128gcm"
)

// Subscription is an immutable Web Push subscription as returned by the
// browser's PushManager.subscribe(). Endpoint is the absolute push
// service URL; PublicKey and AuthSecret are the subscriber's ECDH
// public key (URL-safe base64 of a 65-byte uncompressed P-256 point)
// and 16-byte auth secret. ContentEncoding selects the coding this
// subscription's push service expects. ExpirationTime, when present, is
// an epoch-seconds hint from the browser about when the endpoint stops
// accepting pushes.
//
// Invariant: if a queued notification carries a non-empty payload, this
// subscription must have PublicKey, AuthSecret, and ContentEncoding all
// set (violations are reported as ErrPayload).
type Subscription struct {
	Endpoint        string        `json:"endpoint"`
	PublicKey       string        `json:"publicKey"`
	AuthSecret      string        `json:"authSecret"`
	ContentEncoding ContentCoding `json:"contentEncoding"`
	ExpirationTime  *int64        `json:"expirationTime,omitempty"`
}

// hasKeys reports whether the subscription carries the key material
// needed to encrypt a payload.
func (s Subscription) hasKeys() bool {
	return s.PublicKey != "" && s.AuthSecret != ""
}
