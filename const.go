package webpush

// Size and timing constants bit-exact per RFC 8291/8292 and the legacy
// aesgcm draft.
const (
	// MaxPayload is the largest plaintext payload this library will
	// encrypt, in bytes.
	MaxPayload = 4078

	// MaxCompatibility is the recommended default padding target,
	// chosen to match the widest range of push services' maximum
	// record sizes.
	MaxCompatibility = 3052

	// DefaultTTL is the default Time-To-Live on the push service POST,
	// 28 days in seconds.
	DefaultTTL = 2419200
)

// HKDF info-string literals, NUL-terminated exactly as the drafts spell
// them.
var (
	infoAuth      = []byte("Content-Encoding: auth\x00")
	infoAESGCM    = []byte("Content-Encoding: aesgcm\x00")
	infoAES128GCM = []byte("Content-Encoding: aes128gcm\x00")
	infoNonce     = []byte("Content-Encoding: nonce\x00")
	infoWebPush   = []byte("WebPush: info\x00")
)
