package webpush

import "github.com/pushkit/webpush/internal/wpcrypto"

// Sentinel error kinds callers can test for with errors.Is. These are
// the same sentinels the vapid subpackage wraps, so errors.Is matches
// regardless of which package surfaced the error.
var (
	// ErrConfig marks bad VAPID shapes, bad key lengths, bad subjects,
	// or out-of-range padding configuration.
	ErrConfig = wpcrypto.ErrConfig

	// ErrPayload marks a payload exceeding MaxPayload, or a subscription
	// missing a content coding while a payload is present.
	ErrPayload = wpcrypto.ErrPayload

	// ErrCrypto marks ECDH/HKDF/AES-GCM failures, PEM parse failures,
	// and signature production failures.
	ErrCrypto = wpcrypto.ErrCrypto

	// ErrProtocol marks an inability to build an audience from an
	// endpoint URL.
	ErrProtocol = wpcrypto.ErrProtocol
)

func configError(format string, args ...any) error { return wpcrypto.ConfigError(format, args...) }
func payloadError(format string, args ...any) error { return wpcrypto.PayloadError(format, args...) }
func cryptoError(format string, args ...any) error { return wpcrypto.CryptoError(format, args...) }
func protocolError(format string, args ...any) error { return wpcrypto.ProtocolError(format, args...) }
