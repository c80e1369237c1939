// Package wpcrypto holds the low-level cryptographic primitives shared by
// the webpush root package and its vapid subpackage: key codec helpers,
// ECDH/HKDF/AES-GCM/ES256 primitives, and the sentinel error kinds both
// surface to callers.
package wpcrypto

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Callers use errors.Is against these to determine
// which error kind a returned error belongs to.
var (
	// ErrConfig marks bad VAPID shapes, bad key lengths, bad subjects, or
	// out-of-range padding configuration.
	ErrConfig = errors.New("webpush: config error")

	// ErrPayload marks a payload exceeding MaxPayload, or a subscription
	// missing a content coding while a payload is present.
	ErrPayload = errors.New("webpush: payload error")

	// ErrCrypto marks ECDH/HKDF/AES-GCM failures, PEM parse failures, and
	// signature production failures.
	ErrCrypto = errors.New("webpush: crypto error")

	// ErrProtocol marks an inability to build an audience from an
	// endpoint URL.
	ErrProtocol = errors.New("webpush: protocol error")
)

func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func PayloadError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPayload, fmt.Sprintf(format, args...))
}

func CryptoError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCrypto, fmt.Sprintf(format, args...))
}

func ProtocolError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
