package wpcrypto

import (
	"crypto/ecdh"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
)

// B64Encode encodes raw bytes using URL-safe base64 without padding
// (RFC 4648 §5, trailing '=' stripped), the wire form for keys, salts,
// and JWT segments throughout Web Push.
func B64Encode(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// B64Decode decodes a base64 string, tolerating std/url alphabets and
// padded/raw variants, the way daaku-webpush's b64Decode is permissive
// about what subscribers' user agents hand back.
func B64Decode(s string) ([]byte, error) {
	return paddingOf(s).DecodeString(s)
}

func paddingOf(s string) *base64.Encoding {
	hasPadding := len(s) > 0 && s[len(s)-1] == '='
	isURL := false
outer:
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '-', '_':
			isURL = true
			break outer
		case '+', '/':
			break outer
		}
	}
	switch {
	case isURL && hasPadding:
		return base64.URLEncoding
	case isURL && !hasPadding:
		return base64.RawURLEncoding
	case !isURL && hasPadding:
		return base64.StdEncoding
	default:
		return base64.RawStdEncoding
	}
}

// DecodeP256PublicKey parses a subscriber or VAPID public key given as
// either the 65-byte uncompressed SEC1 point (0x04 || X || Y) or the
// bare 64-byte X||Y concatenation some callers omit the prefix from.
func DecodeP256PublicKey(raw []byte) (*ecdh.PublicKey, error) {
	switch len(raw) {
	case 65:
		// already prefixed
	case 64:
		prefixed := make([]byte, 0, 65)
		prefixed = append(prefixed, 0x04)
		prefixed = append(prefixed, raw...)
		raw = prefixed
	default:
		return nil, CryptoError("public key must be 64 or 65 bytes, got %d", len(raw))
	}
	key, err := ecdh.P256().NewPublicKey(raw)
	if err != nil {
		return nil, CryptoError("invalid P-256 public key: %v", err)
	}
	return key, nil
}

// DecodeP256PrivateScalar parses a raw 32-byte P-256 private scalar.
func DecodeP256PrivateScalar(raw []byte) (*ecdh.PrivateKey, error) {
	if len(raw) != 32 {
		return nil, CryptoError("private key must be 32 bytes, got %d", len(raw))
	}
	key, err := ecdh.P256().NewPrivateKey(raw)
	if err != nil {
		return nil, CryptoError("invalid P-256 private key: %v", err)
	}
	return key, nil
}

// PEMToRawKeys decodes a PEM block containing a SEC1 EC private key into
// the raw 32-byte private scalar and 65-byte uncompressed public point,
// the way imjasonh-webpush/keys/file.go parses VAPID PEM files with
// x509.ParseECPrivateKey.
func PEMToRawKeys(pemBytes []byte) (privateKey, publicKey []byte, err error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, nil, CryptoError("failed to decode PEM block")
	}

	ecKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, CryptoError("failed to parse EC private key: %v", err)
	}
	if ecKey.Curve != elliptic.P256() {
		return nil, nil, CryptoError("key must use the P-256 curve, got %s", ecKey.Curve.Params().Name)
	}

	privateKey = ecKey.D.FillBytes(make([]byte, 32))
	ecdhKey, err := ecdh.P256().NewPrivateKey(privateKey)
	if err != nil {
		return nil, nil, CryptoError("PEM private key is not a valid P-256 scalar: %v", err)
	}
	return privateKey, ecdhKey.PublicKey().Bytes(), nil
}
