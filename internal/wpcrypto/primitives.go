package wpcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// ECDHSharedSecret computes the X coordinate of d·P for a local private
// scalar and a remote P-256 point: the 32-byte IKM that feeds HKDF in
// both content codings (RFC 8291 §3.3).
func ECDHSharedSecret(local *ecdh.PrivateKey, remote *ecdh.PublicKey) ([]byte, error) {
	secret, err := local.ECDH(remote)
	if err != nil {
		return nil, CryptoError("ECDH failed: %v", err)
	}
	return secret, nil
}

// HKDFExpand runs HKDF-SHA256 extract-then-expand, producing length
// bytes of output keying material.
func HKDFExpand(secret, salt, info []byte, length int) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, salt, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, CryptoError("HKDF expand failed: %v", err)
	}
	return out, nil
}

// AESGCMSeal encrypts plaintext with AES-128-GCM under key and nonce
// with an empty AAD, returning ciphertext with the 16-byte tag appended.
func AESGCMSeal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// AESGCMOpen is the receiver-side counterpart to AESGCMSeal, used by
// tests that round-trip encrypted payloads to verify framing.
func AESGCMOpen(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, CryptoError("GCM open failed: %v", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, CryptoError("AES cipher init failed: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, CryptoError("GCM init failed: %v", err)
	}
	return gcm, nil
}

// GenerateEphemeralKeyPair produces a fresh local P-256 key pair, used
// once per encrypted message per RFC 8291 §3.1.
func GenerateEphemeralKeyPair() (*ecdh.PrivateKey, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, CryptoError("key generation failed: %v", err)
	}
	return key, nil
}

// GenerateSalt returns a fresh 16-byte random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, CryptoError("salt generation failed: %v", err)
	}
	return salt, nil
}

// ES256Sign signs SHA-256(message) with an ECDSA P-256 private key and
// returns the raw 64-byte r||s concatenation (not DER), normalized to
// low-S. This mirrors the raw r||s packing in
// gauntface-web-push-go/webpush/vapid.go, adding the low-S normalization
// that source omits so repeated signs of identical claims are
// consistently verifiable.
func ES256Sign(priv *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, CryptoError("ECDSA sign failed: %v", err)
	}

	order := priv.Curve.Params().N
	half := new(big.Int).Rsh(order, 1)
	if s.Cmp(half) > 0 {
		s = new(big.Int).Sub(order, s)
	}

	const scalarLen = 32
	sig := make([]byte, 2*scalarLen)
	r.FillBytes(sig[:scalarLen])
	s.FillBytes(sig[scalarLen:])
	return sig, nil
}

// GenerateP256KeyPair creates a fresh ECDSA P-256 key pair, used by
// CreateVAPIDKeys.
func GenerateP256KeyPair() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// ECDSAPublicKeyBytes returns the 65-byte uncompressed SEC1 encoding of
// an ECDSA P-256 public key, the VAPID key transport format (RFC 8292).
func ECDSAPublicKeyBytes(pub *ecdsa.PublicKey) []byte {
	return elliptic.Marshal(pub.Curve, pub.X, pub.Y) //nolint:staticcheck // RFC 8292 requires the uncompressed SEC1 point
}

// ECDSAPrivateKeyFromScalar rebuilds an ECDSA P-256 private key from its
// raw 32-byte scalar, deriving the public point by scalar multiplication.
func ECDSAPrivateKeyFromScalar(raw []byte) (*ecdsa.PrivateKey, error) {
	if len(raw) != 32 {
		return nil, CryptoError("private key must be 32 bytes, got %d", len(raw))
	}
	priv := new(ecdsa.PrivateKey)
	priv.Curve = elliptic.P256()
	priv.D = new(big.Int).SetBytes(raw)
	if priv.D.Sign() == 0 || priv.D.Cmp(priv.Curve.Params().N) >= 0 {
		return nil, CryptoError("private key scalar out of range [1, n-1]")
	}
	priv.X, priv.Y = priv.Curve.ScalarBaseMult(raw)
	return priv, nil
}

// ECDSAPublicKeyFromBytes parses a 65-byte uncompressed SEC1 point into
// an ECDSA P-256 public key, validating it lies on the curve.
func ECDSAPublicKeyFromBytes(raw []byte) (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(elliptic.P256(), raw) //nolint:staticcheck // RFC 8292 uncompressed SEC1 point
	if x == nil {
		return nil, CryptoError("public key is not a valid point on P-256")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}
