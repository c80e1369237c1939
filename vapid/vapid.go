// Package vapid implements Voluntary Application Server Identification
// (RFC 8292): constructing the signed ES256 JWT over a push service
// audience and assembling the Authorization/Crypto-Key header set,
// whose shape differs between the aesgcm and aes128gcm content
// codings. It is independent of the rest of the webpush module so it
// can be used standalone, the way imjasonh-webpush splits its vapid/
// package out from its root client.
package vapid

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/base64"
	"math/big"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pushkit/webpush/internal/wpcrypto"
)

// Content coding tags, bit-exact with the Content-Encoding header value
// and the cache key the Signer uses.
const (
	AESGCM    = "aesgcm"
	AES128GCM = "aes128gcm"
)

// Sentinel error kinds, the same ones the webpush root package
// re-exports; errors.Is works across the package boundary.
var (
	ErrConfig = wpcrypto.ErrConfig
	ErrCrypto = wpcrypto.ErrCrypto
)

// DefaultExpiration is how far in the future a JWT's exp claim is set
// when the caller doesn't supply one.
const DefaultExpiration = 12 * time.Hour

// MaxExpiration is the longest a JWT's exp claim may be set into the
// future.
const MaxExpiration = 24 * time.Hour

// KeyPair is a validated VAPID identity: a subject URL and the P-256
// key pair used to sign audience JWTs.
type KeyPair struct {
	Subject    string
	PublicKey  []byte // 65-byte uncompressed SEC1 point
	PrivateKey []byte // 32-byte raw scalar

	privateKey *ecdsa.PrivateKey
}

// Config is the input accepted by Validate: either a raw base64url key
// pair, or a PEM blob/file to derive one from.
type Config struct {
	Subject    string
	PublicKey  string // base64url, optional when PEM/PEMFile is set
	PrivateKey string // base64url
	PEM        string
	PEMFile    string
}

// Validate parses and checks a Config, rejecting every shape in the
// negative table: empty config, missing/invalid subject, keys of the
// wrong length, or a PEM that fails to parse.
func Validate(cfg Config) (*KeyPair, error) {
	if err := validateSubject(cfg.Subject); err != nil {
		return nil, err
	}

	var privateRaw, publicRaw []byte
	switch {
	case cfg.PEM != "":
		var err error
		privateRaw, publicRaw, err = wpcrypto.PEMToRawKeys([]byte(cfg.PEM))
		if err != nil {
			return nil, err
		}
	case cfg.PEMFile != "":
		data, err := os.ReadFile(cfg.PEMFile)
		if err != nil {
			return nil, wpcrypto.ConfigError("reading pemFile %q: %v", cfg.PEMFile, err)
		}
		privateRaw, publicRaw, err = wpcrypto.PEMToRawKeys(data)
		if err != nil {
			return nil, err
		}
	default:
		if cfg.PublicKey == "" || cfg.PrivateKey == "" {
			return nil, wpcrypto.ConfigError("publicKey and privateKey are required when pem/pemFile are not set")
		}
		var err error
		publicRaw, err = wpcrypto.B64Decode(cfg.PublicKey)
		if err != nil {
			return nil, wpcrypto.ConfigError("invalid publicKey: %v", err)
		}
		privateRaw, err = wpcrypto.B64Decode(cfg.PrivateKey)
		if err != nil {
			return nil, wpcrypto.ConfigError("invalid privateKey: %v", err)
		}
	}

	if len(publicRaw) != 65 {
		return nil, wpcrypto.ConfigError("publicKey must decode to 65 bytes, got %d", len(publicRaw))
	}
	if len(privateRaw) != 32 {
		return nil, wpcrypto.ConfigError("privateKey must decode to 32 bytes, got %d", len(privateRaw))
	}

	pub, err := wpcrypto.ECDSAPublicKeyFromBytes(publicRaw)
	if err != nil {
		return nil, wpcrypto.ConfigError("publicKey is not a valid P-256 point: %v", err)
	}
	priv, err := wpcrypto.ECDSAPrivateKeyFromScalar(privateRaw)
	if err != nil {
		return nil, wpcrypto.ConfigError("privateKey is out of range: %v", err)
	}
	priv.PublicKey = *pub

	return &KeyPair{
		Subject:    cfg.Subject,
		PublicKey:  publicRaw,
		PrivateKey: privateRaw,
		privateKey: priv,
	}, nil
}

func validateSubject(subject string) error {
	if subject == "" {
		return wpcrypto.ConfigError("subject is required")
	}
	if strings.HasPrefix(subject, "mailto:") {
		addr := strings.TrimPrefix(subject, "mailto:")
		at := strings.IndexByte(addr, '@')
		if at <= 0 || at == len(addr)-1 {
			return wpcrypto.ConfigError("mailto subject must have a local-part and domain: %q", subject)
		}
		return nil
	}
	u, err := url.Parse(subject)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return wpcrypto.ConfigError("subject must be a mailto: address or an https: URL: %q", subject)
	}
	return nil
}

// CreateVAPIDKeys generates a fresh P-256 key pair and returns both
// halves as base64url strings, per spec §6.
func CreateVAPIDKeys() (publicKey, privateKey string, err error) {
	priv, err := wpcrypto.GenerateP256KeyPair()
	if err != nil {
		return "", "", err
	}
	pub := wpcrypto.ECDSAPublicKeyBytes(&priv.PublicKey)
	return wpcrypto.B64Encode(pub), wpcrypto.B64Encode(priv.D.FillBytes(make([]byte, 32))), nil
}

// Header is the VAPID header set for one request: Authorization always,
// CryptoKey only for the aesgcm coding.
type Header struct {
	Authorization string
	CryptoKey     string // empty for aes128gcm
}

type cacheKey struct {
	audience    string
	coding      string
	fingerprint string
}

// Signer issues VAPID header sets, memoizing them within a single flush
// scope when reuse is enabled (spec §4.5's per-flush cache). A Signer is
// not safe for concurrent Sign calls with ClearCache; Sign calls
// themselves may run concurrently with each other.
type Signer struct {
	mu    sync.Mutex
	cache map[cacheKey]Header
	reuse bool
}

// NewSigner returns a Signer. When reuse is true, Sign memoizes results
// for the lifetime of the Signer (callers clear it with ClearCache at
// the end of a flush, per spec §4.5/§4.7).
func NewSigner(reuse bool) *Signer {
	s := &Signer{reuse: reuse}
	if reuse {
		s.cache = make(map[cacheKey]Header)
	}
	return s
}

// ClearCache discards all memoized header sets. Dispatchers call this
// once per flush, after the batch loop completes.
func (s *Signer) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reuse {
		s.cache = make(map[cacheKey]Header)
	}
}

// Sign produces the Authorization/Crypto-Key header set for an
// audience under the given content coding, using kp to sign and an
// optional expiration override (zero means now+DefaultExpiration).
func (s *Signer) Sign(audience, coding string, kp *KeyPair, expiration time.Time) (Header, error) {
	fp := kp.fingerprint()
	key := cacheKey{audience: audience, coding: coding, fingerprint: fp}

	if s.reuse {
		s.mu.Lock()
		if h, ok := s.cache[key]; ok {
			s.mu.Unlock()
			return h, nil
		}
		s.mu.Unlock()
	}

	h, err := sign(audience, coding, kp, expiration)
	if err != nil {
		return Header{}, err
	}

	if s.reuse {
		s.mu.Lock()
		s.cache[key] = h
		s.mu.Unlock()
	}
	return h, nil
}

// fingerprint is a stable hash of the key pair's raw bytes, used as a
// cache key component so the cache doesn't embed key material directly
// in its map key.
func (kp *KeyPair) fingerprint() string {
	h := sha256.New()
	h.Write(kp.PrivateKey)
	h.Write(kp.PublicKey)
	return string(h.Sum(nil))
}

func sign(audience, coding string, kp *KeyPair, expiration time.Time) (Header, error) {
	if expiration.IsZero() {
		expiration = time.Now().Add(DefaultExpiration)
	}
	if time.Until(expiration) > MaxExpiration {
		return Header{}, wpcrypto.ConfigError("vapid expiration must be at most %s in the future", MaxExpiration)
	}

	// Build and sign the JWT the way daaku-webpush's makeAuthHeader
	// does: jwt.NewWithClaims + SignedString. We then normalize the
	// signature segment to low-S, which jwt/v5's ECDSA signer does not
	// do on its own, so repeated signs of identical claims stay
	// cross-implementation verifiable.
	claims := jwt.MapClaims{
		"aud": audience,
		"exp": expiration.Unix(),
		"sub": kp.Subject,
	}
	jwtString, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(kp.privateKey)
	if err != nil {
		return Header{}, wpcrypto.CryptoError("signing VAPID JWT: %v", err)
	}
	token, err := normalizeLowS(jwtString, kp.privateKey)
	if err != nil {
		return Header{}, err
	}

	publicKeyB64 := wpcrypto.B64Encode(kp.PublicKey)

	switch coding {
	case AESGCM:
		return Header{
			Authorization: "WebPush " + token,
			CryptoKey:     "p256ecdsa=" + publicKeyB64,
		}, nil
	case AES128GCM:
		return Header{
			Authorization: "vapid t=" + token + ", k=" + publicKeyB64,
		}, nil
	default:
		return Header{}, wpcrypto.ConfigError("unsupported content coding %q", coding)
	}
}

// Audience derives the JWT aud claim (scheme://host) from a push
// endpoint URL. Behavior for endpoints on non-default ports is
// pass-through: the host is used exactly as url.Parse reports it (spec
// §9 open question (a)).
func Audience(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", wpcrypto.ProtocolError("cannot build audience from endpoint %q", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

// normalizeLowS rewrites a JWT's signature segment to low-S form. ES256
// JWTs pack the signature as a raw 64-byte r||s (RFC 7518 §3.4), so we
// can decode, compare, and re-encode without touching the header or
// claims segments.
func normalizeLowS(jwtString string, priv *ecdsa.PrivateKey) (string, error) {
	dot := strings.LastIndexByte(jwtString, '.')
	if dot < 0 {
		return "", wpcrypto.CryptoError("malformed JWT from signer")
	}
	signingInput, sigSeg := jwtString[:dot], jwtString[dot+1:]

	sig, err := base64.RawURLEncoding.DecodeString(sigSeg)
	if err != nil || len(sig) != 64 {
		return "", wpcrypto.CryptoError("malformed JWT signature segment")
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])

	order := priv.Curve.Params().N
	half := new(big.Int).Rsh(order, 1)
	if s.Cmp(half) > 0 {
		s = new(big.Int).Sub(order, s)
	}

	normalized := make([]byte, 64)
	r.FillBytes(normalized[:32])
	s.FillBytes(normalized[32:])

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(normalized), nil
}
