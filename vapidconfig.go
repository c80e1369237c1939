package webpush

import (
	"time"

	"github.com/pushkit/webpush/vapid"
)

// VAPIDConfig is the VAPID validation configuration accepted at Client
// construction (the default identity) or per-notification (an
// override). It accepts exactly the three shapes spec §6 names: a raw
// base64url key pair, a PEM blob, or a PEM file path.
type VAPIDConfig struct {
	Subject    string
	PublicKey  string // base64url, optional when PEM/PEMFile is set
	PrivateKey string // base64url
	PEM        string
	PEMFile    string

	// Expiration overrides the JWT exp claim when this config is a
	// per-notification override. Zero means now+vapid.DefaultExpiration.
	// On the default identity passed to NewClient it is not used.
	Expiration time.Time
}

func (c VAPIDConfig) toVapidConfig() vapid.Config {
	return vapid.Config{
		Subject:    c.Subject,
		PublicKey:  c.PublicKey,
		PrivateKey: c.PrivateKey,
		PEM:        c.PEM,
		PEMFile:    c.PEMFile,
	}
}

// validate parses and checks a VAPIDConfig, returning the underlying
// key pair used to sign.
func (c VAPIDConfig) validate() (*vapid.KeyPair, error) {
	return vapid.Validate(c.toVapidConfig())
}

// CreateVAPIDKeys generates a fresh VAPID key pair, returned as
// base64url strings (public key length >= 86, private key length >=
// 42, both without padding), per spec §6.
func CreateVAPIDKeys() (publicKey, privateKey string, err error) {
	return vapid.CreateVAPIDKeys()
}
