package vapid

import (
	"regexp"
	"testing"
	"time"

	"github.com/daaku/ensure"
)

const (
	scenarioAudience   = "http://push.com"
	scenarioSubject    = "https://test.com"
	scenarioPublicKey  = "BA6jvk34k6YjElHQ6S0oZwmrsqHdCNajxcod6KJnI77Dagikfb--O_kYXcR2eflRz6l3PcI2r8fPCH3BElLQHDk"
	scenarioPrivateKey = "-3CdhFOqjzixgAbUSa0Zv9zi-dwDVmWO7672aBxSFPQ"
)

var scenarioExpiration = time.Unix(1475452165, 0)

func scenarioKeyPair(t *testing.T) *KeyPair {
	kp, err := Validate(Config{
		Subject:    scenarioSubject,
		PublicKey:  scenarioPublicKey,
		PrivateKey: scenarioPrivateKey,
	})
	ensure.Nil(t, err)
	return kp
}

func TestSignAESGCM(t *testing.T) {
	kp := scenarioKeyPair(t)
	header, err := NewSigner(false).Sign(scenarioAudience, AESGCM, kp, scenarioExpiration)
	ensure.Nil(t, err)

	// jwt/v5 marshals its header map in sorted-key order, so the header
	// segment is alg-first ({"alg":"ES256","typ":"JWT"}), not the
	// typ-first ordering a field-insertion-order encoder would produce.
	const wantPrefix = "WebPush eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9.eyJhdWQiOiJodHRwOi8vcHVzaC5jb20iLCJleHAiOjE0NzU0NTIxNjUsInN1YiI6Imh0dHBzOi8vdGVzdC5jb20ifQ."
	ensure.True(t, len(header.Authorization) > len(wantPrefix), "authorization too short")
	ensure.DeepEqual(t, header.Authorization[:len(wantPrefix)], wantPrefix)
	ensure.DeepEqual(t, header.CryptoKey, "p256ecdsa="+scenarioPublicKey)
}

func TestSignAES128GCM(t *testing.T) {
	kp := scenarioKeyPair(t)
	header, err := NewSigner(false).Sign(scenarioAudience, AES128GCM, kp, scenarioExpiration)
	ensure.Nil(t, err)

	const wantPrefix = "vapid t=eyJhbGciOiJFUzI1NiIsInR5cCI6IkpXVCJ9.eyJhdWQiOiJodHRwOi8vcHVzaC5jb20iLCJleHAiOjE0NzU0NTIxNjUsInN1YiI6Imh0dHBzOi8vdGVzdC5jb20ifQ."
	wantSuffix := ", k=" + scenarioPublicKey
	ensure.True(t, len(header.Authorization) > len(wantPrefix)+len(wantSuffix), "authorization too short")
	ensure.DeepEqual(t, header.Authorization[:len(wantPrefix)], wantPrefix)
	ensure.DeepEqual(t, header.Authorization[len(header.Authorization)-len(wantSuffix):], wantSuffix)
	ensure.DeepEqual(t, header.CryptoKey, "")
}

func TestSignerCache(t *testing.T) {
	kp := scenarioKeyPair(t)
	signer := NewSigner(true)
	a, err := signer.Sign(scenarioAudience, AESGCM, kp, scenarioExpiration)
	ensure.Nil(t, err)
	b, err := signer.Sign(scenarioAudience, AESGCM, kp, scenarioExpiration)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, a, b)

	signer.ClearCache()
	c, err := signer.Sign(scenarioAudience, AESGCM, kp, scenarioExpiration)
	ensure.Nil(t, err)
	// Signature segment is randomized per ECDSA sign, so a fresh sign
	// after ClearCache need not equal the cached value byte-for-byte;
	// only the header+payload prefix is guaranteed stable (checked above).
	ensure.True(t, len(c.Authorization) > 0)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"empty subject", Config{Subject: ""}},
		{"bare subject", Config{Subject: "test"}},
		{"empty mailto", Config{Subject: "mailto:"}},
		{"mailto without domain", Config{Subject: "mailto:localhost"}},
		{"bare https", Config{Subject: "https://"}},
		{"empty pemFile", Config{Subject: "https://example.com", PEMFile: ""}},
		{"nonexistent pemFile", Config{Subject: "https://example.com", PEMFile: "abc.pem"}},
		{"empty pem", Config{Subject: "https://example.com", PEM: ""}},
		{"empty publicKey", Config{Subject: "https://example.com", PublicKey: ""}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Validate(c.cfg)
			ensure.Err(t, err, regexp.MustCompile(".+"))
		})
	}
}

func TestCreateVAPIDKeysRoundTrip(t *testing.T) {
	pub, priv, err := CreateVAPIDKeys()
	ensure.Nil(t, err)
	ensure.True(t, len(pub) >= 86)
	ensure.True(t, len(priv) >= 42)

	kp, err := Validate(Config{
		Subject:    "mailto:a@b.com",
		PublicKey:  pub,
		PrivateKey: priv,
	})
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(kp.PublicKey), 65)
	ensure.DeepEqual(t, len(kp.PrivateKey), 32)
}

func TestAudiencePassThroughPort(t *testing.T) {
	aud, err := Audience("https://push.example.com:8443/some/path")
	ensure.Nil(t, err)
	ensure.DeepEqual(t, aud, "https://push.example.com:8443")
}

func TestAudienceInvalid(t *testing.T) {
	_, err := Audience("not a url")
	ensure.Err(t, err, regexp.MustCompile("cannot build audience"))
}
