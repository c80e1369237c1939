package webpush

import (
	"encoding/binary"
	"testing"

	"github.com/daaku/ensure"

	"github.com/pushkit/webpush/internal/wpcrypto"
)

// TestEncryptMessageAES128GCMRoundTrip is spec scenario 4: generate a
// fresh subscriber key pair and auth secret, encrypt "hello", and
// verify the receiver side (the subscriber's private key) recovers
// "hello" after stripping the 0x02 delimiter and trailing zero pad.
func TestEncryptMessageAES128GCMRoundTrip(t *testing.T) {
	subPriv, err := wpcrypto.GenerateEphemeralKeyPair()
	ensure.Nil(t, err)
	subPub := subPriv.PublicKey().Bytes()

	authSecret := make([]byte, 16)
	for i := range authSecret {
		authSecret[i] = byte(i)
	}

	msg, err := encryptMessage([]byte("hello"), subPub, authSecret, AES128GCM, MaxCompatibility)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, msg.Coding, ContentCoding(AES128GCM))

	// P1: salt(16) || recordSize(4 BE) || 0x41 || P_l(65)
	ensure.DeepEqual(t, msg.Body[:16], msg.Salt)
	ensure.DeepEqual(t, msg.Body[20], byte(0x41))
	localPub := msg.Body[21:86]
	ensure.DeepEqual(t, localPub, msg.LocalPublicKey)

	ciphertext := msg.Body[86:]

	localPubKey, err := wpcrypto.DecodeP256PublicKey(localPub)
	ensure.Nil(t, err)
	ikm, err := wpcrypto.ECDHSharedSecret(subPriv, localPubKey)
	ensure.Nil(t, err)

	cek, nonce, err := deriveAES128GCMKeys(ikm, authSecret, msg.Salt, subPub, localPub)
	ensure.Nil(t, err)

	padded, err := wpcrypto.AESGCMOpen(cek, nonce, ciphertext)
	ensure.Nil(t, err)

	delim := -1
	for i := len(padded) - 1; i >= 0; i-- {
		if padded[i] != 0 {
			delim = i
			break
		}
	}
	ensure.DeepEqual(t, padded[delim], byte(0x02))
	ensure.DeepEqual(t, string(padded[:delim]), "hello")
}

func TestEncryptMessageProducesFreshSaltAndCiphertext(t *testing.T) {
	subPriv, err := wpcrypto.GenerateEphemeralKeyPair()
	ensure.Nil(t, err)
	subPub := subPriv.PublicKey().Bytes()
	authSecret := make([]byte, 16)

	a, err := encryptMessage([]byte("same plaintext"), subPub, authSecret, AES128GCM, MaxCompatibility)
	ensure.Nil(t, err)
	b, err := encryptMessage([]byte("same plaintext"), subPub, authSecret, AES128GCM, MaxCompatibility)
	ensure.Nil(t, err)

	ensure.True(t, string(a.Salt) != string(b.Salt), "salts should differ")
	ensure.True(t, string(a.Body) != string(b.Body), "ciphertext should differ")
}

func TestEncryptMessageAESGCMNoFramingBytes(t *testing.T) {
	subPriv, err := wpcrypto.GenerateEphemeralKeyPair()
	ensure.Nil(t, err)
	subPub := subPriv.PublicKey().Bytes()
	authSecret := make([]byte, 16)

	msg, err := encryptMessage([]byte("hi"), subPub, authSecret, AESGCM, MaxCompatibility)
	ensure.Nil(t, err)

	// P2: no framing bytes precede the ciphertext for aesgcm — body
	// length is exactly the padded plaintext plus the 16-byte GCM tag.
	padded, err := padAESGCM([]byte("hi"), MaxCompatibility)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(msg.Body), len(padded)+16)
	ensure.True(t, len(msg.Salt) == 16)
	ensure.True(t, len(msg.LocalPublicKey) == 65)
}

func TestEncryptMessageRejectsBadAuthSecretLength(t *testing.T) {
	subPriv, err := wpcrypto.GenerateEphemeralKeyPair()
	ensure.Nil(t, err)
	_, err = encryptMessage([]byte("hi"), subPriv.PublicKey().Bytes(), []byte("short"), AES128GCM, MaxCompatibility)
	ensure.NotNil(t, err)
}

func TestAES128GCMRecordSizeMatchesPaddedPlusSeventeen(t *testing.T) {
	subPriv, err := wpcrypto.GenerateEphemeralKeyPair()
	ensure.Nil(t, err)
	subPub := subPriv.PublicKey().Bytes()
	authSecret := make([]byte, 16)

	msg, err := encryptMessage([]byte("hello"), subPub, authSecret, AES128GCM, MaxCompatibility)
	ensure.Nil(t, err)

	recordSize := binary.BigEndian.Uint32(msg.Body[16:20])
	padded, err := padAES128GCM([]byte("hello"), MaxCompatibility)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, recordSize, uint32(len(padded)+17))
}
