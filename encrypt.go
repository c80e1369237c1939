package webpush

import (
	"encoding/binary"

	"github.com/pushkit/webpush/internal/wpcrypto"
)

// EncryptedMessage is the output of the encryption engine: the framed
// ciphertext body plus the per-message salt and ephemeral local public
// key the dispatcher needs to fill in the aesgcm Encryption/Crypto-Key
// headers (aes128gcm carries both inside Body instead).
type EncryptedMessage struct {
	Body           []byte
	Salt           []byte
	LocalPublicKey []byte
	Coding         ContentCoding
}

// encryptMessage runs the encryption engine (spec §4.4) for a single
// (payload, subscriber key, auth secret, coding) tuple. It generates a
// fresh local P-256 key pair and salt on every call, so two calls with
// identical inputs never produce the same ciphertext or salt (P3).
func encryptMessage(payload, subscriberPublicKeyRaw, authSecret []byte, coding ContentCoding, paddingMax int) (*EncryptedMessage, error) {
	if len(authSecret) != 16 {
		return nil, wpcrypto.CryptoError("auth secret must be 16 bytes, got %d", len(authSecret))
	}

	subscriberKey, err := wpcrypto.DecodeP256PublicKey(subscriberPublicKeyRaw)
	if err != nil {
		return nil, err
	}
	// Re-derive the canonical 65-byte encoding for use in HKDF info
	// strings and framing, regardless of whether the caller supplied
	// the 64-byte unprefixed form.
	subscriberPub := subscriberKey.Bytes()

	localKey, err := wpcrypto.GenerateEphemeralKeyPair()
	if err != nil {
		return nil, err
	}
	localPub := localKey.PublicKey().Bytes()

	salt, err := wpcrypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	ikm, err := wpcrypto.ECDHSharedSecret(localKey, subscriberKey)
	if err != nil {
		return nil, err
	}

	var (
		cek, nonce []byte
		padded     []byte
	)
	switch coding {
	case AESGCM:
		cek, nonce, err = deriveAESGCMKeys(ikm, authSecret, salt, subscriberPub, localPub)
		if err != nil {
			return nil, err
		}
		padded, err = padAESGCM(payload, paddingMax)
	case AES128GCM:
		cek, nonce, err = deriveAES128GCMKeys(ikm, authSecret, salt, subscriberPub, localPub)
		if err != nil {
			return nil, err
		}
		padded, err = padAES128GCM(payload, paddingMax)
	default:
		return nil, configError("unsupported content coding %q", coding)
	}
	if err != nil {
		return nil, err
	}

	ciphertext, err := wpcrypto.AESGCMSeal(cek, nonce, padded)
	if err != nil {
		return nil, err
	}

	body := ciphertext
	if coding == AES128GCM {
		// salt(16) || recordSize(4 BE) || keylen(1)=65 || P_l(65), per
		// RFC 8188 §2.1 / spec §4.4 step 5. recordSize is fixed to the
		// padded plaintext length + 17 (open question (b) in spec §9).
		recordSize := uint32(len(padded) + 17)
		header := make([]byte, 0, 16+4+1+len(localPub))
		header = append(header, salt...)
		header = binary.BigEndian.AppendUint32(header, recordSize)
		header = append(header, byte(len(localPub)))
		header = append(header, localPub...)
		body = append(header, ciphertext...)
	}

	return &EncryptedMessage{
		Body:           body,
		Salt:           salt,
		LocalPublicKey: localPub,
		Coding:         coding,
	}, nil
}

// deriveAESGCMKeys implements the legacy draft's key schedule: a PRK
// bound to the subscriber's auth secret, then CEK/NONCE derived from it
// per-message using a context string naming both P-256 points. Grounded
// on other_examples/SherClockHolmes-webpush-go__webpush.go.
func deriveAESGCMKeys(ikm, authSecret, salt, subscriberPub, localPub []byte) (cek, nonce []byte, err error) {
	prk, err := wpcrypto.HKDFExpand(ikm, authSecret, infoAuth, 32)
	if err != nil {
		return nil, nil, err
	}

	context := aesGCMContext(subscriberPub, localPub)

	cekInfo := append(append([]byte{}, infoAESGCM...), append([]byte{0x01}, context...)...)
	cek, err = wpcrypto.HKDFExpand(prk, salt, cekInfo, 16)
	if err != nil {
		return nil, nil, err
	}

	nonceInfo := append(append([]byte{}, infoNonce...), append([]byte{0x01}, context...)...)
	nonce, err = wpcrypto.HKDFExpand(prk, salt, nonceInfo, 12)
	if err != nil {
		return nil, nil, err
	}
	return cek, nonce, nil
}

// aesGCMContext builds "P-256\0" || len16(P_s) || P_s || len16(P_l) || P_l.
func aesGCMContext(subscriberPub, localPub []byte) []byte {
	context := make([]byte, 0, 6+2+len(subscriberPub)+2+len(localPub))
	context = append(context, "P-256\x00"...)
	context = appendLenPrefixed(context, subscriberPub)
	context = appendLenPrefixed(context, localPub)
	return context
}

func appendLenPrefixed(dst, key []byte) []byte {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(key)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, key...)
	return dst
}

// deriveAES128GCMKeys implements RFC 8291's key schedule: the PRK info
// string names both P-256 points directly (no per-scheme context
// wrapper), and CEK/NONCE derivation has no per-message context beyond
// the salt.
func deriveAES128GCMKeys(ikm, authSecret, salt, subscriberPub, localPub []byte) (cek, nonce []byte, err error) {
	info := make([]byte, 0, len(infoWebPush)+len(subscriberPub)+len(localPub))
	info = append(info, infoWebPush...)
	info = append(info, subscriberPub...)
	info = append(info, localPub...)

	prk, err := wpcrypto.HKDFExpand(ikm, authSecret, info, 32)
	if err != nil {
		return nil, nil, err
	}

	cekInfo := append(append([]byte{}, infoAES128GCM...), 0x01)
	cek, err = wpcrypto.HKDFExpand(prk, salt, cekInfo, 16)
	if err != nil {
		return nil, nil, err
	}
	nonceInfo := append(append([]byte{}, infoNonce...), 0x01)
	nonce, err = wpcrypto.HKDFExpand(prk, salt, nonceInfo, 12)
	if err != nil {
		return nil, nil, err
	}
	return cek, nonce, nil
}
