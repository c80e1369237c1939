package webpush

import "encoding/binary"

// padAESGCM implements the legacy aesgcm padding: a 2-byte big-endian
// pad length ℓ, then ℓ zero bytes, then the plaintext. ℓ is chosen as
// max(0, paddingMax - len(payload)). Fails if the payload alone already
// exceeds paddingMax.
func padAESGCM(payload []byte, paddingMax int) ([]byte, error) {
	if len(payload) > paddingMax {
		return nil, payloadError("payload of %d bytes exceeds padding target of %d", len(payload), paddingMax)
	}
	padLen := paddingMax - len(payload)

	out := make([]byte, 2+padLen+len(payload))
	binary.BigEndian.PutUint16(out[:2], uint16(padLen))
	copy(out[2+padLen:], payload)
	return out, nil
}

// padAES128GCM implements the RFC 8188 padding: the plaintext, a 0x02
// delimiter, then zero bytes out to target length. Target length is
// max(len(payload)+1, paddingMax+1). Fails if the payload plus
// delimiter already exceeds paddingMax+1.
func padAES128GCM(payload []byte, paddingMax int) ([]byte, error) {
	if len(payload)+1 > paddingMax+1 {
		return nil, payloadError("payload of %d bytes exceeds padding target of %d", len(payload), paddingMax)
	}
	target := len(payload) + 1
	if paddingMax+1 > target {
		target = paddingMax + 1
	}

	out := make([]byte, target)
	copy(out, payload)
	out[len(payload)] = 0x02
	return out, nil
}
