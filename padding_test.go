package webpush

import (
	"regexp"
	"testing"

	"github.com/daaku/ensure"
)

func TestPadAESGCM(t *testing.T) {
	out, err := padAESGCM([]byte("hello"), 10)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(out), 2+10)
	ensure.DeepEqual(t, out[2+5:], []byte("hello"))
}

func TestPadAESGCMRejectsOversizePayload(t *testing.T) {
	_, err := padAESGCM([]byte("hello world"), 5)
	ensure.Err(t, err, regexp.MustCompile("exceeds padding target"))
}

func TestPadAES128GCM(t *testing.T) {
	out, err := padAES128GCM([]byte("hi"), 10)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, len(out), 11)
	ensure.DeepEqual(t, out[:2], []byte("hi"))
	ensure.DeepEqual(t, out[2], byte(0x02))
	for _, b := range out[3:] {
		ensure.DeepEqual(t, b, byte(0))
	}
}

func TestPadAES128GCMMinimalDelimiterOnly(t *testing.T) {
	out, err := padAES128GCM(nil, 0)
	ensure.Nil(t, err)
	ensure.DeepEqual(t, out, []byte{0x02})
}

func TestPadAES128GCMRejectsOversizePayload(t *testing.T) {
	_, err := padAES128GCM([]byte("hello world"), 5)
	ensure.Err(t, err, regexp.MustCompile("exceeds padding target"))
}
