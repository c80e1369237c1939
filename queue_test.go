package webpush

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/daaku/ensure"
)

func TestValidateForEnqueueRejectsOversizePayload(t *testing.T) {
	// Spec scenario 6: a payload of 4079 bytes (one more than
	// MaxPayload) raises PayloadError.
	_, err := validateForEnqueue(Subscription{ContentEncoding: AES128GCM}, bytes.Repeat([]byte("1"), MaxPayload+1), nil)
	ensure.Err(t, err, regexp.MustCompile("exceeds MaxPayload"))
}

func TestValidateForEnqueueRejectsMissingCoding(t *testing.T) {
	_, err := validateForEnqueue(Subscription{}, []byte("payload"), nil)
	ensure.Err(t, err, regexp.MustCompile("content coding"))
}

func TestValidateForEnqueueAllowsEmptyPayload(t *testing.T) {
	kp, err := validateForEnqueue(Subscription{}, nil, nil)
	ensure.Nil(t, err)
	ensure.True(t, kp == nil)
}

func TestQueueEnqueueLenDrain(t *testing.T) {
	var q queue
	ensure.DeepEqual(t, q.len(), 0)

	q.enqueue(&Notification{Subscription: Subscription{Endpoint: "https://push.example/a"}})
	q.enqueue(&Notification{Subscription: Subscription{Endpoint: "https://push.example/b"}})
	q.enqueue(&Notification{Subscription: Subscription{Endpoint: "https://push.example/c"}})
	ensure.DeepEqual(t, q.len(), 3)

	drained := q.drain()
	ensure.DeepEqual(t, len(drained), 3)
	ensure.DeepEqual(t, drained[0].Subscription.Endpoint, "https://push.example/a")
	ensure.DeepEqual(t, drained[1].Subscription.Endpoint, "https://push.example/b")
	ensure.DeepEqual(t, drained[2].Subscription.Endpoint, "https://push.example/c")
	ensure.DeepEqual(t, q.len(), 0)
}
