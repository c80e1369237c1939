package webpush

import (
	"github.com/google/uuid"

	"github.com/pushkit/webpush/vapid"
)

// Notification is one queued push message: a subscription to deliver
// to, an optional payload, and optional per-notification overrides for
// Options and VAPID auth. Notifications are created by
// Client.QueueNotification and discarded once Flush/FlushPooled drains
// them — the queue never retains a Notification after it is dispatched.
type Notification struct {
	Subscription Subscription
	Payload      []byte
	Options      *Options
	Auth         *VAPIDConfig

	// CorrelationID identifies this notification across logs and its
	// eventual MessageSentReport, independent of enqueue/completion
	// order (FlushPooled completes out of order).
	CorrelationID uuid.UUID

	// authKeyPair is the validated key pair for Auth, resolved once at
	// enqueue time so prepare() never re-validates or re-parses PEM
	// material while draining a batch.
	authKeyPair *vapid.KeyPair
}

// queue is an append-only FIFO list of pending Notifications. It is not
// safe for concurrent mutation: per spec §5, QueueNotification and
// Flush/FlushPooled must not overlap on the same Client.
type queue struct {
	items []*Notification
}

func (q *queue) enqueue(n *Notification) {
	q.items = append(q.items, n)
}

func (q *queue) len() int {
	return len(q.items)
}

// drain returns the queued notifications in FIFO enqueue order and
// empties the queue.
func (q *queue) drain() []*Notification {
	items := q.items
	q.items = nil
	return items
}

// validateForEnqueue applies the pre-enqueue checks spec §4.6 requires:
// payload size, coding presence, and VAPID override validity. On
// success it returns the resolved VAPID key pair for the override, or
// nil if there is no override.
func validateForEnqueue(sub Subscription, payload []byte, auth *VAPIDConfig) (*vapid.KeyPair, error) {
	if len(payload) > MaxPayload {
		return nil, payloadError("payload of %d bytes exceeds MaxPayload (%d)", len(payload), MaxPayload)
	}
	if len(payload) > 0 && sub.ContentEncoding == "" {
		return nil, payloadError("subscription must carry a content coding when a payload is present")
	}

	if auth == nil {
		return nil, nil
	}
	return auth.validate()
}
