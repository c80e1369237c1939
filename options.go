package webpush

// Urgency is the RFC 8030 §5.3 urgency hint, directly affecting a user
// agent's battery life decisions about when to wake up and deliver the
// message.
type Urgency string

const (
	UrgencyVeryLow Urgency = "very-low"
	UrgencyLow     Urgency = "low"
	UrgencyNormal  Urgency = "normal"
	UrgencyHigh    Urgency = "high"
)

func (u Urgency) valid() bool {
	switch u {
	case "", UrgencyVeryLow, UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

// Options configures how a notification (or a whole flush) is
// dispatched. The zero value is not ready to use; call NewOptions to
// apply defaults, or rely on the defaults queueNotification applies
// when no Options are given.
type Options struct {
	// TTL is the Time-To-Live in seconds set on the push service POST.
	TTL uint32

	// Urgency, if non-empty, sets the Urgency header.
	Urgency Urgency

	// Topic, if non-empty, sets the Topic header so the push service
	// can collapse pending messages sharing a topic.
	Topic string

	// BatchSize bounds how many queued notifications flush processes
	// at once.
	BatchSize uint32

	// RequestConcurrency bounds how many requests flushPooled keeps
	// in flight at once.
	RequestConcurrency uint32

	// ContentType is the Content-Type set on requests carrying a
	// payload.
	ContentType string

	// PaddingTarget is the plaintext padding target in bytes, in
	// [0, MaxPayload]. Zero means MaxCompatibility.
	PaddingTarget int
}

// NewOptions returns Options with every field defaulted per spec §3:
// TTL=2419200 (28 days), BatchSize=1000, RequestConcurrency=100,
// ContentType="application/octet-stream", PaddingTarget=MaxCompatibility.
func NewOptions() Options {
	return Options{
		TTL:                DefaultTTL,
		BatchSize:          1000,
		RequestConcurrency: 100,
		ContentType:        "application/octet-stream",
		PaddingTarget:      MaxCompatibility,
	}
}

// withDefaults overlays zero fields of o with defaults, the explicit
// struct-overlay design spec §9 calls for in place of a generic option
// mapping: unrecognized keys cannot exist because Options has a fixed
// field set, and defaults apply once at construction rather than being
// re-resolved on every read.
func (o Options) withDefaults() Options {
	d := NewOptions()
	if o.TTL != 0 {
		d.TTL = o.TTL
	}
	if o.Urgency != "" {
		d.Urgency = o.Urgency
	}
	if o.Topic != "" {
		d.Topic = o.Topic
	}
	if o.BatchSize != 0 {
		d.BatchSize = o.BatchSize
	}
	if o.RequestConcurrency != 0 {
		d.RequestConcurrency = o.RequestConcurrency
	}
	if o.ContentType != "" {
		d.ContentType = o.ContentType
	}
	if o.PaddingTarget != 0 {
		d.PaddingTarget = o.PaddingTarget
	}
	return d
}
