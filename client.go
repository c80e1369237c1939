package webpush

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pushkit/webpush/vapid"
)

// Client is the entry point for queueing and dispatching push
// notifications. A Client is not safe for concurrent use: per spec
// §5, QueueNotification must not overlap with Flush/FlushPooled, and
// neither may overlap with itself. Create one Client per goroutine
// that needs to send push messages, or serialize access externally.
type Client struct {
	httpClient   HTTPClient
	defaults     Options
	defaultVAPID *vapid.KeyPair
	signer       *vapid.Signer
	logger       *slog.Logger
	queue        queue
}

// NewClient constructs a Client. httpClient is the transport
// collaborator (an *http.Client satisfies HTTPClient directly).
// defaultAuth, when non-nil, is validated immediately and used as the
// VAPID identity for any notification that doesn't supply its own
// Auth override. defaultOptions, when nil, falls back to
// NewOptions().
func NewClient(httpClient HTTPClient, defaultAuth *VAPIDConfig, defaultOptions *Options) (*Client, error) {
	if httpClient == nil {
		return nil, configError("httpClient is required")
	}

	opts := NewOptions()
	if defaultOptions != nil {
		opts = defaultOptions.withDefaults()
	}

	var kp *vapid.KeyPair
	if defaultAuth != nil {
		var err error
		kp, err = defaultAuth.validate()
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		httpClient:   httpClient,
		defaults:     opts,
		defaultVAPID: kp,
		signer:       vapid.NewSigner(true),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger replaces the Client's logger. The default logger discards
// everything; pass a real *slog.Logger to observe flush-level and
// request-level debug records.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.logger = logger
}

// QueueNotification validates and enqueues one notification for a
// later Flush/FlushPooled. An empty payload is valid (spec §4.1's
// signaling-only push); opts and auth, when non-nil, override the
// Client's defaults for this notification alone.
func (c *Client) QueueNotification(sub Subscription, payload []byte, opts *Options, auth *VAPIDConfig) error {
	kp, err := validateForEnqueue(sub, payload, auth)
	if err != nil {
		return err
	}

	c.queue.enqueue(&Notification{
		Subscription:  sub,
		Payload:       payload,
		Options:       opts,
		Auth:          auth,
		CorrelationID: uuid.New(),
		authKeyPair:   kp,
	})
	return nil
}

// Len reports how many notifications are currently queued.
func (c *Client) Len() int {
	return c.queue.len()
}

// Flush drains the queue, splits it into batches of batchSize (0 means
// use the Client's default Options.BatchSize), and dispatches each
// batch concurrently, calling yield with each report in enqueue order
// once its batch completes. Returning false from yield stops the
// flush early, matching the range-over-func iterator shape.
//
//	for report := range client.Flush(ctx, 0) {
//		...
//	}
func (c *Client) Flush(ctx context.Context, batchSize int) func(yield func(MessageSentReport) bool) {
	if batchSize <= 0 {
		batchSize = int(c.defaults.BatchSize)
	}
	return func(yield func(MessageSentReport) bool) {
		queued := c.queue.len()
		c.logger.Debug("webpush flush starting", "queued", queued, "batchSize", batchSize)
		if err := flush(ctx, &c.queue, c.httpClient, c.defaults, c.defaultVAPID, c.signer, batchSize, c.logger, yield); err != nil {
			c.logger.Debug("webpush flush aborted", "queued", queued, "err", err)
			return
		}
		c.logger.Debug("webpush flush complete", "queued", queued)
	}
}

// FlushPooled drains the queue, splits it into batches of batchSize (0
// means use the Client's default Options.BatchSize), and dispatches
// each batch with at most concurrency requests in flight at once (0
// means use Options.RequestConcurrency), invoking callback once per
// notification in completion order (not enqueue order). Batches run
// sequentially.
func (c *Client) FlushPooled(ctx context.Context, batchSize, concurrency int, callback func(MessageSentReport)) error {
	if batchSize <= 0 {
		batchSize = int(c.defaults.BatchSize)
	}
	if concurrency <= 0 {
		concurrency = int(c.defaults.RequestConcurrency)
	}
	queued := c.queue.len()
	c.logger.Debug("webpush flushPooled starting", "queued", queued, "batchSize", batchSize, "concurrency", concurrency)
	err := flushPooled(ctx, &c.queue, c.httpClient, c.defaults, c.defaultVAPID, c.signer, batchSize, concurrency, c.logger, callback)
	c.logger.Debug("webpush flushPooled complete", "queued", queued, "err", err)
	return err
}
