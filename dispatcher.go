package webpush

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pushkit/webpush/internal/wpcrypto"
	"github.com/pushkit/webpush/vapid"
)

// prepare builds the HTTP request for one notification, running the
// encryption engine when a payload is present and always attaching the
// VAPID header set, per spec §4.6/§4.7. n.Options and n.Auth, if set,
// override the dispatcher's defaults for this notification only.
func prepare(ctx context.Context, n *Notification, defaults Options, defaultAuth *vapid.KeyPair, signer *vapid.Signer) (*http.Request, error) {
	opts := defaults
	if n.Options != nil {
		opts = n.Options.withDefaults()
	}

	kp := defaultAuth
	if n.authKeyPair != nil {
		kp = n.authKeyPair
	}
	if kp == nil {
		return nil, configError("no VAPID identity configured for endpoint %q", n.Subscription.Endpoint)
	}

	var (
		body        []byte
		contentEnc  ContentCoding
		encryptionH string // aesgcm "Encryption" header value
		cryptoKeyH  string // aesgcm "Crypto-Key" header value (dh=...)
	)

	if len(n.Payload) > 0 {
		if !n.Subscription.hasKeys() {
			return nil, payloadError("subscription for endpoint %q is missing PublicKey/AuthSecret", n.Subscription.Endpoint)
		}
		subPub, err := wpcrypto.B64Decode(n.Subscription.PublicKey)
		if err != nil {
			return nil, protocolError("invalid subscription public key: %v", err)
		}
		authSecret, err := wpcrypto.B64Decode(n.Subscription.AuthSecret)
		if err != nil {
			return nil, protocolError("invalid subscription auth secret: %v", err)
		}

		msg, err := encryptMessage(n.Payload, subPub, authSecret, n.Subscription.ContentEncoding, opts.PaddingTarget)
		if err != nil {
			return nil, err
		}

		body = msg.Body
		contentEnc = msg.Coding
		if msg.Coding == AESGCM {
			encryptionH = "salt=" + wpcrypto.B64Encode(msg.Salt)
			cryptoKeyH = "dh=" + wpcrypto.B64Encode(msg.LocalPublicKey)
		}
	} else {
		contentEnc = n.Subscription.ContentEncoding
		if contentEnc == "" {
			// No payload means no framing decision to make; default to
			// the standardized coding so the VAPID header still takes a
			// well-defined shape (spec §4.1's "signaling-only push").
			contentEnc = AES128GCM
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.Subscription.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, protocolError("building request for endpoint %q: %v", n.Subscription.Endpoint, err)
	}

	req.Header.Set("TTL", strconv.FormatUint(uint64(opts.TTL), 10))
	if opts.Topic != "" {
		req.Header.Set("Topic", opts.Topic)
	}
	if opts.Urgency != "" {
		if !opts.Urgency.valid() {
			return nil, configError("invalid urgency %q", opts.Urgency)
		}
		req.Header.Set("Urgency", string(opts.Urgency))
	}

	if len(body) > 0 {
		req.Header.Set("Content-Encoding", string(contentEnc))
		req.Header.Set("Content-Type", opts.ContentType)
	}

	audience, err := vapid.Audience(n.Subscription.Endpoint)
	if err != nil {
		return nil, err
	}
	header, err := signer.Sign(audience, string(contentEnc), kp, n.vapidExpiration())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", header.Authorization)

	switch contentEnc {
	case AESGCM:
		// RFC draft-ietf-webpush-encryption-04 §3.2: Crypto-Key may carry
		// multiple comma-separated parameters; dh= and p256ecdsa= share
		// the header, joined with a semicolon per the VAPID draft.
		req.Header.Set("Encryption", encryptionH)
		if header.CryptoKey != "" {
			req.Header.Set("Crypto-Key", cryptoKeyH+";"+header.CryptoKey)
		} else {
			req.Header.Set("Crypto-Key", cryptoKeyH)
		}
	}

	return req, nil
}

// vapidExpiration returns the expiration override carried by a
// notification's Auth config, or the zero Time when there is none (the
// signer then applies vapid.DefaultExpiration).
func (n *Notification) vapidExpiration() time.Time {
	if n.Auth != nil {
		return n.Auth.Expiration
	}
	return time.Time{}
}

// dispatch issues req and converts the transport's outcome into a
// MessageSentReport: a transport error becomes a failure report rather
// than a propagated error, so one bad endpoint in a batch never aborts
// the others.
func dispatch(client HTTPClient, req *http.Request, correlationID uuid.UUID, logger *slog.Logger) MessageSentReport {
	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("webpush request failed", "correlationID", correlationID, "endpoint", req.URL.String(), "err", err)
		return newFailureReport(req, resp, correlationID, err.Error())
	}
	logger.Debug("webpush request sent", "correlationID", correlationID, "endpoint", req.URL.String(), "status", resp.StatusCode)
	return newSuccessReport(req, resp, correlationID)
}

// flush drains q, splits it into batches of batchSize, and within each
// batch prepares every request and initiates them all concurrently
// (spec §4.7/§5: "within a batch, initiates all requests" and "proceed
// concurrently ... batch-wide for ordered flush"). Reports are yielded
// in request-issue (enqueue) order once the whole batch has completed,
// not in completion order — batch N+1 never starts before batch N's
// requests have all finished.
//
// yield returning false stops the flush early (the pull-based iterator
// shape spec §9 calls for, matching range-over-func iterators). A
// notification that fails to prepare (an invalid endpoint URL, a
// malformed subscription key) yields a failure report in its slot
// rather than aborting the flush — every drained notification gets
// exactly one report, matching flushPooled's per-notification handling.
func flush(ctx context.Context, q *queue, client HTTPClient, defaults Options, defaultAuth *vapid.KeyPair, signer *vapid.Signer, batchSize int, logger *slog.Logger, yield func(MessageSentReport) bool) error {
	defer signer.ClearCache()

	if batchSize <= 0 {
		batchSize = 1
	}

	notifications := q.drain()
	for start := 0; start < len(notifications); start += batchSize {
		end := min(start+batchSize, len(notifications))
		batch := notifications[start:end]

		reports := make([]MessageSentReport, len(batch))
		var wg sync.WaitGroup
		for i, n := range batch {
			req, err := prepare(ctx, n, defaults, defaultAuth, signer)
			if err != nil {
				logger.Debug("webpush prepare failed", "correlationID", n.CorrelationID, "endpoint", n.Subscription.Endpoint, "err", err)
				reports[i] = newPrepareFailureReport(n.Subscription.Endpoint, n.CorrelationID, err.Error())
				continue
			}
			wg.Add(1)
			go func(i int, req *http.Request, correlationID uuid.UUID) {
				defer wg.Done()
				reports[i] = dispatch(client, req, correlationID, logger)
			}(i, req, n.CorrelationID)
		}
		wg.Wait()

		for _, report := range reports {
			if !yield(report) {
				return nil
			}
		}
	}
	return nil
}

// flushPooled drains q, splits it into batches of batchSize, and
// dispatches each batch with at most concurrency requests in flight at
// once, grounded on dmitrymomot-saaskit's pkg/queue/worker.go
// channel-semaphore pattern (the example pack carries no dedicated
// worker-pool or semaphore library). callback is invoked exactly once
// per notification, in completion order rather than enqueue order: a
// notification that fails to prepare gets a failure report in place of
// a dispatch, rather than being dropped. Batches run sequentially:
// batch N+1 does not start until every request of batch N has
// completed, per spec §5. If ctx is cancelled, flushPooled waits for the
// requests already in flight and returns ctx.Err(); the drained
// notifications not yet started get no callback.
func flushPooled(ctx context.Context, q *queue, client HTTPClient, defaults Options, defaultAuth *vapid.KeyPair, signer *vapid.Signer, batchSize, concurrency int, logger *slog.Logger, callback func(MessageSentReport)) error {
	defer signer.ClearCache()

	if batchSize <= 0 {
		batchSize = 1
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	notifications := q.drain()
	for start := 0; start < len(notifications); start += batchSize {
		end := min(start+batchSize, len(notifications))
		batch := notifications[start:end]

		sem := make(chan struct{}, concurrency)
		var wg sync.WaitGroup

		for _, n := range batch {
			select {
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			default:
			}

			req, err := prepare(ctx, n, defaults, defaultAuth, signer)
			if err != nil {
				logger.Debug("webpush prepare failed", "correlationID", n.CorrelationID, "endpoint", n.Subscription.Endpoint, "err", err)
				callback(newPrepareFailureReport(n.Subscription.Endpoint, n.CorrelationID, err.Error()))
				continue
			}

			sem <- struct{}{}
			wg.Add(1)
			go func(req *http.Request, correlationID uuid.UUID) {
				defer wg.Done()
				defer func() { <-sem }()
				callback(dispatch(client, req, correlationID, logger))
			}(req, n.CorrelationID)
		}

		wg.Wait()
	}
	return nil
}
