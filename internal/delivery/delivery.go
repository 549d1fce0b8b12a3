// Package delivery posts signed activities to remote inboxes with
// at-least-once semantics: transient failures are retried with a fixed
// delay, policy failures are skipped without touching the network.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/signature"
	"github.com/tarnsocial/tarn/internal/ssrf"
)

const (
	contentType = "application/activity+json"
	userAgent   = "tarn/1.0 (+https://github.com/tarnsocial/tarn)"
)

type Outcome int

const (
	// Delivered: a remote server acknowledged the activity with a 2xx.
	Delivered Outcome = iota
	// Skipped: policy forbade the delivery. Not retryable.
	Skipped
	// Failed: every attempt errored. The caller may requeue.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

type Result struct {
	Outcome  Outcome
	Reason   string
	Attempts int
}

// Deliverer sends one activity to one inbox. Fan-out across followers is the
// queue's job.
type Deliverer struct {
	cfg       config.Configuration
	client    *http.Client
	validator *ssrf.Validator
	signer    *signature.Engine
	blocklist db.Blocklist
}

func New(cfg config.Configuration, client *http.Client, validator *ssrf.Validator, signer *signature.Engine, blocklist db.Blocklist) *Deliverer {
	return &Deliverer{
		cfg:       cfg,
		client:    client,
		validator: validator,
		signer:    signer,
		blocklist: blocklist,
	}
}

// Deliver posts the serialized activity to the inbox, signing as the key
// pair's actor. Policy checks run before any network attempt.
func (d *Deliverer) Deliver(ctx context.Context, kp domain.KeyPair, inbox *url.URL, body []byte) Result {
	if inbox == nil {
		return Result{Outcome: Skipped, Reason: "follower has no usable inbox"}
	}

	if err := d.validator.Validate(ctx, inbox.String()); err != nil {
		return Result{Outcome: Skipped, Reason: err.Error()}
	}

	blocked, err := d.blocklist.IsInstanceBlocked(ctx, inbox.Hostname())
	if err != nil {
		return Result{Outcome: Failed, Reason: err.Error()}
	}
	if blocked {
		return Result{Outcome: Skipped, Reason: "instance is blocked: " + inbox.Hostname()}
	}

	attempts := d.cfg.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return Result{Outcome: Failed, Reason: ctx.Err().Error(), Attempts: attempt - 1}
			case <-time.After(d.cfg.RetryDelay):
			}
		}

		if err := d.attempt(ctx, kp, inbox, body); err == nil {
			return Result{Outcome: Delivered, Attempts: attempt}
		} else {
			lastErr = err
			log.Warn().Err(err).Str("inbox", inbox.String()).Int("attempt", attempt).Msg("delivery attempt failed")
		}
	}

	return Result{Outcome: Failed, Reason: lastErr.Error(), Attempts: attempts}
}

func (d *Deliverer) attempt(ctx context.Context, kp domain.KeyPair, inbox *url.URL, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inbox.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", userAgent)

	if err = d.signer.Sign(kp, req, body); err != nil {
		return err
	}

	res, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		content, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("inbox returned %s: %s", res.Status, content)
	}

	io.Copy(io.Discard, res.Body)
	return nil
}
