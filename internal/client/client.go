// Package client performs the engine's outbound GETs: remote actor
// documents and public keys. Every request is gated by the SSRF validator
// and signed as the instance actor, since several large instances reject
// unsigned fetches.
package client

import (
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/ssrf"
)

const userAgent = "tarn/1.0 (+https://github.com/tarnsocial/tarn)"

var prefs = []httpsig.Algorithm{httpsig.RSA_SHA256}
var getHeaders = []string{httpsig.RequestTarget, "host", "date"}

const maxRedirects = 5

// NewHTTPClient builds the http.Client shared by fetches and deliveries.
// Every redirect hop is re-validated, so a vetted URL cannot bounce a
// request onto a private or otherwise forbidden target.
func NewHTTPClient(timeout time.Duration, validator *ssrf.Validator) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return validator.Validate(req.Context(), req.URL.String())
		},
	}
}

// Client fetches ActivityPub documents with the instance actor's signature.
type Client struct {
	client    *http.Client
	validator *ssrf.Validator
	key       crypto.PrivateKey
	keyId     string

	signer      httpsig.Signer
	signerMutex sync.Mutex
}

func New(httpClient *http.Client, validator *ssrf.Validator, key crypto.PrivateKey, keyId string) (*Client, error) {
	signer, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, getHeaders, httpsig.Signature, 0)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    httpClient,
		validator: validator,
		key:       key,
		keyId:     keyId,
		signer:    signer,
	}, nil
}

// Get dereferences an IRI and decodes the response as a JSON object. The
// raw map is returned rather than a typed vocab object so callers can reach
// non-vocabulary fields like publicKeys arrays.
func (c *Client) Get(ctx context.Context, iri *url.URL) (map[string]any, error) {
	if err := c.validator.Validate(ctx, iri.String()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/activity+json")
	req.Header.Set("User-Agent", userAgent)

	c.signerMutex.Lock()
	// The signer reads signed headers from req.Header only, so Host must be
	// present there; net/http strips it again on send.
	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	err = c.signer.SignRequest(c.key, c.keyId, req, nil)
	c.signerMutex.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("error while signing request")
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		content, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		log.Error().Str("status", res.Status).Bytes("response", content).Str("iri", iri.String()).Msg("fetch error")
		return nil, fmt.Errorf("%d %s", res.StatusCode, res.Status)
	}

	var doc map[string]any
	if err = json.NewDecoder(res.Body).Decode(&doc); err != nil {
		log.Error().Err(err).Msg("response body unmarshaling error")
		return nil, err
	}
	return doc, nil
}
