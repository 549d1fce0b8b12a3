// Package signature signs outbound requests and verifies inbound ones using
// draft-cavage HTTP signatures, the dialect spoken by Mastodon, Pleroma and
// Lemmy.
package signature

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"code.superseriousbusiness.org/httpsig"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/cache"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/federation"
	"github.com/tarnsocial/tarn/internal/ssrf"
	"github.com/tarnsocial/tarn/internal/utils"
)

var (
	ErrNoSignature      = errors.New("missing Signature header")
	ErrMalformedHeader  = errors.New("malformed Signature header")
	ErrUnknownAlgorithm = errors.New("unsupported signature algorithm")
	ErrDigestMismatch   = errors.New("Digest header does not match the request body")
	ErrKeyBlocked       = errors.New("signer's key URL failed validation")
	ErrKeyUnresolved    = errors.New("signer's key could not be fetched")
)

const (
	keyCacheTTL = time.Hour
	// maxClockSkew is how far an inbound Date header may drift before we
	// log about it. Skew alone never rejects: Fediverse clocks are too
	// unreliable for that, and this leniency is deliberate.
	maxClockSkew = 300 * time.Second
)

var prefs = []httpsig.Algorithm{httpsig.RSA_SHA256}
var postHeaders = []string{httpsig.RequestTarget, "host", "date", "digest"}

// verifyAlgorithms maps the declared algorithm to the RSA algorithms worth
// attempting. hs2019 hides the real algorithm, so both are tried.
var verifyAlgorithms = map[string][]httpsig.Algorithm{
	"":           {httpsig.RSA_SHA256},
	"rsa-sha256": {httpsig.RSA_SHA256},
	"rsa-sha512": {httpsig.RSA_SHA512},
	"hs2019":     {httpsig.RSA_SHA256, httpsig.RSA_SHA512},
}

// Fetcher dereferences a remote document. Implemented by client.Client,
// which applies the SSRF validator before any network touch.
type Fetcher interface {
	Get(ctx context.Context, iri *url.URL) (map[string]any, error)
}

type keyEntry struct {
	// status is "ok", "blocked" or "unresolved", mirroring the DNS cache.
	status string
	pem    string
}

// Engine signs outbound requests with local actors' keys and verifies
// inbound requests against remote actors' published keys.
type Engine struct {
	cfg     config.Configuration
	fetcher Fetcher
	keys    *cache.Cache[string, keyEntry]
	now     func() time.Time
}

func New(cfg config.Configuration, fetcher Fetcher) *Engine {
	return &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		keys:    cache.New[string, keyEntry](keyCacheTTL),
		now:     time.Now,
	}
}

// Sweep drops expired key cache entries. Run periodically on long-lived
// engines.
func (e *Engine) Sweep() {
	e.keys.Sweep()
}

// Sign finalizes the Host, Date and Digest headers and attaches a Signature
// header over (request-target) host date digest using the actor's private
// key. Must be called after the body is final and before the network call.
func (e *Engine) Sign(kp domain.KeyPair, req *http.Request, body []byte) error {
	key, err := utils.ParseRSAPrivateKey(kp.PrivateKeyPem)
	if err != nil {
		return fmt.Errorf("signing: %w", err)
	}

	if req.Host == "" {
		req.Host = req.URL.Host
	}
	// The signer reads signed headers from req.Header only; net/http strips
	// Host from there on send, so setting it is safe and required.
	req.Header.Set("Host", req.Host)
	req.Header.Set("Date", e.now().UTC().Format(http.TimeFormat))

	signer, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, postHeaders, httpsig.Signature, 0)
	if err != nil {
		return err
	}
	return signer.SignRequest(key, kp.KeyId, req, body)
}

// Verify checks an inbound request's signature and returns the verified
// keyId. The body must be the fully read request body; Verify restores it
// on the request for the signature library.
func (e *Engine) Verify(ctx context.Context, r *http.Request, body []byte) (string, error) {
	header := r.Header.Get("Signature")
	if header == "" {
		return "", ErrNoSignature
	}

	params := parseSignatureParams(header)
	keyId := params["keyId"]
	if keyId == "" {
		return "", fmt.Errorf("%w: no keyId", ErrMalformedHeader)
	}

	algorithms, ok := verifyAlgorithms[params["algorithm"]]
	if !ok {
		return keyId, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, params["algorithm"])
	}

	e.checkClockSkew(r)

	if err := checkDigest(r, body); err != nil {
		return keyId, err
	}

	pem, err := e.publicKeyPem(ctx, keyId)
	if err != nil {
		return keyId, err
	}
	pubKey, err := utils.ParseRSAPublicKey(pem)
	if err != nil {
		return keyId, fmt.Errorf("%w: %v", ErrKeyUnresolved, err)
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	verifier, err := httpsig.NewVerifier(r)
	if err != nil {
		return keyId, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	for _, algo := range algorithms {
		if err = verifier.Verify(pubKey, algo); err == nil {
			return keyId, nil
		}
	}
	return keyId, fmt.Errorf("signature verification failed: %w", err)
}

func (e *Engine) checkClockSkew(r *http.Request) {
	date := r.Header.Get("Date")
	if date == "" {
		return
	}
	t, err := http.ParseTime(date)
	if err != nil {
		log.Warn().Str("date", date).Msg("unparseable Date header on signed request")
		return
	}
	if skew := e.now().Sub(t).Abs(); skew > maxClockSkew {
		log.Warn().Dur("skew", skew).Msg("inbound request Date is far from local time")
	}
}

func checkDigest(r *http.Request, body []byte) error {
	digest := r.Header.Get("Digest")
	if digest == "" {
		return nil
	}

	algo, value, found := strings.Cut(digest, "=")
	if !found || !strings.EqualFold(algo, "SHA-256") {
		return fmt.Errorf("%w: unsupported digest %q", ErrDigestMismatch, digest)
	}

	sum := sha256.Sum256(body)
	if base64.StdEncoding.EncodeToString(sum[:]) != value {
		return ErrDigestMismatch
	}
	return nil
}

// publicKeyPem resolves a keyId to PEM key material, consulting the TTL
// cache first. Negative outcomes ("blocked", "unresolved") are cached too,
// so a misbehaving signer cannot force repeated fetches.
func (e *Engine) publicKeyPem(ctx context.Context, keyId string) (string, error) {
	if entry, ok := e.keys.Get(keyId); ok {
		switch entry.status {
		case "blocked":
			return "", fmt.Errorf("%w: %s", ErrKeyBlocked, keyId)
		case "unresolved":
			return "", fmt.Errorf("%w: %s", ErrKeyUnresolved, keyId)
		default:
			return entry.pem, nil
		}
	}

	iri, err := url.Parse(keyId)
	if err != nil {
		return "", fmt.Errorf("%w: unparseable keyId %q", ErrMalformedHeader, keyId)
	}
	// The key lives in the actor document; the fragment only selects the
	// key within it.
	fetchIri := *iri
	fetchIri.Fragment = ""
	fetchIri.RawFragment = ""

	doc, err := e.fetcher.Get(ctx, &fetchIri)
	if err != nil {
		status := "unresolved"
		wrapped := ErrKeyUnresolved
		if ssrf.IsValidationError(err) {
			status = "blocked"
			wrapped = ErrKeyBlocked
		}
		e.keys.Put(keyId, keyEntry{status: status})
		return "", fmt.Errorf("%w: %v", wrapped, err)
	}

	pem, err := extractPublicKeyPem(doc, keyId)
	if err != nil {
		e.keys.Put(keyId, keyEntry{status: "unresolved"})
		return "", err
	}

	e.keys.Put(keyId, keyEntry{status: "ok", pem: pem})
	return pem, nil
}

// extractPublicKeyPem reads publicKey.publicKeyPem from an actor document,
// falling back to scanning a publicKeys array for implementations that
// publish several keys.
func extractPublicKeyPem(doc map[string]any, keyId string) (string, error) {
	if pk, ok := doc["publicKey"].(map[string]any); ok {
		if pem, ok := pk["publicKeyPem"].(string); ok && pem != "" {
			return pem, nil
		}
	}

	if arr, ok := doc["publicKeys"].([]any); ok {
		for _, entry := range arr {
			pk, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if id, _ := pk["id"].(string); id != "" && id != keyId {
				continue
			}
			if pem, ok := pk["publicKeyPem"].(string); ok && pem != "" {
				return pem, nil
			}
		}
	}

	return "", fmt.Errorf("%w: publicKeyPem in %s", federation.ErrMissingProperty, keyId)
}

// parseSignatureParams splits a Signature header into its parameters,
// tolerating both key="value" and bare key=value forms.
func parseSignatureParams(header string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return params
}
