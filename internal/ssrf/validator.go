// Package ssrf validates every URL the federation engine is about to fetch
// or deliver to. Nothing in the engine may issue an outbound request without
// passing through a Validator first.
package ssrf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/cache"
)

var (
	ErrEmptyUrl     = errors.New("empty url")
	ErrCredentials  = errors.New("url contains credentials")
	ErrScheme       = errors.New("scheme must be https")
	ErrPort         = errors.New("port must be 443")
	ErrLiteralIP    = errors.New("host is a literal IP address")
	ErrBareHostname = errors.New("host has no dot")
	ErrBlockedHost  = errors.New("host is blocklisted")
	ErrPrivateAddr  = errors.New("host resolves to a private or reserved address")
	ErrUnresolved   = errors.New("host did not resolve")
)

const dnsCacheTTL = time.Hour

// IsValidationError reports whether err is one of this package's policy
// rejections, as opposed to a transport or protocol failure. Callers use it
// to distinguish "never fetch this" from "try again later".
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrEmptyUrl, ErrCredentials, ErrScheme, ErrPort,
		ErrLiteralIP, ErrBareHostname, ErrBlockedHost, ErrPrivateAddr,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Resolver is the DNS lookup capability the validator needs. *net.Resolver
// satisfies it.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

type dnsResult struct {
	// status is "ok", "blocked" or "unresolved". A cached "blocked" or
	// "unresolved" short-circuits future calls without re-resolving.
	status string
	ips    []net.IP
}

// Validator enforces the outbound URL policy: https on the default port, a
// dotted public hostname, and no resolution into private or reserved ranges.
type Validator struct {
	resolver    Resolver
	validateDns bool
	dns         *cache.Cache[string, dnsResult]
}

func New(resolver Resolver, validateDns bool) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Validator{
		resolver:    resolver,
		validateDns: validateDns,
		dns:         cache.New[string, dnsResult](dnsCacheTTL),
	}
}

// Sweep drops expired DNS results. Run periodically on long-lived
// validators.
func (v *Validator) Sweep() {
	v.dns.Sweep()
}

// Validate checks a full URL against the outbound policy. A non-nil return
// means the URL must not be fetched.
func (v *Validator) Validate(ctx context.Context, rawUrl string) error {
	err := v.validate(ctx, rawUrl)
	if err != nil {
		log.Warn().Str("url", rawUrl).Err(err).Msg("rejected outbound url")
	}
	return err
}

func (v *Validator) validate(ctx context.Context, rawUrl string) error {
	if rawUrl == "" {
		return ErrEmptyUrl
	}

	u, err := url.Parse(rawUrl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyUrl, err)
	}

	if u.User != nil {
		return ErrCredentials
	}

	if u.Scheme != "https" {
		return fmt.Errorf("%w: got %q", ErrScheme, u.Scheme)
	}

	if port := u.Port(); port != "" && port != "443" {
		return fmt.Errorf("%w: got %s", ErrPort, port)
	}

	return v.checkHost(ctx, u.Hostname())
}

// ValidateInstance normalizes a bare instance hostname (a scheme and
// trailing slash are tolerated) and applies the host-level checks without
// requiring a full URL.
func (v *Validator) ValidateInstance(ctx context.Context, hostnameOrUrl string) error {
	host := strings.ToLower(strings.TrimSpace(hostnameOrUrl))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return ErrEmptyUrl
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}

	err := v.checkHost(ctx, host)
	if err != nil {
		log.Warn().Str("instance", hostnameOrUrl).Err(err).Msg("rejected instance host")
	}
	return err
}

func (v *Validator) checkHost(ctx context.Context, host string) error {
	if host == "" {
		return ErrEmptyUrl
	}

	if net.ParseIP(host) != nil {
		return ErrLiteralIP
	}

	if !strings.Contains(host, ".") {
		return ErrBareHostname
	}

	if metadataHosts[host] {
		return fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}

	if !v.validateDns {
		return nil
	}

	if res, ok := v.dns.Get(host); ok {
		switch res.status {
		case "blocked":
			return fmt.Errorf("%w: %s", ErrPrivateAddr, host)
		case "unresolved":
			return fmt.Errorf("%w: %s", ErrUnresolved, host)
		default:
			return nil
		}
	}

	ips, err := v.resolver.LookupIP(ctx, "ip", host)
	if err != nil || len(ips) == 0 {
		v.dns.Put(host, dnsResult{status: "unresolved"})
		return fmt.Errorf("%w: %s", ErrUnresolved, host)
	}

	for _, ip := range ips {
		if isReserved(ip) {
			v.dns.Put(host, dnsResult{status: "blocked"})
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateAddr, host, ip)
		}
	}

	v.dns.Put(host, dnsResult{status: "ok", ips: ips})
	return nil
}
