// Package lookup resolves a hostname-or-IP input to a concrete IP,
// selects between geo providers with fallback, runs CDN classification
// on the outcome and assembles the final record. It is the entire
// externally consumed surface of geotrace; the CLI and the HTTP server
// are thin callers.
package lookup

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"

	"github.com/cloud66-oss/geotrace/cdn"
	"github.com/cloud66-oss/geotrace/provider"
	"github.com/cloud66-oss/geotrace/utils"
)

// Default worker-pool widths for Batch. Local file-backed lookups can
// run wide; remote lookups must not oversaturate a rate-limited API.
const (
	DefaultLocalConcurrency  = 50
	DefaultRemoteConcurrency = 10
)

type Config struct {
	// Provider is local, ipinfo or auto; empty selects auto.
	Provider string
	// APIKey authenticates against ipinfo.io; optional.
	APIKey string
	// DataDir holds the local mmdb files.
	DataDir string
	// Concurrency bounds the Batch worker pool; 0 selects the
	// per-provider default, negative values are rejected.
	Concurrency int
	// OnProgress, if set, fires after each Batch completion with a
	// running (completed, total) count.
	OnProgress func(completed, total int)
}

type Lookuper struct {
	cfg          Config
	providerName string
	concurrency  int
	registry     *provider.ReaderRegistry
	local        provider.GeoProvider
	remote       provider.GeoProvider
	resolver     Resolver
}

// New validates cfg and builds a Lookuper. Unknown provider names and
// negative concurrency are rejected here, before any lookup starts.
func New(cfg Config) (*Lookuper, error) {
	name := cfg.Provider
	if name == "" {
		name = provider.NameAuto
	}

	switch name {
	case provider.NameLocal, provider.NameIPInfo, provider.NameAuto:
	default:
		return nil, &utils.UnknownProviderError{Name: cfg.Provider}
	}

	concurrency := cfg.Concurrency
	if concurrency == 0 {
		if name == provider.NameLocal {
			concurrency = DefaultLocalConcurrency
		} else {
			concurrency = DefaultRemoteConcurrency
		}
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	registry := provider.NewReaderRegistry()

	return &Lookuper{
		cfg:          cfg,
		providerName: name,
		concurrency:  concurrency,
		registry:     registry,
		local:        provider.NewLocalProvider(cfg.DataDir, registry),
		remote:       provider.NewIPInfoProvider(cfg.APIKey),
		resolver:     &netResolver{resolver: net.DefaultResolver},
	}, nil
}

// Close releases the shared database readers.
func (l *Lookuper) Close() {
	l.registry.Close()
}

// Lookup runs the full pipeline for one input. All failures are
// encoded in the result's Error field; Lookup never returns an error
// or panics.
func (l *Lookuper) Lookup(ctx context.Context, input string) *utils.Result {
	result := l.locate(ctx, input)

	// the input field always echoes the caller-supplied string,
	// whatever the provider put there
	result.Input = input

	return result
}

func (l *Lookuper) locate(ctx context.Context, input string) *utils.Result {
	ip := input
	literal := net.ParseIP(input) != nil

	if !literal {
		resolved, err := l.resolve(ctx, input)
		if err != nil {
			return &utils.Result{
				Error: (&utils.ResolveError{Input: input}).Error(),
			}
		}
		ip = resolved
	}

	result, err := l.lookupIP(ctx, ip)
	if err != nil {
		return &utils.Result{
			IP:    ip,
			Geo:   utils.Location{IP: ip},
			Error: err.Error(),
		}
	}

	// only domain inputs carry a hostname signal: a dotted-decimal
	// string must not be fed into hostname-pattern matching
	hostname := ""
	if !literal {
		hostname = input
	}

	var asn uint
	if result.Network != nil {
		asn = result.Network.ASN
	}

	if c := cdn.Classify(result.IP, asn, hostname); c.IsCDN {
		result.Classification = c
	}

	return result
}

// resolve prefers A records; AAAA is only consulted when the A lookup
// fails or comes back empty.
func (l *Lookuper) resolve(ctx context.Context, host string) (string, error) {
	ips, err := l.resolver.ResolveIPv4(ctx, host)
	if err == nil && len(ips) > 0 {
		return ips[0], nil
	}

	ips, err = l.resolver.ResolveIPv6(ctx, host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", &utils.ResolveError{Input: host}
	}

	return ips[0], nil
}

// lookupIP invokes the configured provider. For auto, the local
// provider is attempted when its database is present and the remote
// provider takes over on unavailability or error; the remote outcome
// wins, the local failure is only kept as a debug trace.
func (l *Lookuper) lookupIP(ctx context.Context, ip string) (*utils.Result, error) {
	switch l.providerName {
	case provider.NameLocal:
		return l.local.Lookup(ctx, ip)
	case provider.NameIPInfo:
		return l.remote.Lookup(ctx, ip)
	default:
		if l.local.Available() {
			result, err := l.local.Lookup(ctx, ip)
			if err == nil {
				return result, nil
			}
			log.Debug().Err(err).Str("ip", ip).Msg("local lookup failed, falling back to ipinfo")
		}
		return l.remote.Lookup(ctx, ip)
	}
}
