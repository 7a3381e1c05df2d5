package lookup

import (
	"context"
	"net"
)

// Resolver does forward DNS resolution. Split from the orchestrator so
// tests can stub it out.
type Resolver interface {
	ResolveIPv4(ctx context.Context, host string) ([]string, error)
	ResolveIPv6(ctx context.Context, host string) ([]string, error)
}

type netResolver struct {
	resolver *net.Resolver
}

func (r *netResolver) ResolveIPv4(ctx context.Context, host string) ([]string, error) {
	return r.resolve(ctx, "ip4", host)
}

func (r *netResolver) ResolveIPv6(ctx context.Context, host string) ([]string, error) {
	return r.resolve(ctx, "ip6", host)
}

func (r *netResolver) resolve(ctx context.Context, network, host string) ([]string, error) {
	ips, err := r.resolver.LookupIP(ctx, network, host)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(ips))
	for _, ip := range ips {
		addresses = append(addresses, ip.String())
	}

	return addresses, nil
}
