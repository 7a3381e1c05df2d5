// Package cdn decides whether an address belongs to a known
// CDN/cloud/hosting/security provider, so callers do not mistake
// edge-server location for origin-server location.
//
// Classification is a pure function over static tables: no I/O, no
// mutable state, safe for concurrent use.
package cdn

import (
	"fmt"
	"strings"

	"github.com/cloud66-oss/geotrace/utils"
)

// Classify checks three signal tiers in decreasing order of
// reliability: ASN exact match, hostname suffix match, IP literal
// prefix match. The first matching tier wins. asn may be 0 and
// hostname empty when those signals are unavailable; hostname should
// only be supplied when the original input was a domain, not a
// literal IP.
func Classify(ip string, asn uint, hostname string) *utils.Classification {
	if asn != 0 {
		if p, ok := asnProviders[asn]; ok {
			return matched(p, fmt.Sprintf("AS%d is operated by %s", asn, p.Name))
		}
	}

	if hostname != "" {
		lowered := strings.ToLower(hostname)
		for _, pattern := range hostnamePatterns {
			if strings.HasSuffix(lowered, pattern.Suffix) {
				return matched(pattern.Provider,
					fmt.Sprintf("hostname matches %s (%s)", pattern.Suffix, pattern.Provider.Name))
			}
		}
	}

	for _, prefix := range ipPrefixes {
		if strings.HasPrefix(ip, prefix.Prefix) {
			return matched(prefix.Provider,
				fmt.Sprintf("IP is in a known %s range (%s*)", prefix.Provider.Name, prefix.Prefix))
		}
	}

	return &utils.Classification{IsCDN: false}
}

func matched(p Provider, signal string) *utils.Classification {
	return &utils.Classification{
		IsCDN:    true,
		Provider: p.Name,
		Category: string(p.Category),
		Note:     signal + "; " + implication(p.Category),
	}
}

// implication explains what the category means for location accuracy:
// a CDN hides the true origin entirely, while cloud/hosting only
// narrows the answer to a data-center region.
func implication(c Category) string {
	switch c {
	case CategoryCDN:
		return "the location is a CDN edge server near the requester, not the origin server"
	case CategoryCloud:
		return "the location is a cloud region data center, not where the service operator is based"
	default:
		return "the location is the provider's data center"
	}
}
