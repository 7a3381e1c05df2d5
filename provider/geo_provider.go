package provider

import (
	"context"

	"github.com/cloud66-oss/geotrace/utils"
)

// Provider identifiers. NameAuto is a selection strategy handled by the
// lookup orchestrator, never a value stamped on a result.
const (
	NameLocal  = "local"
	NameIPInfo = "ipinfo"
	NameAuto   = "auto"
)

// GeoProvider resolves an IP address to location and network-owner
// data. Available is a cheap, idempotent readiness probe. Lookup only
// accepts literal IP addresses; hostname resolution happens upstream.
type GeoProvider interface {
	Name() string
	Available() bool
	Lookup(ctx context.Context, address string) (*utils.Result, error)
}
