package cache

import (
	"context"

	"github.com/cloud66-oss/geotrace/utils"
)

type CacheProvider interface {
	Fetch(ctx context.Context, provider string, address string) (*utils.Result, error)
	Add(ctx context.Context, provider string, result *utils.Result) error
}
