package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jinzhu/copier"
	"github.com/spf13/viper"

	"github.com/cloud66-oss/geotrace/utils"
)

type LocalCache struct {
	cache *lru.ARCCache
}

func NewLocalCache(ctx context.Context) (*LocalCache, error) {
	cache, err := lru.NewARC(viper.GetInt("cache.size"))
	if err != nil {
		return nil, err
	}

	return &LocalCache{
		cache: cache,
	}, nil
}

func (lc *LocalCache) Fetch(ctx context.Context, provider string, address string) (*utils.Result, error) {
	value, ok := lc.cache.Get(provider + "--" + address)
	if !ok {
		return nil, nil
	}

	// hand out a deep copy with the cached flag set, so callers never
	// mutate the shared cached record
	out := &utils.Result{}
	if err := copier.CopyWithOption(out, value.(*utils.Result), copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	out.Cached = true

	return out, nil
}

func (lc *LocalCache) Add(ctx context.Context, provider string, result *utils.Result) error {
	lc.cache.Add(provider+"--"+result.Input, result)

	return nil
}
