package lookup

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cloud66-oss/geotrace/utils"
)

// Batch runs the single-lookup pipeline over all inputs under a
// bounded worker pool. The returned slice is index-stable:
// results[i] corresponds to inputs[i] regardless of completion order.
// One failing input never aborts its siblings; every failure ends up
// in that result's Error field.
func (l *Lookuper) Batch(ctx context.Context, inputs []string) []*utils.Result {
	results := make([]*utils.Result, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	completed := 0
	total := len(inputs)

	pool, err := ants.NewPoolWithFunc(l.concurrency, func(arg interface{}) {
		defer wg.Done()

		i := arg.(int)
		results[i] = l.Lookup(ctx, inputs[i])

		if l.cfg.OnProgress != nil {
			// the callback must observe monotonically increasing
			// counts, so increment and invoke under one lock
			progressMu.Lock()
			completed++
			l.cfg.OnProgress(completed, total)
			progressMu.Unlock()
		}
	})
	if err != nil {
		// pool creation only fails on an invalid size, which New
		// already rejects; still, never panic across this boundary
		for i := range inputs {
			results[i] = &utils.Result{Input: inputs[i], Error: err.Error()}
		}
		return results
	}
	defer pool.Release()

	for i := range inputs {
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			results[i] = &utils.Result{Input: inputs[i], Error: err.Error()}
		}
	}

	wg.Wait()

	return results
}
