package async

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Collect calls fn for every key concurrently, running at most limit calls
// at once (limit < 1 means no bound), and returns the values of the keys
// that succeeded.
//
// Collect waits for every call. Failures are joined in key order and each
// one is prefixed with its key, so one failing key never hides another.
func Collect[K cmp.Ordered, V any](ctx context.Context, keys []K, limit int, fn func(context.Context, K) (V, error)) (map[K]V, error) {
	if limit < 1 || limit > len(keys) {
		limit = len(keys)
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		values = make(map[K]V, len(keys))
		errs   = make(map[K]error)
		slots  = make(chan struct{}, max(limit, 1))
	)
	for _, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()

			v, err := fn(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[key] = fmt.Errorf("%v: %w", key, err)
				return
			}
			values[key] = v
		}()
	}
	wg.Wait()

	failed := make([]error, 0, len(errs))
	for _, key := range slices.Sorted(maps.Keys(errs)) {
		failed = append(failed, errs[key])
	}
	return values, errors.Join(failed...)
}
