package numexpr

import (
	"sync"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
)

// The compilation cache is process-wide and keyed by the exact source
// string: no whitespace or structural normalization, no eviction. Programs
// are immutable once published, so concurrent readers can share entries
// freely. Two callers racing to compile the same new text may both compile,
// but only the first publishes; the loser adopts the published Program.
var (
	cacheMu      sync.RWMutex
	cache        = map[string]*bytecode.Program{}
	compilations int // count of full pipeline runs, for tests
)

func compileAndCache(src string) (*bytecode.Program, error) {
	cacheMu.RLock()
	p := cache[src]
	cacheMu.RUnlock()
	if p != nil {
		return p, nil
	}

	p, err := Compile(src, nil)
	if err != nil {
		// Failures never populate the cache.
		return nil, err
	}

	cacheMu.Lock()
	compilations++
	if prev, ok := cache[src]; ok {
		p = prev
	} else {
		cache[src] = p
	}
	cacheMu.Unlock()
	return p, nil
}
