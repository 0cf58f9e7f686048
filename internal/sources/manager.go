package sources

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"goldpricebot/internal/logger"
)

// Manager fans out to every registered fetcher. Fetchers are independent
// network calls, so each runs on its own goroutine; a failing source is
// logged and contributes nothing.
type Manager struct {
	fetchers []Fetcher
	log      *logrus.Entry
}

// NewManager wires the five production sources over a shared HTTP client.
func NewManager() *Manager {
	client := newHTTPClient()
	return &Manager{
		fetchers: []Fetcher{
			&SJC{Client: client},
			&Doji{Client: client},
			&PhuQuy{Client: client},
			&NgocTham{Client: client},
			&PNJ{Client: client},
		},
		log: logger.With("sources"),
	}
}

// NewManagerWith builds a manager over the given fetchers. Used by tests
// and by anything that wants a reduced source set.
func NewManagerWith(fetchers ...Fetcher) *Manager {
	return &Manager{fetchers: fetchers, log: logger.With("sources")}
}

// FetchAll collects entries from every source concurrently. The result
// keeps the fixed registration order regardless of which goroutine
// finished first, so downstream grouping stays stable.
func (m *Manager) FetchAll(ctx context.Context) []Entry {
	results := make([][]Entry, len(m.fetchers))

	var wg sync.WaitGroup
	for i, f := range m.fetchers {
		wg.Add(1)
		go func(i int, f Fetcher) {
			defer wg.Done()
			entries, err := f.Fetch(ctx)
			if err != nil {
				m.log.WithError(err).Warnf("fetch %s failed", f.Name())
				return
			}
			if len(entries) == 0 {
				m.log.Warnf("fetch %s returned no entries", f.Name())
			}
			results[i] = entries
		}(i, f)
	}
	wg.Wait()

	var out []Entry
	for _, entries := range results {
		out = append(out, entries...)
	}
	return out
}
