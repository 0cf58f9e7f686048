// Package prices orchestrates one aggregation run: fetch all sources,
// normalize, compare against the last persisted snapshot, persist the
// new one, render.
package prices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"goldpricebot/internal/diff"
	"goldpricebot/internal/logger"
	"goldpricebot/internal/render"
	"goldpricebot/internal/snapshot"
	"goldpricebot/internal/sources"
	"goldpricebot/internal/utils"
)

// ErrNoData is the distinct outcome of a run where every source came
// back empty. It is not an internal fault; callers turn it into a
// user-visible message.
var ErrNoData = errors.New("no price data available from any source")

// Sources is what the service needs from the fetch layer.
type Sources interface {
	FetchAll(ctx context.Context) []sources.Entry
}

// Store is the storage tier contract: loads never fail, saves are
// best-effort.
type Store interface {
	Load(ctx context.Context) *snapshot.Snapshot
	Save(ctx context.Context, snap *snapshot.Snapshot)
}

type Service struct {
	src   Sources
	store Store
	log   *logrus.Entry
}

func NewService(src Sources, store Store) *Service {
	return &Service{src: src, store: store, log: logger.With("prices")}
}

// Result carries everything one run produced. Deltas are ephemeral and
// never persisted; the snapshot is what the next run will diff against.
type Result struct {
	RunID     string
	FetchedAt time.Time
	Snapshot  *snapshot.Snapshot
	Deltas    []diff.Delta
}

// Run executes the fixed sequence: fetch all, normalize, load previous,
// diff, persist. Persisting happens after diffing so the comparison is
// always against the pre-run state, even on the same backend.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	runID := strings.SplitN(uuid.New().String(), "-", 2)[0]
	log := s.log.WithField("run", runID)

	entries := s.src.FetchAll(ctx)
	if len(entries) == 0 {
		log.Warn("no entries from any source")
		return nil, ErrNoData
	}
	log.Infof("fetched %d entries", len(entries))

	snap := snapshot.Normalize(entries)
	if snap.Empty() {
		log.Warn("nothing left after normalization")
		return nil, ErrNoData
	}

	previous := s.store.Load(ctx)
	if previous.Empty() {
		log.Info("no previous snapshot")
	}

	deltas := diff.Diff(snap, previous)
	s.store.Save(ctx, snap)

	return &Result{
		RunID:     runID,
		FetchedAt: utils.NowVietnam(),
		Snapshot:  snap,
		Deltas:    deltas,
	}, nil
}

// BuildReport runs an aggregation and renders the report text. Total
// data unavailability yields the fixed user-visible message instead of
// an error; only unexpected faults propagate.
func (s *Service) BuildReport(ctx context.Context) (string, error) {
	res, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return render.NoDataMessage, nil
		}
		return "", err
	}
	return render.BuildMessage(res.Deltas, res.FetchedAt), nil
}
