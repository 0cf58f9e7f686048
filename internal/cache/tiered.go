package cache

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"goldpricebot/internal/config"
	"goldpricebot/internal/logger"
	"goldpricebot/internal/snapshot"
)

// resolveState tracks the lazy Redis handle: not yet attempted, attempted
// and unavailable, or connected. Re-resolution is deliberately deferred
// to the next process run to avoid per-call reconnect storms.
type resolveState int

const (
	stateUnresolved resolveState = iota
	stateUnavailable
	stateReady
)

// Tiered is the storage tier used by the aggregator. Load never fails
// the caller: any backend or decode error degrades to an empty snapshot.
// Save is best-effort and only logs failures.
type Tiered struct {
	cfg  config.Cache
	file *File
	log  *logrus.Entry

	mu    sync.Mutex
	state resolveState
	redis *Redis
}

func NewTiered(cfg config.Cache) *Tiered {
	return &Tiered{
		cfg:  cfg,
		file: &File{Path: cfg.File},
		log:  logger.With("cache"),
	}
}

// primary resolves the Redis backend once per process. Returns nil when
// Redis is unconfigured or the liveness probe failed.
func (t *Tiered) primary() *Redis {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case stateReady:
		return t.redis
	case stateUnavailable:
		return nil
	}

	t.state = stateUnavailable
	if !t.cfg.Redis.Configured() {
		return nil
	}
	r, err := NewRedis(t.cfg.Redis)
	if err != nil {
		t.log.WithError(err).Warn("redis unavailable, falling back to file")
		return nil
	}
	t.log.Info("redis connected")
	t.state = stateReady
	t.redis = r
	return r
}

// Load returns the last persisted snapshot, or an empty one when there
// is no previous data or the backend misbehaves.
func (t *Tiered) Load(ctx context.Context) *snapshot.Snapshot {
	if r := t.primary(); r != nil {
		snap, err := r.Load(ctx)
		if err != nil {
			t.log.WithError(err).Warn("redis read failed")
			return snapshot.New()
		}
		return snap
	}

	snap, err := t.file.Load(ctx)
	if err != nil {
		t.log.WithError(err).Warnf("file read failed: %s", t.cfg.File)
		return snapshot.New()
	}
	return snap
}

// Save persists the snapshot. When the Redis write succeeds the file is
// written only if its path was explicitly configured; otherwise the file
// tier takes over.
func (t *Tiered) Save(ctx context.Context, snap *snapshot.Snapshot) {
	redisOK := false
	if r := t.primary(); r != nil {
		if err := r.Save(ctx, snap); err != nil {
			t.log.WithError(err).Warn("redis write failed")
		} else {
			redisOK = true
		}
	}

	if redisOK && t.cfg.FileMode != config.FilePathExplicit {
		return
	}
	if err := t.file.Save(ctx, snap); err != nil {
		t.log.WithError(err).Warnf("file write failed: %s", t.cfg.File)
		return
	}
	t.log.Debugf("snapshot saved to %s", t.cfg.File)
}

// Close releases the Redis handle if one was established.
func (t *Tiered) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.redis != nil {
		_ = t.redis.Close()
		t.redis = nil
		t.state = stateUnavailable
	}
}
