// Package cache persists the last price snapshot across runs through an
// ordered storage tier: Redis when configured and reachable, a local
// file otherwise. Reads never fail the caller and writes are
// best-effort; losing the cache only costs the next report its deltas.
package cache

import (
	"context"

	"goldpricebot/internal/snapshot"
)

// Backend is one storage tier. Both tiers speak the same serialized
// snapshot payload, so a snapshot written by one can be read by the
// other.
type Backend interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
	Save(ctx context.Context, snap *snapshot.Snapshot) error
}
