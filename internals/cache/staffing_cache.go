// internals/cache/staffing_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StaffingSummary is the cached per-(shift, date) staffing snapshot read by
// the calendar and the per-schedule shift list. Assign/unassign invalidate it.
type StaffingSummary struct {
	ShiftID       uuid.UUID   `json:"shift_id"`
	Date          string      `json:"date"` // 2006-01-02
	AssignedCount int         `json:"assigned_count"`
	StaffIDs      []uuid.UUID `json:"staff_ids"`
}

// StaffingCache is deliberately tolerant: a miss is (nil, nil), and callers
// treat every error as a miss so stale or unreachable Redis never blocks a
// read or a write path.
type StaffingCache interface {
	GetSummary(ctx context.Context, shiftID uuid.UUID, date string) (*StaffingSummary, error)
	SetSummary(ctx context.Context, s *StaffingSummary) error
	Invalidate(ctx context.Context, shiftID uuid.UUID, date string) error
}

const (
	staffingKeyPrefix = "staffing:"
	summaryTTL        = 5 * time.Minute
)

func summaryKey(shiftID uuid.UUID, date string) string {
	return fmt.Sprintf("%s%s:%s", staffingKeyPrefix, shiftID, date)
}

/* =========================
   Redis implementation
   ========================= */

type redisStaffingCache struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewRedisStaffingCache pings the server; a failed ping returns an error so
// the caller can fall back to the no-op cache.
func NewRedisStaffingCache(addr, password string, logger *zap.Logger) (StaffingCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis staffing cache connected", zap.String("addr", addr))
	return &redisStaffingCache{rdb: rdb, logger: logger}, nil
}

func (c *redisStaffingCache) GetSummary(ctx context.Context, shiftID uuid.UUID, date string) (*StaffingSummary, error) {
	raw, err := c.rdb.Get(ctx, summaryKey(shiftID, date)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s StaffingSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		// poisoned entry: drop it and report a miss
		_ = c.rdb.Del(ctx, summaryKey(shiftID, date)).Err()
		return nil, nil
	}
	return &s, nil
}

func (c *redisStaffingCache) SetSummary(ctx context.Context, s *StaffingSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, summaryKey(s.ShiftID, s.Date), raw, summaryTTL).Err()
}

func (c *redisStaffingCache) Invalidate(ctx context.Context, shiftID uuid.UUID, date string) error {
	return c.rdb.Del(ctx, summaryKey(shiftID, date)).Err()
}

/* =========================
   No-op implementation (REDIS_ADDR unset or unreachable)
   ========================= */

type noopStaffingCache struct{}

func NewNoopStaffingCache() StaffingCache { return noopStaffingCache{} }

func (noopStaffingCache) GetSummary(context.Context, uuid.UUID, string) (*StaffingSummary, error) {
	return nil, nil
}
func (noopStaffingCache) SetSummary(context.Context, *StaffingSummary) error  { return nil }
func (noopStaffingCache) Invalidate(context.Context, uuid.UUID, string) error { return nil }
