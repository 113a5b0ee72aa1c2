package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ReviewQueue holds website keys of records that need manual review,
// ordered by confidence so the least certain come out first.
type ReviewQueue struct {
	rdb *redis.Client
}

// NewReviewQueue creates a review queue on client.
func NewReviewQueue(client *Client) *ReviewQueue {
	return &ReviewQueue{rdb: client.rdb}
}

// Push adds or re-scores websiteKey.
func (q *ReviewQueue) Push(ctx context.Context, websiteKey string, confidence float64) error {
	if err := q.rdb.ZAdd(ctx, reviewQueueKey, redis.Z{
		Score:  confidence,
		Member: websiteKey,
	}).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

// Pop removes and returns the lowest-confidence entry.
func (q *ReviewQueue) Pop(ctx context.Context) (websiteKey string, confidence float64, found bool, err error) {
	results, err := q.rdb.ZPopMin(ctx, reviewQueueKey, 1).Result()
	if err != nil {
		return "", 0, false, fmt.Errorf("zpopmin failed: %w", err)
	}
	if len(results) == 0 {
		return "", 0, false, nil
	}

	member, ok := results[0].Member.(string)
	if !ok {
		return "", 0, false, fmt.Errorf("unexpected review queue member %v", results[0].Member)
	}
	return member, results[0].Score, true, nil
}

// Remove drops websiteKey, e.g. after a successful reclassification.
func (q *ReviewQueue) Remove(ctx context.Context, websiteKey string) error {
	if err := q.rdb.ZRem(ctx, reviewQueueKey, websiteKey).Err(); err != nil {
		return fmt.Errorf("zrem failed: %w", err)
	}
	return nil
}

// Len returns the number of queued records.
func (q *ReviewQueue) Len(ctx context.Context) (int, error) {
	count, err := q.rdb.ZCard(ctx, reviewQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}

// ReviewEntry is one queued record.
type ReviewEntry struct {
	WebsiteKey string
	Confidence float64
}

// Entries returns up to limit queued records in review order.
// A limit <= 0 returns all of them.
func (q *ReviewQueue) Entries(ctx context.Context, limit int) ([]ReviewEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	results, err := q.rdb.ZRangeWithScores(ctx, reviewQueueKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	out := make([]ReviewEntry, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, ReviewEntry{WebsiteKey: member, Confidence: z.Score})
	}
	return out, nil
}
