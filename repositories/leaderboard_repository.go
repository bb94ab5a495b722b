package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type ScoredParticipant struct {
	ParticipantKey string
	Score          float64
}

// LeaderboardRepository mirrors tournament scores into Redis sorted sets.
type LeaderboardRepository interface {
	SetScore(ctx context.Context, tournamentKey, participantKey string, score float64) error
	Top(ctx context.Context, tournamentKey string, limit int) ([]ScoredParticipant, error)
	Remove(ctx context.Context, tournamentKey string) error
	Close() error
}

type redisLeaderboardRepository struct {
	rdb *redis.Client
}

func NewRedisLeaderboardRepository(redisURL string) (LeaderboardRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &redisLeaderboardRepository{rdb: redis.NewClient(opts)}, nil
}

func leaderboardKey(tournamentKey string) string {
	return "chess:leaderboard:" + strings.TrimSpace(tournamentKey)
}

// SetScore records an absolute score. Scores never decrease, so a stale write
// arriving late is ignored (ZADD GT); new members are always added.
func (r *redisLeaderboardRepository) SetScore(ctx context.Context, tournamentKey, participantKey string, score float64) error {
	return r.rdb.ZAddGT(ctx, leaderboardKey(tournamentKey), redis.Z{Score: score, Member: participantKey}).Err()
}

// Top returns up to limit entries by descending score; limit <= 0 returns all.
func (r *redisLeaderboardRepository) Top(ctx context.Context, tournamentKey string, limit int) ([]ScoredParticipant, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	zs, err := r.rdb.ZRevRangeWithScores(ctx, leaderboardKey(tournamentKey), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	out := make([]ScoredParticipant, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		out = append(out, ScoredParticipant{ParticipantKey: member, Score: z.Score})
	}
	return out, nil
}

func (r *redisLeaderboardRepository) Remove(ctx context.Context, tournamentKey string) error {
	return r.rdb.Del(ctx, leaderboardKey(tournamentKey)).Err()
}

func (r *redisLeaderboardRepository) Close() error {
	return r.rdb.Close()
}
