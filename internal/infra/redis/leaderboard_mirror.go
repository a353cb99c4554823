package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-engine/internal/domain"
)

// LeaderboardMirror is an engine observer that mirrors every snapshot's
// leaderboard into a Redis sorted set (quiz:{id}:leaderboard) and keeps
// a session liveness key alongside it. Mirroring is best effort: a Redis
// hiccup must never stall a live countdown, so errors are logged and
// dropped.
type LeaderboardMirror struct {
	client *redis.Client
	quizID string
	ttl    time.Duration
}

func NewLeaderboardMirror(client *redis.Client, quizID string, ttl time.Duration) *LeaderboardMirror {
	return &LeaderboardMirror{client: client, quizID: quizID, ttl: ttl}
}

func (m *LeaderboardMirror) OnStateChange(snap domain.Snapshot) {
	ctx := context.Background()
	if snap.Session == nil {
		if err := m.client.Del(ctx, m.boardKey(), m.liveKey()).Err(); err != nil {
			log.Printf("leaderboard mirror: clear %s: %v", m.quizID, err)
		}
		return
	}

	members := make([]redis.Z, 0, len(snap.Leaderboard.Entries))
	for _, entry := range snap.Leaderboard.Entries {
		members = append(members, redis.Z{
			Score:  float64(entry.Score),
			Member: entry.ParticipantID,
		})
	}

	pipe := m.client.Pipeline()
	pipe.Del(ctx, m.boardKey())
	if len(members) > 0 {
		pipe.ZAdd(ctx, m.boardKey(), members...)
	}
	pipe.Set(ctx, m.liveKey(), "1", m.ttl)
	if m.ttl > 0 {
		pipe.Expire(ctx, m.boardKey(), m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("leaderboard mirror: update %s: %v", m.quizID, err)
	}
}

func (m *LeaderboardMirror) boardKey() string {
	return "quiz:" + m.quizID + ":leaderboard"
}

func (m *LeaderboardMirror) liveKey() string {
	return "quiz:session:" + m.quizID
}
