package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"live-quiz-engine/internal/engine"
)

func TestLeaderboardMirrorTracksEngine(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	eng := engine.New(noopTicker{})
	eng.Subscribe("redis-mirror", NewLeaderboardMirror(client, "quiz-1", time.Minute))

	if _, err := eng.Join(sampleQuiz(), "u1", "Alice", ""); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !mr.Exists("quiz:session:quiz-1") {
		t.Fatalf("expected liveness key after join")
	}

	eng.Answer(1)

	score, err := client.ZScore(context.Background(), "quiz:quiz-1:leaderboard", "u1").Result()
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	if score <= 10 {
		t.Fatalf("expected mirrored score above base, got %v", score)
	}

	eng.Reset()
	if mr.Exists("quiz:quiz-1:leaderboard") || mr.Exists("quiz:session:quiz-1") {
		t.Fatalf("expected keys cleared after reset")
	}
}

type noopTicker struct{}

func (noopTicker) Start(func()) {}
func (noopTicker) Stop()        {}
