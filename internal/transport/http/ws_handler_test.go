package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"live-quiz-engine/internal/domain"
	"live-quiz-engine/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": sampleQuiz(),
	}), time.Minute)
	// A long manual-feel tick keeps the countdown still during the test.
	store := memory.NewEngineStore(time.Hour)
	handler := NewWSHandler(quizRepo, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketAnswerFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "quizId=quiz-1&userId=u1&name=Alice")

	msgType, payload := readNext(conn, t, "joined")
	if msgType != "joined" {
		t.Fatalf("expected joined, got %s", msgType)
	}
	if payload["session"] == nil {
		t.Fatalf("expected session in joined snapshot")
	}
	if payload["secondsRemaining"].(float64) != 10 {
		t.Fatalf("expected full countdown, got %v", payload["secondsRemaining"])
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"index": 1},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	_, snap := readNext(conn, t, "snapshot")
	if snap["resolved"] != true || snap["correct"] != true {
		t.Fatalf("expected resolved correct snapshot, got %+v", snap)
	}
	if snap["score"].(float64) <= 10 {
		t.Fatalf("expected score above base, got %v", snap["score"])
	}
}

func TestWebSocketReactionFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server, "quizId=quiz-1&userId=u1&name=Alice")
	readNext(conn, t, "joined")

	if err := conn.WriteJSON(map[string]any{
		"type":    "reaction",
		"payload": map[string]any{"kind": "fire"},
	}); err != nil {
		t.Fatalf("write reaction: %v", err)
	}

	_, snap := readNext(conn, t, "snapshot")
	session := snap["session"].(map[string]any)
	reactions := session["reactions"].([]any)
	if len(reactions) != 1 {
		t.Fatalf("expected one reaction, got %d", len(reactions))
	}

	// Unknown kinds come back as an error without touching the session.
	if err := conn.WriteJSON(map[string]any{
		"type":    "reaction",
		"payload": map[string]any{"kind": "shrug"},
	}); err != nil {
		t.Fatalf("write bad reaction: %v", err)
	}
	readNext(conn, t, "error")
}

func TestWebSocketRejectsMissingParams(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/ws?quizId=quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestWebSocketUnknownQuiz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/ws?quizId=missing&userId=u1&name=Alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:     "quiz-1",
		Title:  "Evening Trivia",
		Status: domain.QuizStatusLive,
		Questions: []domain.Question{
			{
				ID:           "q1",
				Prompt:       "What is 2 + 2?",
				Options:      []string{"3", "4", "5", "6"},
				CorrectIndex: 1,
				Points:       10,
				TimeLimitSec: 10,
			},
		},
	}
}
