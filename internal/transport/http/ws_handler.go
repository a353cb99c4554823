package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"live-quiz-engine/internal/domain"
	"live-quiz-engine/internal/engine"
)

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// EngineStore hands out one session engine per quiz.
type EngineStore interface {
	GetOrCreate(quizID string) *engine.Engine
	DeleteIfIdle(quizID string)
}

type WSHandler struct {
	quizzes  QuizRepository
	engines  EngineStore
	upgrader websocket.Upgrader
}

func NewWSHandler(quizzes QuizRepository, engines EngineStore) *WSHandler {
	return &WSHandler{
		quizzes: quizzes,
		engines: engines,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Index int `json:"index"`
}

type reactionPayload struct {
	Kind string `json:"kind"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into a session
// engine: the first client to arrive starts the session, later clients
// attach as viewers of the same engine. Every engine mutation is pushed
// to the client as a full snapshot.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	avatarURL := r.URL.Query().Get("avatar")
	if quizID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing quizId, userId, or name", http.StatusBadRequest)
		return
	}

	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	eng := h.engines.GetOrCreate(quizID)
	if _, err := eng.Join(quiz, userID, displayName, avatarURL); err != nil {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.engines.DeleteIfIdle(quizID)

	// send is never closed: the observer may still be delivering a final
	// snapshot while the connection tears down, so the writer exits via
	// quit instead.
	send := make(chan outboundMessage, 16)
	quit := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-quit:
				return
			}
		}
	}()

	unsubscribe := eng.Subscribe("ws:"+userID, engine.ObserverFunc(func(snap domain.Snapshot) {
		pushSnapshot(send, snap)
	}))
	defer unsubscribe()

	send <- outboundMessage{Type: "joined", Payload: eng.Snapshot()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			eng.Answer(payload.Index)
		case "reaction":
			var payload reactionPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid reaction payload"}}
				continue
			}
			if err := eng.React(userID, displayName, avatarURL, domain.ReactionKind(payload.Kind)); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "next":
			eng.Next()
		case "reset":
			eng.Reset()
		default:
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	unsubscribe()
	close(quit)
	<-writerDone
}

// pushSnapshot forwards a snapshot without ever blocking the engine: a
// slow client loses intermediate frames, not the session.
func pushSnapshot(send chan outboundMessage, snap domain.Snapshot) {
	msg := outboundMessage{Type: "snapshot", Payload: snap}
	select {
	case send <- msg:
	default:
		select {
		case <-send:
		default:
		}
		select {
		case send <- msg:
		default:
		}
	}
}
