package memory

import (
	"sync"
	"time"

	"live-quiz-engine/internal/engine"
)

// EngineHook runs once when a store creates an engine, before any caller
// can join it. Used to attach infrastructure observers such as the Redis
// leaderboard mirror.
type EngineHook func(quizID string, e *engine.Engine)

// EngineStore keeps one session engine per quiz ID. Each engine owns a
// single active session; the store is how concurrent quizzes coexist in
// one process.
type EngineStore struct {
	tick  time.Duration
	opts  []engine.Option
	hooks []EngineHook

	mu      sync.RWMutex
	engines map[string]*engine.Engine
}

// NewEngineStore builds a store whose engines tick at the given cadence.
// Extra engine options (seed rosters, clocks) apply to every engine.
func NewEngineStore(tick time.Duration, opts ...engine.Option) *EngineStore {
	return &EngineStore{
		tick:    tick,
		opts:    opts,
		engines: make(map[string]*engine.Engine),
	}
}

// OnCreate registers a hook invoked for every newly created engine.
func (s *EngineStore) OnCreate(hook EngineHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *EngineStore) GetOrCreate(quizID string) *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if eng, ok := s.engines[quizID]; ok {
		return eng
	}
	eng := engine.New(engine.NewIntervalTicker(s.tick), s.opts...)
	for _, hook := range s.hooks {
		hook(quizID, eng)
	}
	s.engines[quizID] = eng
	return eng
}

func (s *EngineStore) Get(quizID string) (*engine.Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eng, ok := s.engines[quizID]
	return eng, ok
}

// DeleteIfIdle drops the engine once its session has been reset. An
// engine with a live session stays put so late viewers can attach.
func (s *EngineStore) DeleteIfIdle(quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, ok := s.engines[quizID]
	if !ok {
		return
	}
	if eng.Idle() {
		delete(s.engines, quizID)
	}
}
