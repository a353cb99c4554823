package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"live-quiz-engine/internal/domain"
)

// Engine drives one live quiz session at a time: per-question countdown,
// scoring with speed and combo bonuses, an append-only reaction log, and
// a ranked leaderboard. Every public method runs to completion under a
// single mutex, so ticks and explicit actions are strictly serialized.
//
// Invariant violations (answering with no session, advancing before the
// question resolved, ticks after conclusion) are silent no-ops: they are
// benign double-invocations from an imperfectly debounced UI, not faults.
type Engine struct {
	ticker Ticker
	now    func() time.Time
	newID  func() string
	seed   []domain.Participant

	observers *registry

	mu      sync.Mutex
	session *domain.Session
	local   *domain.Participant

	// transient per-question state, reset on every question load
	secondsRemaining int
	selectedAnswer   int
	resolved         bool
	correct          bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides reaction ID generation for deterministic tests.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithSeedRoster pre-populates every new session with the given
// participants before the joining participant is inserted. Seeds with a
// zero JoinedAt are stamped at session start.
func WithSeedRoster(seed []domain.Participant) Option {
	return func(e *Engine) { e.seed = seed }
}

// New constructs an engine around the given ticker. The engine owns the
// ticker: it starts it when a question loads and stops it on resolution,
// conclusion, and reset.
func New(ticker Ticker, opts ...Option) *Engine {
	e := &Engine{
		ticker:         ticker,
		now:            time.Now,
		newID:          uuid.NewString,
		observers:      newRegistry(),
		selectedAnswer: NoAnswer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers an observer under a caller-chosen key. Observers
// are notified synchronously, in registration order, after every
// mutation; re-subscribing under an existing key replaces the observer.
// The returned function unsubscribes and is safe to call more than once.
func (e *Engine) Subscribe(key string, obs Observer) func() {
	return e.observers.subscribe(key, obs)
}

// Join starts a session for the given quiz with the joining participant
// inserted into the seeded roster, loads question zero, starts the
// ticker, and notifies observers. While a session is already active Join
// is a no-op returning the current session.
func (e *Engine) Join(quiz domain.Quiz, participantID, displayName, avatarURL string) (*domain.Session, error) {
	e.mu.Lock()
	if e.session != nil {
		session := e.session
		e.mu.Unlock()
		return session, nil
	}
	if len(quiz.Questions) == 0 {
		e.mu.Unlock()
		return nil, domain.ErrNoQuestions
	}

	now := e.now()
	participants := make([]*domain.Participant, 0, len(e.seed)+1)
	for _, s := range e.seed {
		seed := s
		if seed.JoinedAt.IsZero() {
			seed.JoinedAt = now
		}
		seed.Active = true
		participants = append(participants, &seed)
	}
	local := &domain.Participant{
		ID:          participantID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		Active:      true,
		JoinedAt:    now,
	}
	participants = append(participants, local)

	e.session = &domain.Session{
		Quiz:         quiz,
		Participants: participants,
		StartedAt:    now,
		Reactions:    []domain.Reaction{},
	}
	e.local = local
	e.loadQuestionLocked(0)
	e.updateLeaderboardLocked()
	e.ticker.Start(e.Tick)

	session := e.session
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
	return session, nil
}

// Answer resolves the active question with the given option index. The
// first call wins: a second call while the question is already resolved
// is a no-op. Any index that does not match the correct option
// (including NoAnswer and out-of-range values) scores as incorrect.
func (e *Engine) Answer(index int) {
	e.mu.Lock()
	if !e.questionOpenLocked() {
		e.mu.Unlock()
		return
	}
	e.resolveLocked(index)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
}

// Tick advances the countdown by one second. When the countdown hits
// zero on an unresolved question it auto-answers with NoAnswer, so every
// question resolves exactly once even without participant action.
// Observers are notified on every tick for live countdown rendering.
// Ticks against an idle engine, a concluded session, or a question that
// already resolved are inert.
func (e *Engine) Tick() {
	e.mu.Lock()
	if !e.questionOpenLocked() {
		e.mu.Unlock()
		return
	}
	e.secondsRemaining--
	if e.secondsRemaining <= 0 {
		e.secondsRemaining = 0
		e.resolveLocked(NoAnswer)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
}

// Next advances to the following question, or concludes the session when
// the last question has been played. A call before the current question
// resolved is a no-op.
func (e *Engine) Next() {
	e.mu.Lock()
	if e.session == nil || e.session.Concluded() || !e.resolved {
		e.mu.Unlock()
		return
	}

	next := e.session.CurrentQuestionIndex + 1
	e.session.CurrentQuestionIndex = next
	if next < len(e.session.Quiz.Questions) {
		e.loadQuestionLocked(next)
		e.ticker.Start(e.Tick)
	} else {
		now := e.now()
		e.session.EndedAt = &now
		e.ticker.Stop()
		e.updateLeaderboardLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
}

// React appends an audience reaction. Reactions are accepted even on a
// resolved or concluded question; they carry the active question's ID
// while one is live and never affect scoring. With no session at all the
// call is a no-op.
func (e *Engine) React(participantID, displayName, avatarURL string, kind domain.ReactionKind) error {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil
	}
	if !kind.Valid() {
		e.mu.Unlock()
		return domain.ErrInvalidReaction
	}

	reaction := domain.Reaction{
		ID:            e.newID(),
		ParticipantID: participantID,
		DisplayName:   displayName,
		AvatarURL:     avatarURL,
		Kind:          kind,
		CreatedAt:     e.now(),
	}
	if idx := e.session.CurrentQuestionIndex; idx < len(e.session.Quiz.Questions) {
		reaction.QuestionID = e.session.Quiz.Questions[idx].ID
	}
	e.session.Reactions = append(e.session.Reactions, reaction)
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
	return nil
}

// Reset stops the ticker, discards the session and all transient state,
// and notifies observers with an idle snapshot. This is the only way to
// clear the single-session invariant so a new Join may succeed.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.ticker.Stop()
	e.session = nil
	e.local = nil
	e.secondsRemaining = 0
	e.selectedAnswer = NoAnswer
	e.resolved = false
	e.correct = false
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.observers.notify(snap)
}

// Idle reports whether the engine currently has no session.
func (e *Engine) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session == nil
}

// Snapshot returns the current engine state without mutating anything.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// questionOpenLocked reports whether a question is live and unresolved.
func (e *Engine) questionOpenLocked() bool {
	return e.session != nil && !e.session.Concluded() && !e.resolved
}

// resolveLocked scores the answer and stops the ticker. Callers have
// already checked questionOpenLocked.
func (e *Engine) resolveLocked(index int) {
	e.ticker.Stop()
	e.resolved = true
	e.selectedAnswer = index

	question := e.session.Quiz.Questions[e.session.CurrentQuestionIndex]
	e.correct = index == question.CorrectIndex
	if e.correct {
		e.local.Combo++
		if e.local.Combo > e.local.MaxCombo {
			e.local.MaxCombo = e.local.Combo
		}
		score, xp := Score(true, e.secondsRemaining, question.TimeLimitSec, e.local.Combo, question.Points)
		e.local.Score += score
		e.local.XP += xp
	} else {
		e.local.Combo = 0
	}
	e.updateLeaderboardLocked()
}

func (e *Engine) loadQuestionLocked(index int) {
	question := e.session.Quiz.Questions[index]
	e.secondsRemaining = question.TimeLimitSec
	e.selectedAnswer = NoAnswer
	e.resolved = false
	e.correct = false
	e.local.QuestionIndex = index
}

// updateLeaderboardLocked re-sorts the full roster: score descending,
// earlier join time winning ties, display name as the final tie-break.
func (e *Engine) updateLeaderboardLocked() {
	entries := make([]domain.LeaderboardEntry, 0, len(e.session.Participants))
	byID := make(map[string]*domain.Participant, len(e.session.Participants))
	for _, p := range e.session.Participants {
		byID[p.ID] = p
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			AvatarURL:     p.AvatarURL,
			Score:         p.Score,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		pi, pj := byID[entries[i].ParticipantID], byID[entries[j].ParticipantID]
		if !pi.JoinedAt.Equal(pj.JoinedAt) {
			return pi.JoinedAt.Before(pj.JoinedAt)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	e.session.Leaderboard = domain.Leaderboard{
		QuizID:    e.session.Quiz.ID,
		Entries:   entries,
		UpdatedAt: e.now(),
	}
}

// snapshotLocked copies the session so observers can hold the payload
// without racing later mutations.
func (e *Engine) snapshotLocked() domain.Snapshot {
	if e.session == nil {
		return domain.Snapshot{SelectedAnswer: NoAnswer}
	}

	session := *e.session
	session.Participants = make([]*domain.Participant, len(e.session.Participants))
	for i, p := range e.session.Participants {
		copied := *p
		session.Participants[i] = &copied
	}
	session.Reactions = append([]domain.Reaction(nil), e.session.Reactions...)

	snap := domain.Snapshot{
		Session:          &session,
		SecondsRemaining: e.secondsRemaining,
		SelectedAnswer:   e.selectedAnswer,
		Resolved:         e.resolved,
		Correct:          e.correct,
		Score:            e.local.Score,
		XP:               e.local.XP,
		Combo:            e.local.Combo,
		MaxCombo:         e.local.MaxCombo,
		Leaderboard:      session.Leaderboard,
	}
	if idx := e.session.CurrentQuestionIndex; idx < len(e.session.Quiz.Questions) {
		question := e.session.Quiz.Questions[idx]
		snap.Question = &question
	}
	return snap
}
