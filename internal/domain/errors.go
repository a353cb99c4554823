package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions is returned when a quiz definition carries no questions.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrInvalidQuiz indicates a loaded definition violates its own invariants.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
	// ErrInvalidReaction is returned for a kind outside the closed reaction set.
	ErrInvalidReaction = errors.New("unknown reaction kind")
	// ErrEngineNotFound is returned when a quiz has no live engine.
	ErrEngineNotFound = errors.New("no engine for quiz")
)
