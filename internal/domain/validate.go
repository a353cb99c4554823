package domain

import "fmt"

// Validate checks the structural invariants of a loaded quiz definition:
// at least one question, 2+ options each, correct index in bounds, and a
// positive time limit. The engine assumes these hold and never re-checks.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}
	for i, question := range q.Questions {
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: question %d (%s) has %d options", ErrInvalidQuiz, i, question.ID, len(question.Options))
		}
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return fmt.Errorf("%w: question %d (%s) correct index %d out of range", ErrInvalidQuiz, i, question.ID, question.CorrectIndex)
		}
		if question.TimeLimitSec <= 0 {
			return fmt.Errorf("%w: question %d (%s) time limit must be positive", ErrInvalidQuiz, i, question.ID)
		}
	}
	return nil
}
