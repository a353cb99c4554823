package domain

import "time"

// QuizStatus tags where a quiz sits in its lifecycle.
type QuizStatus string

const (
	QuizStatusUpcoming QuizStatus = "upcoming"
	QuizStatusLive     QuizStatus = "live"
	QuizStatusFinished QuizStatus = "finished"
)

// Question is an immutable MCQ entry with its countdown and point value.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int      `json:"points"` // defaults to 1 if zero
	TimeLimitSec int      `json:"timeLimitSec"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Quiz is an ordered question sequence plus presentation metadata.
// The engine treats it as read-only content from the question bank.
type Quiz struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	RewardXP   int        `json:"rewardXp"`
	Status     QuizStatus `json:"status"`
}

// Participant tracks one session member and their accumulated totals.
// Score, XP, Combo and MaxCombo are mutated only by the engine.
type Participant struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"displayName"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	Score         int       `json:"score"`
	XP            int       `json:"xp"`
	Combo         int       `json:"combo"`
	MaxCombo      int       `json:"maxCombo"`
	QuestionIndex int       `json:"questionIndex"`
	Active        bool      `json:"active"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// ReactionKind is the closed set of audience sentiment events.
type ReactionKind string

const (
	ReactionFire    ReactionKind = "fire"
	ReactionClap    ReactionKind = "clap"
	ReactionHeart   ReactionKind = "heart"
	ReactionLaugh   ReactionKind = "laugh"
	ReactionWow     ReactionKind = "wow"
	ReactionCorrect ReactionKind = "correct"
)

// Valid reports whether the kind belongs to the closed reaction set.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionFire, ReactionClap, ReactionHeart, ReactionLaugh, ReactionWow, ReactionCorrect:
		return true
	}
	return false
}

// Reaction is an append-only audience event; it never affects scoring.
type Reaction struct {
	ID            string       `json:"id"`
	ParticipantID string       `json:"participantId"`
	DisplayName   string       `json:"displayName"`
	AvatarURL     string       `json:"avatarUrl,omitempty"`
	Kind          ReactionKind `json:"kind"`
	QuestionID    string       `json:"questionId,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Score         int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a session: score
// descending, earlier join time winning ties.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Session is one complete run of a quiz from join to conclusion.
// CurrentQuestionIndex equals len(Quiz.Questions) exactly when concluded.
type Session struct {
	Quiz                 Quiz           `json:"quiz"`
	Participants         []*Participant `json:"participants"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	StartedAt            time.Time      `json:"startedAt"`
	EndedAt              *time.Time     `json:"endedAt,omitempty"`
	Reactions            []Reaction     `json:"reactions"`
	Leaderboard          Leaderboard    `json:"leaderboard"`
}

// Concluded reports whether the session has played through every question.
func (s *Session) Concluded() bool {
	return s.EndedAt != nil
}

// Snapshot is the full engine state handed to observers after every
// mutation. Session and Question are nil when the engine is idle.
type Snapshot struct {
	Session          *Session    `json:"session"`
	Question         *Question   `json:"question"`
	SecondsRemaining int         `json:"secondsRemaining"`
	SelectedAnswer   int         `json:"selectedAnswer"`
	Resolved         bool        `json:"resolved"`
	Correct          bool        `json:"correct"`
	Score            int         `json:"score"`
	XP               int         `json:"xp"`
	Combo            int         `json:"combo"`
	MaxCombo         int         `json:"maxCombo"`
	Leaderboard      Leaderboard `json:"leaderboard"`
}
