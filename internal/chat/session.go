// README: Conversation session state machine seeded with the itinerary text.
package chat

import (
	"errors"
	"time"

	"wayfarer/internal/itinerary"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type State string

const (
	StateIdle     State = "idle"
	StateAwaiting State = "awaiting"
)

var (
	ErrAwaiting        = errors.New("a question is already awaiting an answer")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyQuestion   = errors.New("question is empty")
)

type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds an append-only transcript. InitialContext is set at creation
// and never changes.
type Session struct {
	ID             string    `json:"id"`
	InitialContext string    `json:"initial_context"`
	Turns          []Turn    `json:"turns"`
	State          State     `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewSession(id, initialContext string, now time.Time) *Session {
	return &Session{
		ID:             id,
		InitialContext: initialContext,
		Turns:          []Turn{},
		State:          StateIdle,
		CreatedAt:      now,
	}
}

// Submit moves Idle -> Awaiting and appends the user turn.
func (s *Session) Submit(question string, now time.Time) error {
	if s.State == StateAwaiting {
		return ErrAwaiting
	}
	s.Turns = append(s.Turns, Turn{Role: RoleUser, Content: question, CreatedAt: now})
	s.State = StateAwaiting
	return nil
}

// Resolve moves Awaiting -> Idle and appends the assistant turn.
func (s *Session) Resolve(answer string, now time.Time) {
	if s.State != StateAwaiting {
		return
	}
	s.Turns = append(s.Turns, Turn{Role: RoleAssistant, Content: answer, CreatedAt: now})
	s.State = StateIdle
}

// Fail moves Awaiting -> Idle, leaving the unanswered user turn in place.
func (s *Session) Fail() {
	s.State = StateIdle
}

// AnsweredPairs returns up to limit of the most recent user turns that were
// followed by an assistant turn, oldest first.
func (s *Session) AnsweredPairs(limit int) []itinerary.Turn {
	if limit <= 0 {
		return nil
	}
	var pairs []itinerary.Turn
	for i := 0; i+1 < len(s.Turns); i++ {
		if s.Turns[i].Role == RoleUser && s.Turns[i+1].Role == RoleAssistant {
			pairs = append(pairs, itinerary.Turn{Question: s.Turns[i].Content, Answer: s.Turns[i+1].Content})
			i++
		}
	}
	if len(pairs) > limit {
		pairs = pairs[len(pairs)-limit:]
	}
	return pairs
}
