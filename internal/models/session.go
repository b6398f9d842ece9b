package models

import "time"

// Turn is one (query, response) exchange.
type Turn struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is a caller-scoped conversation.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Append adds a turn and drops the oldest ones beyond maxTurns (0 keeps all).
func (s *Session) Append(turn Turn, maxTurns int) {
	s.Turns = append(s.Turns, turn)
	if maxTurns > 0 && len(s.Turns) > maxTurns {
		s.Turns = append([]Turn(nil), s.Turns[len(s.Turns)-maxTurns:]...)
	}
	s.UpdatedAt = turn.CreatedAt
}

// LastTurns returns a copy of the n most recent turns; n <= 0 returns all.
func (s *Session) LastTurns(n int) []Turn {
	if n <= 0 || n > len(s.Turns) {
		n = len(s.Turns)
	}
	out := make([]Turn, n)
	copy(out, s.Turns[len(s.Turns)-n:])
	return out
}
