// Package session owns per-(user, document) conversation state: the
// retriever bound to that pair and the ordered history of chat turns.
// No other package constructs or holds Sessions directly; they are
// obtained through the Manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/vectorstore"
)

// Turn is one completed question/answer exchange.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Retriever turns a question into ranked context chunks for exactly one
// (user, document) pair.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]vectorstore.SearchResult, error)
}

// Generator produces an answer from a question, retrieved context, and
// prior turns.
type Generator interface {
	Generate(ctx context.Context, question string, contextChunks []vectorstore.SearchResult, history []Turn) (string, error)
}

type Session struct {
	mu        sync.Mutex
	retriever Retriever
	generator Generator
	turns     []Turn
}

// Ask runs one full chat turn: retrieve context, generate an answer, then
// append the turn. The turn is appended only after a complete answer is
// obtained, so a failed or cancelled call leaves the history unmodified.
// Turns on the same session are serialised.
func (s *Session) Ask(ctx context.Context, question string) (string, []Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := copyTurns(s.turns)

	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", nil, err
	}

	answer, err := s.generator.Generate(ctx, question, results, history)
	if err != nil {
		return "", nil, err
	}

	s.turns = append(s.turns, Turn{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now().UTC(),
	})

	return answer, copyTurns(s.turns), nil
}

// History returns a copy of the turns so far.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTurns(s.turns)
}

func copyTurns(turns []Turn) []Turn {
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
