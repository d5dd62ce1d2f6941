package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat/docuchat/internal/llm"
	"github.com/docuchat/docuchat/internal/session"
	"github.com/docuchat/docuchat/internal/vectorstore"
)

const systemPrompt = `You are a helpful assistant answering questions about a document the user uploaded.
Answer using only the provided context. If the context does not contain the answer, say so.
Cite sources as [Source N] where N corresponds to a context chunk number.`

// Generator produces answers through the LLM gateway. It is stateless:
// the question, retrieved context, and prior turns fully determine the
// request.
type Generator struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewGenerator(gw llm.Gateway, provider, model string) *Generator {
	return &Generator{gateway: gw, provider: provider, model: model}
}

func (g *Generator) Generate(ctx context.Context, question string, contextChunks []vectorstore.SearchResult, history []session.Turn) (string, error) {
	messages := make([]llm.Message, 0, 2*len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})

	for _, turn := range history {
		messages = append(messages,
			llm.Message{Role: "user", Content: turn.Question},
			llm.Message{Role: "assistant", Content: turn.Answer},
		)
	}

	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", buildContext(contextChunks), question),
	})

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Provider: g.provider,
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: provider returned an empty answer", ErrGeneration)
	}

	return resp.Content, nil
}

func buildContext(results []vectorstore.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "[Source %d] (score: %.3f)\n%s\n\n", i+1, r.Score, r.Content)
	}
	return sb.String()
}
