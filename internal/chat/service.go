// Package chat runs a RAG chat turn: retrieve manual context, assemble
// the prompt and call the chat completion API.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/retrieval"
)

// DefaultModel answers chat turns unless configured otherwise.
const DefaultModel = openai.ChatModelGPT4oMini

// maxHistoryTurns caps how many prior turns are replayed into the prompt.
const maxHistoryTurns = 10

const systemPromptTemplate = `You are an expert equipment technician assistant.
You have access to PDF equipment manuals indexed by unit number.

When answering:
- Always cite the unit number and page number you are drawing information from.
- If the question mentions a specific unit, prioritise that unit's manual.
- If parts or cross-reference information is needed (e.g. hoses, filters, fittings),
  look across ALL manuals and note which unit each part belongs to.
- Be concise but complete.  If you don't know, say so.

Context from manuals:
%s
`

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Retriever assembles the context set for a message. Implemented by
// retrieval.Merger.
type Retriever interface {
	Retrieve(ctx context.Context, message string) ([]index.ChunkRecord, bool, error)
}

// Service answers chat messages grounded in retrieved manual chunks.
type Service struct {
	retriever Retriever
	client    *openai.Client
	model     openai.ChatModel
	logger    *slog.Logger
}

// NewService creates a chat service. An empty model selects DefaultModel.
func NewService(retriever Retriever, client *openai.Client, model string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	m := DefaultModel
	if model != "" {
		m = openai.ChatModel(model)
	}
	return &Service{
		retriever: retriever,
		client:    client,
		model:     m,
		logger:    logger,
	}
}

// Chat runs one RAG turn and returns the answer together with the
// source chunks it was grounded in, truncated to citation snippets.
func (s *Service) Chat(ctx context.Context, message string, history []Message) (string, []index.ChunkRecord, error) {
	records, crossRef, err := s.retriever.Retrieve(ctx, message)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve context: %w", err)
	}
	s.logger.Debug("answering chat turn", "chunks", len(records), "cross_ref", crossRef)

	messages := buildMessages(retrieval.BuildContext(records), history, message)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       s.model,
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", nil, fmt.Errorf("chat completion failed: %w", err)
	}

	answer := ""
	if len(resp.Choices) > 0 {
		answer = resp.Choices[0].Message.Content
	}
	return answer, retrieval.Sources(records), nil
}

// buildMessages assembles the prompt: system message with embedded
// context, then the last maxHistoryTurns prior turns, then the new
// user message.
func buildMessages(contextStr string, history []Message, message string) []openai.ChatCompletionMessageParamUnion {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(fmt.Sprintf(systemPromptTemplate, contextStr)))
	for _, turn := range history {
		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	return append(messages, openai.UserMessage(message))
}
