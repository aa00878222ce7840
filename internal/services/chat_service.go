package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/markdave123-py/scipaper/internal/core"
	"github.com/markdave123-py/scipaper/internal/models"
)

// historyLimit is how many earlier messages of a session reach the prompt.
const historyLimit = 10

// AskRequest is a question over a set of papers.
type AskRequest struct {
	PaperIDs  []string `json:"paper_ids"`
	SessionID string   `json:"session_id,omitempty"`
	Question  string   `json:"question"`
	TopK      int      `json:"top_k,omitempty"`
}

// ChatService answers questions grounded in retrieved chunks.
type ChatService struct {
	embedder    core.EmbeddingProvider
	vectors     core.VectorIndex
	texts       core.TextStore
	chats       core.ChatStore
	llm         core.LLMProvider
	defaultTopK int
}

func NewChatService(emb core.EmbeddingProvider, vectors core.VectorIndex, texts core.TextStore, chats core.ChatStore, llm core.LLMProvider, defaultTopK int) *ChatService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &ChatService{
		embedder:    emb,
		vectors:     vectors,
		texts:       texts,
		chats:       chats,
		llm:         llm,
		defaultTopK: defaultTopK,
	}
}

// Answer retrieves context from req.PaperIDs, generates a cited answer and
// records the exchange when a session id is given.
func (s *ChatService) Answer(ctx context.Context, req AskRequest) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", fmt.Errorf("%w: question is required", core.ErrInvalidInput)
	}
	if len(req.PaperIDs) == 0 {
		return "", fmt.Errorf("%w: at least one paper_id is required", core.ErrInvalidInput)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	history, err := s.history(ctx, req.SessionID)
	if err != nil {
		return "", err
	}

	contexts, err := s.Retrieve(ctx, req.Question, req.PaperIDs, topK)
	if err != nil {
		return "", err
	}

	answer, err := s.llm.Generate(ctx, "", BuildPrompt(req.Question, contexts, history))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	if req.SessionID != "" {
		for _, m := range []models.ChatMessage{
			{SessionID: req.SessionID, Role: models.RoleUser, Content: req.Question},
			{SessionID: req.SessionID, Role: models.RoleAssistant, Content: answer},
		} {
			if err := s.chats.SaveMessage(ctx, &m); err != nil {
				log.Printf("ChatService: could not save %s message for session %s: %v", m.Role, req.SessionID, err)
			}
		}
	}
	return answer, nil
}

// Retrieve returns the stored chunks nearest to question in vector rank
// order. Ids missing from the text store are dropped.
func (s *ChatService) Retrieve(ctx context.Context, question string, paperIDs []string, topK int) ([]models.DocumentChunk, error) {
	vecs, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed question: no vector returned")
	}

	matches, err := s.vectors.QueryVectors(ctx, vecs[0], topK, paperIDs)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	byID, err := s.texts.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}

	out := make([]models.DocumentChunk, 0, len(ids))
	for _, id := range ids {
		if ch, ok := byID[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (s *ChatService) history(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return nil, nil
	}
	msgs, err := s.chats.RecentMessages(ctx, sessionID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	lines := make([]string, len(msgs))
	for k, m := range msgs {
		lines[k] = strings.ToUpper(m.Role) + ": " + m.Content
	}
	return lines, nil
}

// BuildPrompt lays out context blocks labelled by paper id, the chat history
// and the citation rules.
func BuildPrompt(question string, contexts []models.DocumentChunk, history []string) string {
	contextBlock := "No context retrieved."
	if len(contexts) > 0 {
		blocks := make([]string, len(contexts))
		for k, ch := range contexts {
			paperID := ch.DocumentID
			if paperID == "" {
				paperID = "unknown"
			}
			blocks[k] = fmt.Sprintf("--- CONTEXT from paper %s ---\n%s", paperID, ch.Text)
		}
		contextBlock = strings.Join(blocks, "\n\n")
	}

	var b strings.Builder
	b.WriteString("You are an expert scientific assistant answering questions about a collection of papers.\n")
	b.WriteString("Use ONLY the provided context to answer.\n\n")
	b.WriteString("Citation Rule:\n")
	b.WriteString("The context is sourced from multiple papers, identified by their arXiv ID.\n")
	b.WriteString("You MUST cite your claims by referencing the paper ID found with the information.\n")
	b.WriteString("Format citations as [from <paper_id>].\n")
	b.WriteString("Example: \"The study found that Bayes error could be optimized [from 2305.10601v1].\"\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nConversation history:\n")
	b.WriteString(strings.Join(history, "\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nRespond concisely for a technical reader. If the answer is not in the context, say you don't know.\n")
	return b.String()
}
