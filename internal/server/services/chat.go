package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	sc "github.com/dmitrijs2005/mydutch/internal/server/config"
)

const aiRequestTimeout = 30 * time.Second

// Canned replies returned when the inference backend is unreachable. The chat
// endpoints never surface transport errors to the learner; they degrade to an
// apology instead.
const (
	replyNoResponse   = "Sorry, I couldn't generate a response."
	replyUnavailable  = "Sorry, I'm having trouble connecting right now."
	replyTimeout      = "Sorry, the request timed out. Please try again."
	replyGenericError = "Sorry, an error occurred. Please try again."
)

const conversationPromptFormat = `You are a friendly Dutch language tutor helping a student practice conversation at %[1]s level.

Your responsibilities:
1. Respond naturally in Dutch to the student's messages
2. Keep your responses appropriate for %[1]s level learners
3. If the student makes mistakes, gently correct them after your response
4. Encourage the student and be patient
5. Use simple, clear Dutch

Format your responses like this:
[Your conversational response in Dutch]

[If there are mistakes, add:]
💡 Tip: [Explain the mistake and correction in English]

Example:
Student: "Ik heb gegaan naar de winkel gisteren"
You: "Oh leuk! Wat heb je gekocht in de winkel?

💡 Tip: In Dutch, we say 'Ik ben naar de winkel gegaan' (not 'heb gegaan'). The verb 'gaan' uses 'zijn' (ben/is) instead of 'hebben' in the perfect tense."
`

const grammarPrompt = `You are a Dutch grammar expert. Explain Dutch grammar concepts clearly and simply for A2 level learners. Use examples and keep explanations concise.`

// Message is one turn of a chat exchange in the inference API's wire shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type aiRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type aiResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
}

// ChatService forwards conversation and grammar requests to a Workers AI
// inference endpoint. It holds no per-request state; a single instance is
// shared by all handlers.
type ChatService struct {
	client       *http.Client
	accountID    string
	apiToken     string
	model        string
	baseEndpoint string
}

// NewChatService constructs a ChatService from the AI settings in cfg.
func NewChatService(cfg *sc.Config) *ChatService {
	return &ChatService{
		client:       &http.Client{Timeout: aiRequestTimeout},
		accountID:    cfg.AIAccountID,
		apiToken:     cfg.AIAPIToken,
		model:        cfg.AIModel,
		baseEndpoint: cfg.AIBaseEndpoint,
	}
}

// Conversation sends the learner's message plus prior history to the tutor
// model and returns the reply. userLevel selects the CEFR level the tutor
// targets (A2 when empty).
func (s *ChatService) Conversation(ctx context.Context, userMessage string, history []Message, userLevel string) string {
	if userLevel == "" {
		userLevel = "A2"
	}
	messages := append(append([]Message{}, history...), Message{Role: "user", Content: userMessage})
	return s.chat(ctx, messages, fmt.Sprintf(conversationPromptFormat, userLevel), 0.7)
}

// GrammarExplanation asks the model for a plain-English explanation of a
// Dutch grammar topic, optionally anchored to an example sentence.
func (s *ChatService) GrammarExplanation(ctx context.Context, topic, example string) string {
	userMessage := fmt.Sprintf("Explain %s in Dutch grammar", topic)
	if example != "" {
		userMessage += fmt.Sprintf(" using this example: %s", example)
	}
	return s.chat(ctx, []Message{{Role: "user", Content: userMessage}}, grammarPrompt, 0.5)
}

func (s *ChatService) chat(ctx context.Context, messages []Message, systemPrompt string, temperature float64) string {
	full := make([]Message, 0, len(messages)+1)
	if systemPrompt != "" {
		full = append(full, Message{Role: "system", Content: systemPrompt})
	}
	full = append(full, messages...)

	body, err := json.Marshal(aiRequest{Messages: full, Temperature: temperature})
	if err != nil {
		return replyGenericError
	}

	url := fmt.Sprintf("%s/%s/ai/run/%s", s.baseEndpoint, s.accountID, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return replyGenericError
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", jsonContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return replyTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return replyTimeout
		}
		return replyGenericError
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return replyUnavailable
	}

	var parsed aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return replyNoResponse
	}
	if parsed.Result.Response == "" {
		return replyNoResponse
	}
	return parsed.Result.Response
}
