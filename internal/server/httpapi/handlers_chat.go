package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mydutch/internal/common"
	"github.com/dmitrijs2005/mydutch/internal/server/services"
)

type conversationRequest struct {
	Message             string             `json:"message"`
	ConversationHistory []services.Message `json:"conversation_history"`
}

type conversationResponse struct {
	Response            string             `json:"response"`
	ConversationHistory []services.Message `json:"conversation_history"`
}

type grammarRequest struct {
	Topic   string `json:"topic"`
	Example string `json:"example,omitempty"`
}

type grammarResponse struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

type chatHistoryResponse struct {
	ConversationHistory []services.Message `json:"conversation_history"`
}

type storedConversation struct {
	Conversation []services.Message `json:"conversation"`
}

func (s *HTTPServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply := s.chat.Conversation(r.Context(), req.Message, req.ConversationHistory, "A2")

	updated := append(append([]services.Message{}, req.ConversationHistory...),
		services.Message{Role: "user", Content: req.Message},
		services.Message{Role: "assistant", Content: reply},
	)

	// History persistence is best-effort; a storage hiccup must not lose the
	// reply the learner is waiting for.
	if data, err := json.Marshal(storedConversation{Conversation: updated}); err == nil {
		if err := s.content.SaveChatHistory(r.Context(), userID, data); err != nil {
			s.logger.Warn(r.Context(), "error saving conversation", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, conversationResponse{
		Response:            reply,
		ConversationHistory: updated,
	})
}

func (s *HTTPServer) handleGrammarExplanation(w http.ResponseWriter, r *http.Request) {
	var req grammarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	explanation := s.chat.GrammarExplanation(r.Context(), req.Topic, req.Example)

	writeJSON(w, http.StatusOK, grammarResponse{
		Topic:       req.Topic,
		Explanation: explanation,
	})
}

func (s *HTTPServer) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := s.content.GetChatHistoryURL(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, chatHistoryResponse{ConversationHistory: []services.Message{}})
			return
		}
		s.logger.Error(r.Context(), "chat history fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, presignedURLResponse{PresignedURL: url})
}

func (s *HTTPServer) handleClearChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := s.content.DeleteChatHistory(r.Context(), userID); err != nil {
		s.logger.Warn(r.Context(), "chat history delete failed", "error", err)
		writeJSON(w, http.StatusOK, messageResponse{Message: "No chat history to clear"})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Chat history cleared"})
}
