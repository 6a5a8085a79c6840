package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/mydutch/internal/common"
	"github.com/dmitrijs2005/mydutch/internal/server/services"
)

// maxProgressBodySize caps progress uploads; a learner's snapshot is a few KB.
const maxProgressBodySize = 1 << 20

type presignedURLResponse struct {
	PresignedURL string `json:"presigned_url"`
}

type audioURLResponse struct {
	AudioURL string `json:"audio_url"`
}

// defaultProgress is returned for users who have not saved any progress yet.
type defaultProgress struct {
	Level       int   `json:"level"`
	TotalXP     int   `json:"totalXP"`
	StudyStreak int   `json:"studyStreak"`
	Mistakes    []any `json:"mistakes"`
}

func (s *HTTPServer) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	data, err := s.content.GetContent(r.Context(), services.VocabularyKey(""))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: "Object storage not configured",
				Note:    "Using local vocabulary data",
			})
			return
		}
		s.logger.Error(r.Context(), "vocabulary fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *HTTPServer) handleVocabularyCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	data, err := s.content.GetContent(r.Context(), services.VocabularyKey(category))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Category '%s' not found", category))
			return
		}
		s.logger.Error(r.Context(), "vocabulary fetch failed", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *HTTPServer) handleGrammar(w http.ResponseWriter, r *http.Request) {
	data, err := s.content.GetContent(r.Context(), services.GrammarKey(""))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: "Object storage not configured",
				Note:    "Using local grammar data",
			})
			return
		}
		s.logger.Error(r.Context(), "grammar fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *HTTPServer) handleGrammarLesson(w http.ResponseWriter, r *http.Request) {
	lesson := chi.URLParam(r, "lesson")

	data, err := s.content.GetContent(r.Context(), services.GrammarKey(lesson))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Grammar lesson '%s' not found", lesson))
			return
		}
		s.logger.Error(r.Context(), "grammar fetch failed", "lesson", lesson, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeRawJSON(w, http.StatusOK, data)
}

func (s *HTTPServer) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := s.content.GetProgressURL(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, defaultProgress{Level: 1, Mistakes: []any{}})
			return
		}
		s.logger.Error(r.Context(), "progress fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, presignedURLResponse{PresignedURL: url})
}

func (s *HTTPServer) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProgressBodySize))
	if err != nil || !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.content.SaveProgress(r.Context(), userID, body); err != nil {
		s.logger.Error(r.Context(), "progress update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update progress")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Progress updated successfully"})
}

func (s *HTTPServer) handleAudio(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")

	url, err := s.content.GetAudioURL(r.Context(), word)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusOK, messageResponse{
				Message: "Audio files not stored",
				Note:    "Using Web Speech API for text-to-speech",
			})
			return
		}
		s.logger.Error(r.Context(), "audio url failed", "word", word, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, audioURLResponse{AudioURL: url})
}
