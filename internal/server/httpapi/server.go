// Package httpapi exposes the public JSON API: authentication, learning
// content, per-user progress, and the AI chat endpoints. All routes live under
// the /api/v1 prefix.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/mydutch/internal/logging"
	"github.com/dmitrijs2005/mydutch/internal/server/config"
	"github.com/dmitrijs2005/mydutch/internal/server/models"
	"github.com/dmitrijs2005/mydutch/internal/server/services"
)

// UserService is the authentication surface the handlers depend on.
type UserService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// ContentService is the object-storage surface the handlers depend on.
type ContentService interface {
	GetContent(ctx context.Context, key string) ([]byte, error)
	GetProgressURL(ctx context.Context, userID string) (string, error)
	SaveProgress(ctx context.Context, userID string, data []byte) error
	GetChatHistoryURL(ctx context.Context, userID string) (string, error)
	SaveChatHistory(ctx context.Context, userID string, data []byte) error
	DeleteChatHistory(ctx context.Context, userID string) error
	GetAudioURL(ctx context.Context, word string) (string, error)
}

// ChatService is the inference surface the handlers depend on.
type ChatService interface {
	Conversation(ctx context.Context, userMessage string, history []services.Message, userLevel string) string
	GrammarExplanation(ctx context.Context, topic, example string) string
}

// HTTPServer hosts the public API and owns its lifecycle.
type HTTPServer struct {
	address     string
	logger      logging.Logger
	users       UserService
	content     ContentService
	chat        ChatService
	jwtSecret   []byte
	corsOrigins []string
}

// NewHTTPServer wires the handler dependencies into a server bound to the
// configured address.
func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, cs ContentService, ch ChatService) *HTTPServer {
	return &HTTPServer{
		address:     cfg.EndpointAddrHTTP,
		logger:      l.With("module", "http_server"),
		users:       us,
		content:     cs,
		chat:        ch,
		jwtSecret:   []byte(cfg.SecretKey),
		corsOrigins: strings.Split(cfg.CORSOrigins, ","),
	}
}

// Router builds the chi route tree. Split out from Run so tests can drive the
// full middleware stack through httptest.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.handleLogout)
				r.Get("/me", s.handleMe)
			})
		})

		r.Route("/content", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/vocabulary", s.handleVocabulary)
			r.Get("/vocabulary/{category}", s.handleVocabularyCategory)
			r.Get("/grammar", s.handleGrammar)
			r.Get("/grammar/{lesson}", s.handleGrammarLesson)
			r.Get("/progress", s.handleGetProgress)
			r.Post("/progress", s.handleUpdateProgress)
			r.Get("/audio/{word}", s.handleAudio)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/conversation", s.handleConversation)
			r.Post("/grammar", s.handleGrammarExplanation)
			r.Get("/history", s.handleChatHistory)
			r.Delete("/history", s.handleClearChatHistory)
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
