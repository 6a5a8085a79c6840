// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token refresh with rotation,
// and logout.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mydutch/internal/common"
	"github.com/dmitrijs2005/mydutch/internal/dbx"
	"github.com/dmitrijs2005/mydutch/internal/server/auth"
	"github.com/dmitrijs2005/mydutch/internal/server/config"
	"github.com/dmitrijs2005/mydutch/internal/server/models"
	"github.com/dmitrijs2005/mydutch/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create users and start their first session
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - Logout: revoke every active session of a user
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password and opens their
// first session. The user row and the refresh token are inserted in one
// transaction, so a returned pair always has a matching session record.
// A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*models.User, *TokenPair, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        email,
		PasswordHash: &hash,
		AuthProvider: models.AuthProviderEmail,
		IsActive:     true,
	}
	if fullName != "" {
		user.FullName = &fullName
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("error creating user: %v", err)
		}
		user = created

		var genErr error
		pair, genErr = s.generateTokenPair(ctx, created.ID, tx)
		return genErr
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, common.ErrorAlreadyExists
		}
		return nil, nil, err
	}

	return user, pair, nil
}

// Login verifies the email/password pair and, on success, records the login
// time and returns a new TokenPair. Wrong email, missing password hash (OAuth
// accounts), and wrong password all collapse to common.ErrorUnauthorized so a
// caller cannot tell which check failed. Deactivated accounts yield
// common.ErrorInactiveUser.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}
	if user.PasswordHash == nil || !auth.CheckPassword(password, *user.PasswordHash) {
		return nil, nil, common.ErrorUnauthorized
	}
	if !user.IsActive {
		return nil, nil, common.ErrorInactiveUser
	}

	now := time.Now()
	if err := repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, common.ErrorInternal
	}
	user.LastLoginAt = &now

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. The presented token must be a well-formed refresh
// JWT, present in storage, not revoked, and not expired; its owner must still
// exist and be active. Expired sessions yield common.ErrRefreshTokenExpired,
// everything else invalid collapses to common.ErrInvalidToken.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := auth.GetUserIDFromToken(refreshToken, auth.TokenKindRefresh, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.RefreshTokens(s.db)
	token, err := repo.FindActive(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if token.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}
	if token.UserID != userID {
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorInactiveUser
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Revoke(ctx, refreshToken); err != nil {
			return fmt.Errorf("error revoking refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, userID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes every active refresh token owned by userID. Logging out with
// no active sessions is not an error.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.RevokeAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// GetByID returns the user's profile for the authenticated /me endpoint.
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, auth.TokenKindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(userID, auth.TokenKindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
