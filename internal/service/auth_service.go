package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/security"
)

var errBadCredentials = blogapi.ApiError{
	Status:    http.StatusUnauthorized,
	ErrorCode: "NO_ACTIVE_ACCOUNT",
	Message:   "No active account found with the given credentials",
}

type TokenIssuer interface {
	GenerateTokens(userID, username, role string) (blogapi.TokenPair, error)
	ParseRefreshToken(token string) (*blogapi.Claims, error)
}

type AuthService struct {
	users   UserStore
	encoder security.PasswordEncoder
	tokens  TokenIssuer
	now     func() time.Time
}

func NewAuthService(users UserStore, encoder security.PasswordEncoder, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, encoder: encoder, tokens: tokens, now: time.Now}
}

// Register creates a regular user. Admins are only ever created out of band.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	taken, err := s.users.ExistsBy(ctx, blogapi.Eq("username", req.Username))
	if err != nil {
		return model.User{}, err
	}
	if taken {
		return model.User{}, blogapi.FieldError("username", uniqueMessages["users_username_key"][1])
	}

	hash, err := s.encoder.GetPasswordHash(req.Password)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return model.User{}, writeError(err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req TokenRequest) (blogapi.TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if blogapi.IsNotFound(err) {
		return blogapi.TokenPair{}, errBadCredentials
	}
	if err != nil {
		return blogapi.TokenPair{}, err
	}
	if !s.encoder.IsMatching(user.PasswordHash, req.Password) {
		return blogapi.TokenPair{}, errBadCredentials
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair. The user must still exist.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (blogapi.TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(req.Refresh)
	if err != nil {
		return blogapi.TokenPair{}, blogapi.InvalidToken()
	}
	user, err := s.users.FindById(ctx, claims.Subject)
	if blogapi.IsNotFound(err) {
		return blogapi.TokenPair{}, blogapi.InvalidToken()
	}
	if err != nil {
		return blogapi.TokenPair{}, err
	}
	return s.issue(user)
}

// TokensFor issues a pair for an existing user without a password check.
func (s *AuthService) TokensFor(ctx context.Context, username string) (blogapi.TokenPair, model.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return blogapi.TokenPair{}, model.User{}, lookupError(err, "User")
	}
	pair, err := s.issue(user)
	return pair, user, err
}

func (s *AuthService) issue(user model.User) (blogapi.TokenPair, error) {
	role := blogapi.RoleUser
	if user.IsAdmin {
		role = blogapi.RoleAdmin
	}
	return s.tokens.GenerateTokens(user.ID, user.Username, role)
}
