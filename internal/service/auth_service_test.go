package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/service/servicetest"
	"github.com/klass-lk/blogapi/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *servicetest.UserStore, *blogapi.TokenService) {
	users := new(servicetest.UserStore)
	tokens := blogapi.NewTokenService("access-secret", "refresh-secret", time.Minute, time.Hour, "blogapi")
	return NewAuthService(users, security.NewBcryptEncoder(4), tokens), users, tokens
}

func TestAuthService_RegisterNeverCreatesAdmin(t *testing.T) {
	s, users, _ := newAuthService()
	users.On("ExistsBy", mock.Anything, servicetest.Filters(blogapi.Eq("username", "alice"))).Return(false, nil)
	users.On("Save", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return !u.IsAdmin && u.PasswordHash != "" && u.PasswordHash != "secret-password"
	})).Return(nil)

	user, err := s.Register(context.Background(), RegisterRequest{Username: "alice", Password: "secret-password"})
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	users.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	s, users, _ := newAuthService()
	users.On("ExistsBy", mock.Anything, mock.Anything).Return(true, nil)

	_, err := s.Register(context.Background(), RegisterRequest{Username: "alice", Password: "secret-password"})
	assertFieldError(t, err, "username")
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	s, users, tokens := newAuthService()
	hash, err := security.NewBcryptEncoder(4).GetPasswordHash("secret-password")
	require.NoError(t, err)
	user := model.User{ID: "u1", Username: "alice", PasswordHash: hash, IsAdmin: true}
	users.On("FindByUsername", mock.Anything, "alice").Return(user, nil)
	users.On("FindById", mock.Anything, "u1").Return(user, nil)

	pair, err := s.Login(context.Background(), TokenRequest{Username: "alice", Password: "secret-password"})
	require.NoError(t, err)

	claims, err := tokens.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, blogapi.RoleAdmin, claims.Role)

	refreshed, err := s.Refresh(context.Background(), RefreshRequest{Refresh: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = s.Refresh(context.Background(), RefreshRequest{Refresh: pair.AccessToken})
	assertStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_LoginBadCredentials(t *testing.T) {
	s, users, _ := newAuthService()
	hash, _ := security.NewBcryptEncoder(4).GetPasswordHash("secret-password")
	users.On("FindByUsername", mock.Anything, "alice").Return(model.User{ID: "u1", PasswordHash: hash}, nil)
	users.On("FindByUsername", mock.Anything, "ghost").Return(model.User{}, blogapi.ErrNotFound)

	_, err := s.Login(context.Background(), TokenRequest{Username: "alice", Password: "wrong-password"})
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = s.Login(context.Background(), TokenRequest{Username: "ghost", Password: "whatever1"})
	assertStatus(t, err, http.StatusUnauthorized)
}
