package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-risk-go/pkg/hash"
	"contract-risk-go/pkg/token"
)

func newTestUserService() (UserService, *fakeUserRepo) {
	repo := &fakeUserRepo{}
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	return NewUserService(repo, jwtManager), repo
}

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	svc, repo := newTestUserService()

	user, err := svc.Register("alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "USER", user.Role)
	assert.NotEqual(t, "s3cret", user.Password)
	assert.True(t, hash.CheckPasswordHash("s3cret", user.Password))
	assert.Len(t, repo.users, 1)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Register("alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other")
	assert.Error(t, err)
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc, _ := newTestUserService()
	_, err := svc.Register("alice", "s3cret")
	require.NoError(t, err)

	access, refresh, err := svc.Login("alice", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestUserService()
	_, err := svc.Register("alice", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.Login("alice", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, _, err = svc.Login("nobody", "s3cret")
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	svc, _ := newTestUserService()
	_, err := svc.Register("alice", "s3cret")
	require.NoError(t, err)

	_, refresh, err := svc.Login("alice", "s3cret")
	require.NoError(t, err)

	newAccess, newRefresh, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestUserService()

	_, _, err := svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}
