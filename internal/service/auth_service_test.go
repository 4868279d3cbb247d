package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/TravelAgency_BackEnd/internal/domain"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/memory"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

type stubVerifier struct {
	identity *GoogleIdentity
	err      error
	audience string
}

func (v *stubVerifier) Verify(_ context.Context, _ string, audience string) (*GoogleIdentity, error) {
	v.audience = audience
	return v.identity, v.err
}

func newAuthService(store *memory.Store, audience string) *AuthService {
	return NewAuthService(store.Users(), util.NewJWTManager("test-secret", time.Hour), AuthServiceConfig{
		GoogleAudience: audience,
		Logger:         quietLogger(),
	})
}

func TestRegisterThenLogin(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store, "")
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: "Budi@Example.com", Password: "secret123", FullName: strp("Budi")})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", registered.User.Email)
	assert.Equal(t, domain.RoleCustomer, registered.User.Role)
	assert.NotEmpty(t, registered.Token)

	_, err = svc.Register(ctx, RegisterInput{Email: "budi@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrEmailTaken)

	result, err := svc.Login(ctx, " BUDI@example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	user, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)

	_, err = svc.Login(ctx, "budi@example.com", "wrong-pass1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestInactiveAccountsCannotSignIn(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store, "")
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Email: "sari@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = store.Users().UpdateStatus(ctx, registered.User.ID, domain.UserStatusInactive)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "sari@example.com", "secret123")
	require.ErrorIs(t, err, ErrAccountInactive)
	_, err = svc.Authenticate(ctx, registered.Token)
	require.ErrorIs(t, err, ErrAccountInactive)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	_, err := newAuthService(memory.NewStore(), "").Authenticate(context.Background(), "not.a.token")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithGoogle(t *testing.T) {
	store := memory.NewStore()
	svc := newAuthService(store, "client-id.apps.googleusercontent.com")
	verifier := &stubVerifier{identity: &GoogleIdentity{Email: "Wayan@Gmail.com", EmailVerified: true, Name: "Wayan"}}
	svc.verifier = verifier
	ctx := context.Background()

	first, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "client-id.apps.googleusercontent.com", verifier.audience)
	assert.Equal(t, "wayan@gmail.com", first.User.Email)
	assert.Equal(t, "Wayan", *first.User.Profile.FullName)

	second, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	verifier.identity = &GoogleIdentity{Email: "x@gmail.com", EmailVerified: false}
	_, err = svc.LoginWithGoogle(ctx, "id-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	verifier.err = errors.New("bad signature")
	_, err = svc.LoginWithGoogle(ctx, "id-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = newAuthService(store, "").LoginWithGoogle(ctx, "id-token")
	require.ErrorIs(t, err, ErrValidation)
}
