package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/recipe_api/internal/hash"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Users.Register(ctx, transport.RegisterRequest{
		Email:    "  Test@Example.com ",
		Password: "test123?",
		Name:     "Test Name",
	})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", u.Email)
	assert.Equal(t, "Test Name", u.Name)
	assert.NotEqual(t, "test123?", u.PasswordHash)
	assert.True(t, hash.CheckPassword(u.PasswordHash, "test123?"))

	events := env.Events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, TopicUserEvents, events[0].Topic)
	assert.Equal(t, EventUserRegistered, events[0].Event.(UserEvent).Type)
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "taken@example.com")

	tests := []struct {
		name  string
		req   transport.RegisterRequest
		field string
	}{
		{name: "empty email", req: transport.RegisterRequest{Password: "testpass123"}, field: "email"},
		{name: "bad email", req: transport.RegisterRequest{Email: "nope", Password: "testpass123"}, field: "email"},
		{name: "short password", req: transport.RegisterRequest{Email: "short@example.com", Password: "pw"}, field: "password"},
		{name: "duplicate email", req: transport.RegisterRequest{Email: "TAKEN@example.com", Password: "testpass123"}, field: "email"},
		{name: "short multibyte password", req: transport.RegisterRequest{Email: "runes@example.com", Password: "пароль"}, field: "password"},
		{name: "name too long", req: transport.RegisterRequest{Email: "long@example.com", Password: "testpass123", Name: strings.Repeat("ü", MaxFieldLength+1)}, field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Users.Register(ctx, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	_, err := env.Repo.UserByEmail(ctx, "short@example.com")
	assert.Error(t, err, "no user stored for a rejected registration")
}

func TestUserService_Register_MultibyteName(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	name := strings.Repeat("ü", 200)

	u, err := env.Users.Register(context.Background(), transport.RegisterRequest{
		Email:    "umlaut@example.com",
		Password: "testpass123",
		Name:     name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, u.Name)
}

func TestUserService_AuthenticateAndResolve(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "auth@example.com")

	first, err := env.Users.Authenticate(ctx, "AUTH@example.com", "testpass123")
	require.NoError(t, err)
	assert.Len(t, first, 2*TokenBytes)

	got, err := env.Users.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	second, err := env.Users.Authenticate(ctx, "auth@example.com", "testpass123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = env.Users.Resolve(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.Users.Resolve(ctx, second)
	assert.NoError(t, err)

	require.NoError(t, env.Repo.SetUserActive(ctx, u.ID, false))
	_, err = env.Users.Resolve(ctx, second)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.Users.Authenticate(ctx, "auth@example.com", "testpass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Authenticate_BadCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "bad@example.com")

	tests := []struct {
		name, email, password string
	}{
		{name: "wrong password", email: "bad@example.com", password: "wrongpass"},
		{name: "unknown email", email: "ghost@example.com", password: "testpass123"},
		{name: "blank password", email: "bad@example.com", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := env.Users.Authenticate(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, tok)
		})
	}

	_, err := env.Repo.TokenOf(ctx, u.ID)
	assert.Error(t, err, "no token issued")
}

func TestUserService_Resolve_Empty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.Users.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "me@example.com")
	env.register(t, "other@example.com")

	got, err := env.Users.UpdateProfile(ctx, u.ID, transport.ProfileRequest{
		Name:     ptr("updated user"),
		Password: ptr("newpassword123"),
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "updated user", got.Name)
	assert.Equal(t, "me@example.com", got.Email)
	assert.True(t, hash.CheckPassword(got.PasswordHash, "newpassword123"))

	_, err = env.Users.UpdateProfile(ctx, u.ID, transport.ProfileRequest{Email: ptr("other@example.com")}, true)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Users.UpdateProfile(ctx, u.ID, transport.ProfileRequest{Password: ptr("pw")}, true)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.Users.UpdateProfile(ctx, u.ID, transport.ProfileRequest{Name: ptr("x")}, false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "password")

	profile, err := env.Users.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated user", profile.Name)

	_, err = env.Users.Profile(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_EventFailureDoesNotFail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.Events.err = errBroker

	_, err := env.Users.Register(context.Background(), transport.RegisterRequest{
		Email:    "evt@example.com",
		Password: "testpass123",
	})
	require.NoError(t, err)
	assert.Len(t, env.Events.Events(), 1)
}
