package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/user/pkg/request"
)

// secret must match env/storefront.yaml so VerifyToken accepts tokens
// signed by Login.
const testSecretKey = "test-secret-key"

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	c := testContext()
	pool, pgContainer, _, userService := setup(t)(
		c,
		config.Application{SecretKey: testSecretKey},
	)
	defer teardown(t)(pool, pgContainer)

	user, err := userService.Register(c, request.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	token, err := userService.Login(c, request.LoginRequest{
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := common.VerifyToken(c, token)
	require.NoError(t, err, "a freshly issued token should verify")

	userId, err := common.UserIdFromJwtToken(common.AttachJwtTokenToContext(c, verified))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userId, "token subject should be the registered user")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	c := testContext()
	pool, pgContainer, _, userService := setup(t)(
		c,
		config.Application{SecretKey: testSecretKey},
	)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.Register(c, request.RegisterRequest{
		Email:    "bob@example.com",
		Name:     "Bob",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	_, err = userService.Register(c, request.RegisterRequest{
		Email:    "bob@example.com",
		Name:     "Bob Again",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, errors.ErrEmailTaken)
}

func TestLoginFailures(t *testing.T) {
	c := testContext()
	pool, pgContainer, _, userService := setup(t)(
		c,
		config.Application{SecretKey: testSecretKey},
	)
	defer teardown(t)(pool, pgContainer)

	_, err := userService.Register(c, request.RegisterRequest{
		Email:    "carol@example.com",
		Name:     "Carol",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	_, err = userService.Login(c, request.LoginRequest{
		Email:    "carol@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, errors.ErrWrongPassword)

	_, err = userService.Login(c, request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-password",
	})
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}
