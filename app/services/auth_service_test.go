package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/auth"
)

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAuthService(db)

	user, tokens, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, "hunter2hunter2", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "hunter2hunter2"))

	claims, err := auth.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAuthService(db)

	_, _, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(services.RegisterInput{
		Name: "Impostor", Email: "asha@example.com", Password: "different-pass",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestLoginVerifiesCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAuthService(db)

	_, _, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	user, tokens, err := svc.Login(services.LoginInput{
		Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)

	// Wrong password and unknown email fail identically.
	_, _, errWrong := svc.Login(services.LoginInput{
		Email: "asha@example.com", Password: "nope",
	})
	_, _, errUnknown := svc.Login(services.LoginInput{
		Email: "ghost@example.com", Password: "whatever",
	})
	assert.ErrorIs(t, errWrong, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, services.ErrInvalidCredentials)
}

func TestMeLoadsTheAccount(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewAuthService(db)

	registered, _, err := svc.Register(services.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	principal := models.User{Role: registered.Role}
	principal.ID = registered.ID

	me, err := svc.Me(principal)
	require.NoError(t, err)
	assert.Equal(t, registered.Email, me.Email)

	ghost := models.User{}
	ghost.ID = 424242
	_, err = svc.Me(ghost)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
