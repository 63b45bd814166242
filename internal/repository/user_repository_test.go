package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/utils"
)

func TestUserRepo_SeedDemoUsers(t *testing.T) {
	r := repository.NewUserRepo(bcrypt.MinCost)
	require.NoError(t, r.SeedDemoUsers())
	require.NoError(t, r.SeedDemoUsers(), "seeding twice is harmless")

	u, err := r.GetByEmail("  Demo@Cinema.com ")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.NotEqual(t, "123456", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "123456"))

	admin, err := r.GetByID("99")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	_, err = r.GetByEmail("ghost@cinema.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	_, err = r.Create("7", "demo@cinema.com", "x", "y", model.RoleCustomer)
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}
