package authController

import (
	"testing"
	"time"

	"coursemart/database"
	"coursemart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoginStateKeepsAdminChanges(t *testing.T) {
	db := database.OpenTestDB(t)
	user := models.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "x", Role: models.RoleStudent, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	var stale models.User
	require.NoError(t, db.First(&stale, user.ID).Error)

	// an admin deactivates the account after the login read it
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"is_active": false,
		"role":      models.RoleInstructor,
	}).Error)

	now := time.Now().UTC()
	stale.RegisterFailedLogin(now, time.Minute)
	require.NoError(t, saveLoginState(db, &stale))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, models.RoleInstructor, reloaded.Role)
	assert.Equal(t, 1, reloaded.FailedLoginAttempts)
	require.NotNil(t, reloaded.LastFailedLogin)

	stale.RegisterSuccessfulLogin(now)
	require.NoError(t, saveLoginState(db, &stale))

	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Zero(t, reloaded.FailedLoginAttempts)
	assert.Nil(t, reloaded.LastFailedLogin)
	require.NotNil(t, reloaded.LastLogin)
}
