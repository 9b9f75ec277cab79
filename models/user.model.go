package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// MaxFailedLogins is the number of consecutive bad passwords that blocks an account.
const MaxFailedLogins = 3

// failures older than this no longer count towards a block
const failedLoginWindow = 15 * time.Minute

type User struct {
	gorm.Model
	FirstName           string                      `json:"first_name" gorm:"size:50;not null"`
	LastName            string                      `json:"last_name" gorm:"size:50;not null"`
	Email               string                      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password            string                      `json:"-" gorm:"not null"`
	Role                string                      `json:"role" gorm:"size:20;default:'student'"`
	Avatar              MediaRef                    `json:"avatar" gorm:"embedded;embeddedPrefix:avatar_"`
	Bio                 string                      `json:"bio" gorm:"size:500"`
	Location            string                      `json:"location"`
	Website             string                      `json:"website"`
	Skills              datatypes.JSONSlice[string] `json:"skills"`
	Interests           datatypes.JSONSlice[string] `json:"interests"`
	IsEmailVerified     bool                        `json:"is_email_verified" gorm:"default:false"`
	IsActive            bool                        `json:"is_active" gorm:"default:true"`
	LastLogin           *time.Time                  `json:"last_login"`
	FailedLoginAttempts int                         `json:"-" gorm:"default:0"`
	LastFailedLogin     *time.Time                  `json:"-"`
	IsBlocked           bool                        `json:"-" gorm:"default:false"`
	BlockedUntil        *time.Time                  `json:"-"`
}

// NormalizeEmail is applied before every lookup or write so that the unique
// index on email is effectively case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsLockedOut reports whether the account is inside a login block window.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.IsBlocked && u.BlockedUntil != nil && u.BlockedUntil.After(now)
}

// RegisterFailedLogin counts a bad password and blocks the account for
// blockFor once MaxFailedLogins is reached. It returns true when the account
// became blocked.
func (u *User) RegisterFailedLogin(now time.Time, blockFor time.Duration) bool {
	if u.LastFailedLogin != nil && now.Sub(*u.LastFailedLogin) > failedLoginWindow {
		u.FailedLoginAttempts = 0
	}
	u.FailedLoginAttempts++
	u.LastFailedLogin = &now
	if u.FailedLoginAttempts >= MaxFailedLogins {
		until := now.Add(blockFor)
		u.IsBlocked = true
		u.BlockedUntil = &until
		return true
	}
	return false
}

func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.LastLogin = &now
	u.FailedLoginAttempts = 0
	u.LastFailedLogin = nil
	u.IsBlocked = false
	u.BlockedUntil = nil
}
