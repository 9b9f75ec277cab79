package userValidator

import (
	"coursemart/validators"

	"github.com/gofiber/fiber/v2"
)

// ProfileRequest carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileRequest struct {
	FirstName      *string  `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName       *string  `json:"last_name" validate:"omitempty,min=2,max=50"`
	Bio            *string  `json:"bio" validate:"omitempty,max=500"`
	Location       *string  `json:"location" validate:"omitempty,max=100"`
	Website        *string  `json:"website" validate:"omitempty,url"`
	Skills         []string `json:"skills" validate:"omitempty,max=20,dive,min=1,max=50"`
	Interests      []string `json:"interests" validate:"omitempty,max=20,dive,min=1,max=50"`
	AvatarPublicID *string  `json:"avatar_public_id" validate:"omitempty,max=255"`
	AvatarURL      *string  `json:"avatar_url" validate:"omitempty,url"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProfileRequest)
		if ok, err := validators.Body(c, reqData); !ok {
			return err
		}

		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}
