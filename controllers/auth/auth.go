package authController

import (
	"strings"
	"time"

	"coursemart/apierr"
	"coursemart/config"
	"coursemart/database"
	"coursemart/logger"
	"coursemart/middleware"
	"coursemart/models"
	"coursemart/services"
	"coursemart/utils"
	"coursemart/validators"
	authValidator "coursemart/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgEmailTaken = "Email is already registered!"

// saveLoginState writes only the login bookkeeping columns, leaving fields
// an admin may have changed since the user was read untouched.
func saveLoginState(db *gorm.DB, user *models.User) error {
	return db.Model(user).
		Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until", "last_login").
		Updates(user).Error
}

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := models.NormalizeEmail(reqData.Email)

	// Check if email already exists
	if err := db.Where("email = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.ErrorResponse(c, apierr.BusinessRule(msgEmailTaken))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.L().Error("hashing password failed", "error", err.Error())
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	role := reqData.Role
	if role == "" {
		role = models.RoleStudent
	}

	newUser := models.User{
		FirstName: strings.TrimSpace(reqData.FirstName),
		LastName:  strings.TrimSpace(reqData.LastName),
		Email:     email,
		Password:  string(hashedPassword),
		Role:      role,
		IsActive:  true,
	}

	if err := db.Create(&newUser).Error; err != nil {
		// a concurrent signup can still win the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.ErrorResponse(c, apierr.BusinessRule(msgEmailTaken))
		}
		logger.L().Error("saving user failed", "error", err.Error())
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.FullName())

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	now := time.Now()

	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(reqData.Email)).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !user.IsActive {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account has been deactivated!", nil)
	}

	if user.IsLockedOut(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		if user.RegisterFailedLogin(now, config.AppConfig.LoginBlockDuration) {
			logger.L().Warn("account blocked after failed logins", "user_id", user.ID)
		}
		if err := saveLoginState(db, &user); err != nil {
			logger.L().Error("saving failed login failed", "user_id", user.ID, "error", err.Error())
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	user.RegisterSuccessfulLogin(now)
	if err := saveLoginState(db, &user); err != nil {
		logger.L().Error("saving last login failed", "user_id", user.ID, "error", err.Error())
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		logger.L().Error("saving login tracking failed", "user_id", user.ID, "error", err.Error())
	}

	token, err := middleware.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)

	reqData, ok := c.Locals("pagination").(*validators.PageQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page, limit := services.NormalizePage(reqData.Page, reqData.Limit)

	db := database.Database.Db
	var total int64
	if err := db.Model(&models.LoginTracking{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	var loginTracking []models.LoginTracking
	if err := db.Where("user_id = ?", userId).
		Order("timestamp desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&loginTracking).Error; err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"login_history": loginTracking,
		"pagination":    services.NewPagination(page, limit, total),
	})
}
