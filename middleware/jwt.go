package middleware

import (
	"fmt"
	"strings"
	"time"

	"coursemart/config"
	"coursemart/database"
	"coursemart/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"iat":    now.Unix(),
		"exp":    now.Add(config.AppConfig.JWTExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// parseToken validates a bearer token and returns the user id it carries.
func parseToken(authHeader string) (uint, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, fmt.Errorf("invalid authorization header format")
	}
	tokenString := strings.TrimSpace(authHeader[len("Bearer "):])

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token payload")
	}
	userID, ok := claims["userId"].(float64) // numeric claims decode as float64
	if !ok || userID <= 0 {
		return 0, fmt.Errorf("invalid token payload")
	}
	return uint(userID), nil
}

// activeUser loads the token's user. The role is always read from the
// database so a demotion takes effect before the token expires.
func activeUser(userID uint) (*models.User, bool) {
	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, user.IsActive
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	userID, err := parseToken(authHeader)
	if err != nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	user, ok := activeUser(userID)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Account not found or deactivated", nil)
	}

	c.Locals("userId", user.ID)
	c.Locals("role", user.Role)
	return c.Next()
}

// OptionalJWT identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalJWT(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}
	if userID, err := parseToken(authHeader); err == nil {
		if user, ok := activeUser(userID); ok {
			c.Locals("userId", user.ID)
			c.Locals("role", user.Role)
		}
	}
	return c.Next()
}

// CurrentUserID returns the authenticated user id, 0 for anonymous callers.
func CurrentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userId").(uint)
	return id
}
