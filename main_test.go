package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"coursemart/config"
	"coursemart/database"
	"coursemart/utils"

	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:             "test-secret",
		JWTExpiry:          time.Hour,
		SaltRound:          bcrypt.MinCost,
		LoginBlockDuration: 15 * time.Minute,
		PublicBaseURL:      "http://localhost:3000",
		CORSOrigins:        "*",
		OrderExpiry:        time.Hour,
		TaxRate:            0.1,
	}
	database.Database.Db = database.OpenTestDB(t)
	utils.SetMailer(nil)
	utils.SetCourseCache(nil)
	return newApp()
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func registerAndLogin(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   "password123",
		"role":       role,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = do(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func idOf(t *testing.T, raw json.RawMessage) uint {
	t.Helper()
	var v struct {
		ID uint `json:"ID"`
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

func TestHealth(t *testing.T) {
	app := testApp(t)
	status, env := do(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := testApp(t)
	registerAndLogin(t, app, "dup@example.com", "")

	status, env := do(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"first_name": "Other",
		"last_name":  "User",
		"email":      "DUP@example.com",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Email is already registered!", env.Message)
}

func TestPurchaseFlow(t *testing.T) {
	app := testApp(t)
	instructor := registerAndLogin(t, app, "instructor@example.com", "instructor")
	student := registerAndLogin(t, app, "student@example.com", "student")

	courseBody := fiber.Map{
		"title":       "Go for Backend Developers",
		"description": "Build production services with Go.",
		"category":    "programming",
		"level":       "intermediate",
		"price":       49.99,
	}

	status, _ := do(t, app, http.MethodPost, "/instructor/course", student, courseBody)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := do(t, app, http.MethodPost, "/instructor/course", instructor, courseBody)
	require.Equal(t, http.StatusCreated, status, env.Message)
	courseID := idOf(t, env.Data)

	status, _ = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/publish", courseID), instructor, nil)
	assert.Equal(t, http.StatusBadRequest, status, "publishing without lessons")

	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/sections", courseID), instructor, fiber.Map{"title": "Basics"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	sectionID := idOf(t, env.Data)

	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/sections/%d/lessons", courseID, sectionID), instructor, fiber.Map{
		"title":    "Hello, Go",
		"type":     "video",
		"duration": 10,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/publish", courseID), instructor, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = do(t, app, http.MethodPost, "/order/checkout", student, fiber.Map{
		"course_id":      courseID,
		"payment_method": "stripe",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	orderID := idOf(t, env.Data)

	status, _ = do(t, app, http.MethodGet, fmt.Sprintf("/order/%d", orderID), instructor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/order/%d/pay", orderID), student, fiber.Map{"transaction_id": "txn_123"})
	require.Equal(t, http.StatusOK, status, env.Message)

	var paid struct {
		Order struct {
			PaymentStatus string `json:"payment_status"`
			OrderStatus   string `json:"order_status"`
		} `json:"order"`
		Enrollment *struct {
			Progress int `json:"progress"`
		} `json:"enrollment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, "completed", paid.Order.PaymentStatus)
	assert.Equal(t, "confirmed", paid.Order.OrderStatus)
	require.NotNil(t, paid.Enrollment)
	assert.Equal(t, 0, paid.Enrollment.Progress)

	status, _ = do(t, app, http.MethodPost, fmt.Sprintf("/order/%d/pay", orderID), student, fiber.Map{"transaction_id": "txn_124"})
	assert.Equal(t, http.StatusBadRequest, status, "paying twice")

	status, _ = do(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", courseID), student, nil)
	assert.Equal(t, http.StatusBadRequest, status, "already enrolled by payment")

	status, env = do(t, app, http.MethodGet, fmt.Sprintf("/course/%d/progress", courseID), student, nil)
	assert.Equal(t, http.StatusOK, status, env.Message)

	status, env = do(t, app, http.MethodGet, "/user/enrollments", student, nil)
	assert.Equal(t, http.StatusOK, status, env.Message)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := testApp(t)
	student := registerAndLogin(t, app, "student@example.com", "")

	status, _ := do(t, app, http.MethodGet, "/admin/users", student, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVerifyUnknownCertificate(t *testing.T) {
	app := testApp(t)

	status, _ := do(t, app, http.MethodGet, "/certificate/verify/CERT-DOESNOTEXIST", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodGet, "/certificate/verify/bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// cacheRecorder answers redis commands in memory and remembers them.
type cacheRecorder struct {
	mu   sync.Mutex
	cmds [][]interface{}
}

func (r *cacheRecorder) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (r *cacheRecorder) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func (r *cacheRecorder) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		r.mu.Lock()
		r.cmds = append(r.cmds, cmd.Args())
		r.mu.Unlock()

		switch c := cmd.(type) {
		case *goredis.ScanCmd:
			c.SetVal([]string{"courses:featured:8"}, 0)
		case *goredis.StringCmd:
			c.SetErr(goredis.Nil)
			return goredis.Nil
		}
		return nil
	}
}

func (r *cacheRecorder) reset() {
	r.mu.Lock()
	r.cmds = nil
	r.mu.Unlock()
}

func (r *cacheRecorder) invalidations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, args := range r.cmds {
		if len(args) > 0 && args[0] == "scan" {
			for _, a := range args {
				if a == utils.FeaturedCoursesKey {
					n++
				}
			}
		}
	}
	return n
}

func TestReviewsInvalidateFeaturedCache(t *testing.T) {
	app := testApp(t)
	recorder := &cacheRecorder{}
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(recorder)
	utils.SetCourseCache(utils.NewCacheWithClient(rdb, time.Minute))
	t.Cleanup(func() { utils.SetCourseCache(nil) })

	instructor := registerAndLogin(t, app, "instructor@example.com", "instructor")
	student := registerAndLogin(t, app, "student@example.com", "student")

	status, env := do(t, app, http.MethodPost, "/instructor/course", instructor, fiber.Map{
		"title":       "Free Go Primer",
		"description": "A short free introduction.",
		"category":    "programming",
		"level":       "beginner",
		"price":       0,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	courseID := idOf(t, env.Data)

	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/sections", courseID), instructor, fiber.Map{"title": "Start"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	sectionID := idOf(t, env.Data)
	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/sections/%d/lessons", courseID, sectionID), instructor, fiber.Map{
		"title": "Setup",
		"type":  "text",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/instructor/course/%d/publish", courseID), instructor, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/course/%d/enroll", courseID), student, nil)
	require.Equal(t, http.StatusCreated, status, env.Message)

	recorder.reset()
	status, env = do(t, app, http.MethodPost, fmt.Sprintf("/course/%d/reviews", courseID), student, fiber.Map{"rating": 5})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, 1, recorder.invalidations())
	reviewID := idOf(t, env.Data)

	recorder.reset()
	status, env = do(t, app, http.MethodDelete, fmt.Sprintf("/course/%d/reviews/%d", courseID, reviewID), student, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, 1, recorder.invalidations())

	// a rejected review leaves the cache alone
	recorder.reset()
	status, _ = do(t, app, http.MethodPost, fmt.Sprintf("/course/%d/reviews", courseID), instructor, fiber.Map{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, recorder.invalidations())
}
