package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"coursemart/config"
	"coursemart/database"
	"coursemart/logger"
	"coursemart/middleware"
	authRoutes "coursemart/routers/authRoutes"
	courseRoutes "coursemart/routers/courseRoutes"
	orderRoutes "coursemart/routers/orderRoutes"
	superAdminRoutes "coursemart/routers/superAdmin"
	userProfileRoutes "coursemart/routers/userRoutes"
	"coursemart/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// newApp wires middleware and routes. It expects config and database to be
// initialised.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "coursemart",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return middleware.JsonResponse(c, e.Code, false, e.Message, nil)
			}
			return middleware.ErrorResponse(c, err)
		},
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.AppConfig.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorRoutes(app)
	orderRoutes.SetupOrderRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	return app
}

func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.LogMode); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer logger.L().Sync()

	database.ConnectDb()
	utils.InitMailer()

	cache, err := utils.NewCache(config.AppConfig.RedisAddr, config.AppConfig.CacheTTL)
	if err != nil {
		logger.L().Warn("redis unavailable, course cache disabled", "error", err.Error())
	}
	utils.SetCourseCache(cache)
	defer cache.Close()

	scheduler, err := utils.InitializeOrderScheduler(database.Database.Db, config.AppConfig.OrderSweepSchedule)
	if err != nil {
		logger.L().Fatal("invalid ORDER_SWEEP_SCHEDULE", "error", err.Error())
	}

	app := newApp()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		_ = app.Shutdown()
	}()

	logger.L().Info("server is running", "port", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.L().Fatal("server stopped", "error", err.Error())
	}
}
