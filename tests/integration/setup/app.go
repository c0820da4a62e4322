package setup

import (
	"context"
	"testing"

	"github.com/forumdesk/admin-api/internal/delivery/http"
	"github.com/forumdesk/admin-api/internal/delivery/http/middleware"
	"github.com/forumdesk/admin-api/internal/delivery/http/route"
	"github.com/forumdesk/admin-api/internal/repository"
	"github.com/forumdesk/admin-api/internal/usecase"
	"github.com/redis/go-redis/v9"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const TestJWTSecret = "test-secret-key-for-jwt-token-generation"

func SetupTestApp(t *testing.T, pgURL, redisURL string) (*fiber.App, *pgxpool.Pool, *redis.Client) {
	t.Log("Setting up test application...")

	ctx := context.Background()

	testConfig := koanf.New(".")
	_ = testConfig.Set("POSTGRES_URL", pgURL)
	_ = testConfig.Set("REDIS_URL", redisURL)
	_ = testConfig.Set("JWT_SECRET_KEY", TestJWTSecret)

	t.Log("Connecting to test PostgreSQL...")
	dbPool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("failed to connect to test db: %v", err)
	}

	t.Log("Connecting to test Redis...")
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
		DB:   0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	zapLogger := zap.NewExample()

	contentRepository := repository.NewContentRepository(zapLogger, dbPool, redisClient)
	commentRepository := repository.NewCommentRepository(zapLogger, dbPool)

	contentUsecase := usecase.NewContentUsecase(contentRepository, commentRepository, dbPool, zapLogger, testConfig)
	threadUsecase := usecase.NewThreadUsecase(commentRepository, zapLogger, testConfig)

	contentController := http.NewContentController(contentUsecase, threadUsecase, zapLogger, testConfig)
	threadController := http.NewThreadController(threadUsecase, contentUsecase, zapLogger, testConfig)

	authMiddleware := middleware.NewAuthMiddleware(nil, zapLogger, testConfig)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "ForumDesk Admin Test",
		DisableStartupMessage: true,
		DisableKeepalive:      true, // Important for tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	routeConfig := route.RouteConfig{
		App:               fiberApp,
		AuthMiddleware:    authMiddleware,
		ContentController: contentController,
		ThreadController:  threadController,
	}

	routeConfig.SetupRoute()

	t.Log("Test application setup completed successfully")

	return fiberApp, dbPool, redisClient
}
