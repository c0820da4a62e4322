package config

import (
	http "github.com/forumdesk/admin-api/internal/delivery/http"
	"github.com/forumdesk/admin-api/internal/delivery/http/middleware"
	"github.com/forumdesk/admin-api/internal/delivery/http/route"
	"github.com/forumdesk/admin-api/internal/repository"
	"github.com/forumdesk/admin-api/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
}

func Server(config *ServerConfig) {
	contentRepository := repository.NewContentRepository(config.Log, config.DB, config.DBCache)
	commentRepository := repository.NewCommentRepository(config.Log, config.DB)

	contentUsecase := usecase.NewContentUsecase(contentRepository, commentRepository, config.DB, config.Log, config.Config)
	threadUsecase := usecase.NewThreadUsecase(commentRepository, config.Log, config.Config)

	contentController := http.NewContentController(contentUsecase, threadUsecase, config.Log, config.Config)
	threadController := http.NewThreadController(threadUsecase, contentUsecase, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Router, config.Log, config.Config)

	routeConfig := route.RouteConfig{
		App:               config.Router,
		AuthMiddleware:    authMiddleware,
		ContentController: contentController,
		ThreadController:  threadController,
	}

	routeConfig.SetupRoute()
}
