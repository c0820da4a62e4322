package route

import (
	"github.com/forumdesk/admin-api/internal/delivery/http"
	"github.com/forumdesk/admin-api/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App               *fiber.App
	AuthMiddleware    *middleware.AuthMiddleware
	ContentController *http.ContentController
	ThreadController  *http.ThreadController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	admin := api.Group("/admin", c.AuthMiddleware.ModeratorRoute())

	postGroup := admin.Group("/posts")
	postGroup.Get("/", c.ContentController.ListPosts)
	postGroup.Get("/:id", c.ContentController.GetPost)
	postGroup.Post("/:id/status", c.ContentController.TransitionPost)

	questionGroup := admin.Group("/questions")
	questionGroup.Get("/", c.ContentController.ListQuestions)
	questionGroup.Get("/:id", c.ContentController.GetQuestion)
	questionGroup.Post("/:id/status", c.ContentController.TransitionQuestion)
	questionGroup.Post("/:id/feature", c.ContentController.FeatureQuestion)

	answerGroup := admin.Group("/answers")
	answerGroup.Get("/", c.ContentController.ListAnswers)
	answerGroup.Get("/:id", c.ContentController.GetAnswer)
	answerGroup.Post("/:id/status", c.ContentController.TransitionAnswer)
	answerGroup.Post("/:id/accept", c.ContentController.AcceptAnswer)

	commentGroup := admin.Group("/comments")
	commentGroup.Get("/", c.ContentController.ListComments)
	commentGroup.Get("/:id", c.ContentController.GetComment)
	commentGroup.Post("/:id/status", c.ContentController.TransitionComment)
	commentGroup.Delete("/:id", c.ContentController.DeleteComment)

	reportGroup := admin.Group("/reports")
	reportGroup.Get("/", c.ContentController.ListReports)
	reportGroup.Get("/:id", c.ContentController.GetReport)
	reportGroup.Post("/:id/status", c.ContentController.TransitionReport)

	threadGroup := admin.Group("/threads/:rootKind/:rootId")
	threadGroup.Get("/", c.ThreadController.GetThread)
	threadGroup.Post("/comments/:commentId/expand", c.ThreadController.ExpandComment)
	threadGroup.Post("/comments/:commentId/collapse", c.ThreadController.CollapseComment)
	threadGroup.Post("/comments/:commentId/retry", c.ThreadController.RetryComment)
	threadGroup.Delete("/comments/:commentId", c.ThreadController.DeleteComment)
	threadGroup.Delete("/", c.ThreadController.CloseThread)
}
