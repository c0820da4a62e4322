package http

import (
	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/usecase"
	"github.com/forumdesk/admin-api/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type ThreadController struct {
	ThreadUsecase  *usecase.ThreadUsecase
	ContentUsecase *usecase.ContentUsecase
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewThreadController(threadUsecase *usecase.ThreadUsecase, contentUsecase *usecase.ContentUsecase, zap *zap.Logger, koanf *koanf.Koanf) *ThreadController {
	return &ThreadController{
		ThreadUsecase:  threadUsecase,
		ContentUsecase: contentUsecase,
		Log:            zap,
		Config:         koanf,
	}
}

// GetThread loads the next top-level window of the thread and returns the
// whole tree snapshot. Repeated calls grow the loaded window cumulatively.
func (controller *ThreadController) GetThread(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", constant.DEFAULT_PAGE_SIZE)

	view, err := controller.ThreadUsecase.LoadTopLevel(ctx.UserContext(), ctx.Params("rootKind"), ctx.Params("rootId"), limit)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, view)
}

func (controller *ThreadController) ExpandComment(ctx *fiber.Ctx) error {
	view, err := controller.ThreadUsecase.Expand(ctx.UserContext(), ctx.Params("rootKind"), ctx.Params("rootId"), ctx.Params("commentId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, view)
}

func (controller *ThreadController) CollapseComment(ctx *fiber.Ctx) error {
	view, err := controller.ThreadUsecase.Collapse(ctx.Params("rootKind"), ctx.Params("rootId"), ctx.Params("commentId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, view)
}

func (controller *ThreadController) RetryComment(ctx *fiber.Ctx) error {
	view, err := controller.ThreadUsecase.Retry(ctx.UserContext(), ctx.Params("rootKind"), ctx.Params("rootId"), ctx.Params("commentId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, view)
}

// DeleteComment deletes through the moderation path, then reflects the
// committed delete into the open store so the returned snapshot is current.
func (controller *ThreadController) DeleteComment(ctx *fiber.Ctx) error {
	confirmed := ctx.QueryBool("confirmed", false)
	commentIdParam := ctx.Params("commentId")

	err := controller.ContentUsecase.DeleteComment(ctx.UserContext(), commentIdParam, confirmed)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	if commentId, parseErr := uuid.Parse(commentIdParam); parseErr == nil {
		controller.ThreadUsecase.RemoveComment(ctx.Params("rootKind"), ctx.Params("rootId"), commentId)
	}

	return util.SendSuccessResponseNoData(ctx)
}

// CloseThread is the detail view unmount: the store is discarded and late
// fetch results have nowhere to land.
func (controller *ThreadController) CloseThread(ctx *fiber.Ctx) error {
	err := controller.ThreadUsecase.CloseThread(ctx.Params("rootKind"), ctx.Params("rootId"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
