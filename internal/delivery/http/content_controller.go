package http

import (
	"errors"
	"strconv"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/moderation"
	"github.com/forumdesk/admin-api/internal/usecase"
	"github.com/forumdesk/admin-api/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type ContentController struct {
	ContentUsecase *usecase.ContentUsecase
	ThreadUsecase  *usecase.ThreadUsecase
	Log            *zap.Logger
	Config         *koanf.Koanf
}

func NewContentController(contentUsecase *usecase.ContentUsecase, threadUsecase *usecase.ThreadUsecase, zap *zap.Logger, koanf *koanf.Koanf) *ContentController {
	return &ContentController{
		ContentUsecase: contentUsecase,
		ThreadUsecase:  threadUsecase,
		Log:            zap,
		Config:         koanf,
	}
}

// sendError maps the domain error taxonomy onto HTTP statuses: validation
// 400, not found 404, rejected transition and unacknowledged cascade 409,
// anything else 500.
func sendError(ctx *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var transitionErr *model.TransitionError
	var confirmationErr *model.ConfirmationRequiredError

	switch {
	case errors.As(err, &validationErr):
		return util.SendErrorResponse(ctx, err)
	case errors.As(err, &notFoundErr):
		return util.SendErrorResponseNotFound(ctx, err)
	case errors.As(err, &transitionErr):
		return util.SendErrorResponseConflict(ctx, err)
	case errors.As(err, &confirmationErr):
		return util.SendErrorResponseConflict(ctx, err)
	default:
		return util.SendErrorResponseInternalServer(ctx, log, err)
	}
}

func readListQuery(ctx *fiber.Ctx) model.ListQuery {
	q := model.ListQuery{
		Page:       ctx.QueryInt("page", 1),
		PageSize:   ctx.QueryInt("pageSize", constant.DEFAULT_PAGE_SIZE),
		Search:     ctx.Query("search"),
		Status:     ctx.Query("status"),
		SortBy:     ctx.Query("sortBy"),
		SortDir:    ctx.Query("sortDir"),
		QuestionId: ctx.Query("questionId"),
	}
	if featured := ctx.Query("featured"); featured != "" {
		if v, err := strconv.ParseBool(featured); err == nil {
			q.Featured = &v
		}
	}
	return q
}

func (controller *ContentController) ListPosts(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.ListPosts(ctx.UserContext(), readListQuery(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) ListQuestions(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.ListQuestions(ctx.UserContext(), readListQuery(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) ListAnswers(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.ListAnswers(ctx.UserContext(), readListQuery(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) ListComments(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.ListComments(ctx.UserContext(), readListQuery(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) ListReports(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.ListReports(ctx.UserContext(), readListQuery(ctx))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) GetPost(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.GetPost(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) GetQuestion(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.GetQuestion(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) GetAnswer(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.GetAnswer(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) GetComment(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.GetComment(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) GetReport(ctx *fiber.Ctx) error {
	response, err := controller.ContentUsecase.GetReport(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller *ContentController) transition(ctx *fiber.Ctx, kind moderation.Kind) error {
	var payload model.StatusTransitionRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	err = controller.ContentUsecase.Transition(ctx.UserContext(), kind, ctx.Params("id"), payload)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *ContentController) TransitionPost(ctx *fiber.Ctx) error {
	return controller.transition(ctx, moderation.KindPost)
}

func (controller *ContentController) TransitionQuestion(ctx *fiber.Ctx) error {
	return controller.transition(ctx, moderation.KindQuestion)
}

func (controller *ContentController) TransitionAnswer(ctx *fiber.Ctx) error {
	return controller.transition(ctx, moderation.KindAnswer)
}

func (controller *ContentController) TransitionComment(ctx *fiber.Ctx) error {
	return controller.transition(ctx, moderation.KindComment)
}

func (controller *ContentController) TransitionReport(ctx *fiber.Ctx) error {
	return controller.transition(ctx, moderation.KindReport)
}

func (controller *ContentController) FeatureQuestion(ctx *fiber.Ctx) error {
	var payload model.QuestionFeatureRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	err = controller.ContentUsecase.FeatureQuestion(ctx.UserContext(), ctx.Params("id"), payload)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *ContentController) AcceptAnswer(ctx *fiber.Ctx) error {
	err := controller.ContentUsecase.AcceptAnswer(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller *ContentController) DeleteComment(ctx *fiber.Ctx) error {
	confirmed := ctx.QueryBool("confirmed", false)

	err := controller.ContentUsecase.DeleteComment(ctx.UserContext(), ctx.Params("id"), confirmed)
	if err != nil {
		return sendError(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
