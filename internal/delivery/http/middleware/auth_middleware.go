package middleware

import (
	"errors"

	"github.com/forumdesk/admin-api/internal/constant"
	"github.com/forumdesk/admin-api/internal/model"
	"github.com/forumdesk/admin-api/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const RoleModerator = "moderator"

type AuthMiddleware struct {
	App    *fiber.App
	Log    *zap.Logger
	Config *koanf.Koanf
}

func NewAuthMiddleware(app *fiber.App, zap *zap.Logger, koanf *koanf.Koanf) *AuthMiddleware {
	return &AuthMiddleware{
		App:    app,
		Log:    zap,
		Config: koanf,
	}
}

// ModeratorRoute verifies the bearer token and requires the moderator role.
// Token issuance is the identity service's job; only the boundary check lives
// here.
func (middleware *AuthMiddleware) ModeratorRoute() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		var validationErr *model.ValidationError

		accessToken := ctx.Get("Authorization")
		userId, role, err := util.ValidateAccessToken(accessToken, middleware.Log, middleware.Config.String("JWT_SECRET_KEY"))
		if err != nil {
			if errors.As(err, &validationErr) {
				return util.SendErrorResponseUnauthorized(ctx, err)
			}

			return util.SendErrorResponseInternalServer(ctx, middleware.Log, err)
		}

		if role != RoleModerator {
			return util.SendErrorResponseForbidden(ctx, &model.ValidationError{
				Code:    constant.ERR_UNAUTHORIZED_ERROR,
				Message: "Moderator role is required",
				Param:   "accessToken",
			})
		}

		ctx.Locals("userId", userId)
		ctx.Locals("role", role)

		return ctx.Next()
	}
}
