package middleware

import (
	"log/slog"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// パスワード変更などでtoken_versionが上がったら古いアクセストークンは401。
// 停止中のユーザーは403。
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c)
			}

			ctx := c.Request().Context()
			user, err := users.FindByID(ctx, p.UserID)
			if err != nil {
				slog.WarnContext(ctx, "token version lookup failed",
					slog.Int64("user_id", p.UserID), slog.String("error", err.Error()))
				return unauthorized(c)
			}
			if user == nil {
				return unauthorized(c)
			}

			switch {
			case !user.IsActive:
				return forbidden(c, "user is inactive")
			case user.TokenVersion != p.TokenVersion:
				return unauthorized(c)
			}
			return next(c)
		}
	}
}
