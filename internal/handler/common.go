package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのHTTPErrorをそのまま返す。5xxは原因をログに残す
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	ctx := c.Request().Context()

	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Int("status", he.Status),
			}
			if he.Cause != nil {
				attrs = append(attrs, slog.String("error", he.Cause.Error()))
			}
			slog.ErrorContext(ctx, he.Message, attrs...)
		}
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	slog.ErrorContext(ctx, "unhandled error", slog.String("path", c.Path()), slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	p, ok := middleware.PrincipalFrom(c)
	return p.UserID, ok
}

func unauthorizedJSON(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// page / limit。未指定ならデフォルト
func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ログイン必須のグループ
func protectedGroup(e *echo.Echo, prefix string, jwtSecret string, userRepo repository.UserRepository) *echo.Group {
	g := e.Group(prefix)
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.TokenVersionGuard(userRepo))
	return g
}
