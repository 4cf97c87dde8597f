package middleware

import "github.com/labstack/echo/v4"

// AuthJWTの後ろに置く
func AdminRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c)
			}
			if !p.IsAdmin() {
				return forbidden(c, "admin only")
			}
			return next(c)
		}
	}
}
