package middleware

import (
	"net/http"
	"strings"

	"storefront/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// アクセストークンから取り出した呼び出し元
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// AuthJWTが入れたPrincipalを返す
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok && p.UserID > 0
}

// subは数値で発行している
type accessClaims struct {
	Sub  int64  `json:"sub"`
	Role string `json:"role"`
	TV   int    `json:"tv"`
	jwt.RegisteredClaims
}

// Authorization: Bearer <jwt> を検証する（HS256のみ）
func AuthJWT(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return key, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c)
			}

			var claims accessClaims
			token, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !token.Valid {
				return unauthorized(c)
			}
			if claims.Sub <= 0 || claims.Role == "" || claims.TV < 0 {
				return unauthorized(c)
			}

			c.Set(principalKey, Principal{
				UserID:       claims.Sub,
				Role:         model.Role(claims.Role),
				TokenVersion: claims.TV,
			})
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

func forbidden(c echo.Context, msg string) error {
	return c.JSON(http.StatusForbidden, errorResponse{Error: msg})
}
