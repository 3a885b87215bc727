package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Tetsuya81/QuickLang/internal/auth"
)

// requireToken checks the Authorization bearer token against the configured hash.
// Without a configured hash every request passes.
func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.TokenHash == "" {
				return next(c)
			}

			token := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" || !auth.VerifyToken(token, s.opts.TokenHash) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="quicklang"`)
				return unauthorizedResponse(c)
			}
			return next(c)
		}
	}
}

func unauthorizedResponse(c echo.Context) error {
	if c == nil {
		return fmt.Errorf("authentication required")
	}
	return fail(c, http.StatusUnauthorized, "Authentication required", nil)
}
