package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-market/internal/apperr"
	"course-market/internal/domain"
	"course-market/internal/repository"
)

const tokenHeader = "access_token"

var (
	errMissingToken  = errors.New("access token header missing")
	errRoleMismatch  = errors.New("token role does not match route")
	errUnknownRole   = errors.New("no accounts registered for role")
	errPrincipalGone = errors.New("token principal no longer exists")
)

// guardedHandlerFunc receives the id of the principal the token belongs to.
type guardedHandlerFunc func(c *gin.Context, principalID int64)

// guard admits requests carrying a valid token of the given role whose
// principal still exists. Every rejection looks the same to the client.
func (h *Handler) guard(role domain.Role, next guardedHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(tokenHeader)
		if raw == "" {
			fail(c, apperr.InvalidToken(errMissingToken))
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			fail(c, apperr.InvalidToken(err))
			return
		}
		if claims.Role != role {
			fail(c, apperr.InvalidToken(errRoleMismatch))
			return
		}

		accounts, ok := h.principals[role]
		if !ok {
			fail(c, apperr.InvalidToken(errUnknownRole))
			return
		}
		if _, err := accounts.GetByID(c.Request.Context(), claims.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				fail(c, apperr.InvalidToken(errPrincipalGone))
				return
			}
			fail(c, err)
			return
		}

		next(c, claims.ID)
	}
}
