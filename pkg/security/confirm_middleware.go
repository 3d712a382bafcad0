package security

import (
	"errors"
	"net/http"
	"strings"

	"splitters/internal/rate_limiter"
	custom_error "splitters/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PasswordHeader carries the admin password on gated requests.
const PasswordHeader = "X-Admin-Password"

// RequireConfirmation lets a request through when it carries a valid confirmation token or
// the admin password; anything else is rejected before the handler runs. Password attempts
// count against rl, the same limiter that guards /auth/confirm.
func RequireConfirmation(gate *Gate, tokens *TokenIssuer, rl *rate_limiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearer := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "); bearer != "" && tokens != nil {
			if err := tokens.Verify(bearer); err == nil {
				c.Next()
				return
			}
		}

		if rl != nil && !rl.IsAllowed(clientKey(c)) {
			tooManyAttempts(c, rl)
			return
		}

		err := gate.Confirm(c.Request.Context(), c.GetHeader(PasswordHeader), func() error {
			c.Next()
			return nil
		})
		if errors.Is(err, custom_error.ErrIncorrectPassword) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": custom_error.IncorrectPasswordMessage})
			return
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not verify password", "details": err.Error()})
			return
		}
	}
}
