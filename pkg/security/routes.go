package security

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"splitters/internal/rate_limiter"
	custom_error "splitters/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ConfirmHandler struct {
	gate        *Gate
	tokens      *TokenIssuer
	rateLimiter *rate_limiter.RateLimiter
}

func NewConfirmHandler(gate *Gate, tokens *TokenIssuer, rl *rate_limiter.RateLimiter) *ConfirmHandler {
	return &ConfirmHandler{
		gate:        gate,
		tokens:      tokens,
		rateLimiter: rl,
	}
}

func (h *ConfirmHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/auth/confirm", h.Confirm)
}

// Confirm exchanges the admin password for a short-lived delete confirmation token.
func (h *ConfirmHandler) Confirm(c *gin.Context) {
	clientKey := clientKey(c)

	if !h.rateLimiter.IsAllowed(clientKey) {
		tooManyAttempts(c, h.rateLimiter)
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	var token string
	var expiresAt time.Time
	err := h.gate.Confirm(c.Request.Context(), req.Password, func() (err error) {
		token, expiresAt, err = h.tokens.Issue(clientKey)
		return err
	})
	if errors.Is(err, custom_error.ErrIncorrectPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     custom_error.IncorrectPasswordMessage,
			"remaining": h.rateLimiter.GetRemainingRequests(clientKey),
		})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": expiresAt.Format(time.RFC3339)})
}

// clientKey identifies the caller for rate limiting. Clients behind a private address share
// it with others, so the user agent is mixed in.
func clientKey(c *gin.Context) string {
	clientIP := c.GetHeader("X-Forwarded-For")
	if clientIP == "" {
		clientIP = c.GetHeader("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = c.ClientIP()
	}
	if first, _, found := strings.Cut(clientIP, ","); found {
		clientIP = first
	}
	clientIP = strings.TrimSpace(clientIP)

	if ip := net.ParseIP(clientIP); ip == nil || ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return clientIP + ":" + c.GetHeader("User-Agent")
	}

	return clientIP
}

func tooManyAttempts(c *gin.Context, rl *rate_limiter.RateLimiter) {
	resetAt := time.Now().Add(rl.Window()).Format(time.RFC3339)
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit()))
	c.Header("X-RateLimit-Remaining", "0")
	c.Header("X-RateLimit-Reset", resetAt)
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":    "Too many password attempts. Try again later.",
		"reset_at": resetAt,
	})
}
