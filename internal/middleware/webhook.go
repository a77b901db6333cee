package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"calendar-assistant/pkg/response"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// TelegramWebhookAuth rejects webhook posts that do not carry the secret
// token registered with setWebhook. An empty configured secret disables
// the check, which is the case when the webhook was registered without one.
func (m Middleware) TelegramWebhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.webhookSecret == "" {
			c.Next()
			return
		}

		got := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(m.webhookSecret)) != 1 {
			m.l.Warnf(c.Request.Context(), "middleware: webhook post with missing or wrong secret token from %s", c.ClientIP())
			response.Unauthorized(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
