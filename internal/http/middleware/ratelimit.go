package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/licitabrasil/internal/ratelimit"
)

const (
	GeneralLimitMessage = "Muitas requisições. Tente novamente em 1 minuto."
	AuthLimitMessage    = "Muitas tentativas. Aguarde 5 minutos."
)

// RateLimit keys callers by client IP and answers 429 with Retry-After once
// the store denies them.
func RateLimit(store *ratelimit.Store, message string) gin.HandlerFunc {
	limit := strconv.Itoa(store.Limit())
	window := strconv.Itoa(int(store.Window().Seconds()))
	return func(c *gin.Context) {
		c.Header("RateLimit-Limit", limit)
		c.Header("RateLimit-Policy", limit+";w="+window)

		dec := store.Decide(c.ClientIP())
		if !dec.Allowed {
			retry := int(math.Ceil(dec.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
