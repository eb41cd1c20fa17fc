package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/consultation-api/internal/service"
)

// ClientSessionHeader carries the browser tab or client instance issuing requests.
const ClientSessionHeader = "X-Client-Session"

const maxClientSessionLength = 128

// ClientSession tags the request context so superseded requests from the same client are dropped.
// Sessions are namespaced by the authenticated user when one is present.
func ClientSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(ClientSessionHeader))
		if session == "" || len(session) > maxClientSessionLength {
			c.Next()
			return
		}
		if claims := Claims(c); claims != nil {
			session = claims.UserID + "/" + session
		}
		c.Request = c.Request.WithContext(service.WithClientSession(c.Request.Context(), session))
		c.Next()
	}
}
