package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrohub/marketplace/internal/domain"
)

const (
	actorContextKey = "actor"

	headerRequestID = "X-Request-Id"
	headerUserID    = "X-User-Id"
	headerUserRole  = "X-User-Role"
	headerCompanyID = "X-Company-Id"
)

// RequestID tags every request with an id for log correlation, honoring
// one already set by the gateway.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Writer.Header().Set(headerRequestID, requestID)
		c.Next()
	}
}

// RequireActor builds the domain.Actor from identity headers asserted by
// the upstream gateway. Token verification itself happens there, not here.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader(headerUserID), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		role, err := domain.ToRole(c.GetHeader(headerUserRole))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		actor := domain.Actor{UserID: userID, Role: role}

		if raw := c.GetHeader(headerCompanyID); raw != "" {
			companyID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || companyID <= 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
				return
			}
			actor.CompanyID = &companyID
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	actor, _ := c.MustGet(actorContextKey).(domain.Actor)
	return actor
}
