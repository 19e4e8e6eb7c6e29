package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/dinerozz/nudge-engine/internal/model/response/wrapper"
	"github.com/dinerozz/nudge-engine/pkg/utils"
	"github.com/dinerozz/nudge-engine/pkg/zapctx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserIDKey    = "user_id"
	UserIDHeader = "X-User-ID"
)

// Identity resolves the calling user. With a secret it requires a bearer
// token or token cookie signed with it; without one it trusts X-User-ID,
// which is only meant for local runs.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID string
		if secret == "" {
			userID = strings.TrimSpace(c.GetHeader(UserIDHeader))
		} else {
			tokenString := bearerToken(c)
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Missing authentication token", Success: false})
				return
			}

			claims, err := utils.ValidateToken(secret, tokenString)
			if err != nil {
				zapctx.Debug(c.Request.Context(), "rejected token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Invalid authentication token", Success: false})
				return
			}
			userID = utils.SubjectFromClaims(claims)
		}

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "User identity is required", Success: false})
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(zapctx.WithFields(c.Request.Context(), zap.String("user_id", userID)))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if token, err := c.Cookie("token"); err == nil {
		return token
	}
	return ""
}

// RequestLogger attaches logger to the request context and logs each
// request once it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		ctx := zapctx.WithLogger(c.Request.Context(), logger.With(
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			zapctx.Error(c.Request.Context(), "request failed", fields...)
		case status >= http.StatusBadRequest:
			zapctx.Warn(c.Request.Context(), "request rejected", fields...)
		default:
			zapctx.Debug(c.Request.Context(), "request served", fields...)
		}
	}
}

// CORS allows local development origins and the configured base URL.
func CORS(baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:")) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else if origin != "" && origin == baseURL {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// UserID returns the identity set by Identity.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
