package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ivanoskov/kripto_bot/internal/apperrors"
	"github.com/ivanoskov/kripto_bot/internal/repository"
)

const (
	loggerKey     = "dashboard.logger"
	adminIDKey    = "dashboard.admin_id"
	requestHeader = "X-Request-ID"
)

// StructuredLoggingMiddleware кладёт в контекст логгер запроса. Request id
// берётся из X-Request-ID, если прокси прислал корректный uuid.
func StructuredLoggingMiddleware(baseLogger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(requestHeader, requestID)

		c.Set(loggerKey, baseLogger.With(
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		GetLoggerFromContext(c).Log(c.Request.Context(), level, "Request completed",
			slog.Int("status", status),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// GetLoggerFromContext логгер запроса; после RequireAdmin в нём есть admin_id
func GetLoggerFromContext(c *gin.Context) *slog.Logger {
	logger := slog.Default()
	if l, ok := c.Get(loggerKey); ok {
		if requestLogger, ok := l.(*slog.Logger); ok {
			logger = requestLogger
		}
	}
	if adminID := c.GetString(adminIDKey); adminID != "" {
		logger = logger.With(slog.String("admin_id", adminID))
	}
	return logger
}

// RequireAdmin пропускает только сессии Supabase, чей пользователь есть в admins
func RequireAdmin(auth repository.AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		userID, err := auth.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				logger.Error("Session check failed", slog.Any("error", err))
			}
			abortUnauthorized(c)
			return
		}

		isAdmin, err := auth.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Admin check failed", slog.String("user_id", userID), slog.Any("error", err))
			abortUnauthorized(c)
			return
		}
		if !isAdmin {
			logger.Warn("Non-admin access attempt", slog.String("user_id", userID))
			abortUnauthorized(c)
			return
		}

		c.Set(adminIDKey, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
