package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"bond-registry/internal/metrics"
	"bond-registry/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	bonds    service.BondService
	users    service.UserService
	exports  service.ExportService
	tokens   *TokenIssuer
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func NewHandler(
	bonds service.BondService,
	users service.UserService,
	exports service.ExportService,
	tokens *TokenIssuer,
	logger *logrus.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		bonds:    bonds,
		users:    users,
		exports:  exports,
		tokens:   tokens,
		logger:   logger,
		metrics:  m,
		gatherer: gatherer,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), h.accessLogMiddleware(), corsMiddleware())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))

	router.POST("/register/", h.register)
	router.POST("/login/", h.login)

	bonds := router.Group("/bonds", h.RequireAuth())
	{
		bonds.GET("/", h.listBonds)
		bonds.POST("/", h.createBond)
		bonds.POST("/export/", h.exportBonds)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)

		entry := h.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    elapsed.String(),
			"request_id": c.GetString(requestIDKey),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"op":         op,
		"request_id": c.GetString(requestIDKey),
	}).Error("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
