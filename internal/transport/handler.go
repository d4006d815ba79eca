package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/captain-yun7/facefalcon-sub001/internal/config"
	apperrors "github.com/captain-yun7/facefalcon-sub001/internal/errors"
	"github.com/captain-yun7/facefalcon-sub001/internal/logger"
	"github.com/captain-yun7/facefalcon-sub001/internal/metrics"
	"github.com/captain-yun7/facefalcon-sub001/internal/monitoring"
	"github.com/captain-yun7/facefalcon-sub001/internal/router"
)

type DetectRequest struct {
	Image string `json:"image" binding:"required"`
}

type CompareRequest struct {
	SourceImage string `json:"sourceImage" binding:"required"`
	TargetImage string `json:"targetImage" binding:"required"`
	// Absent threshold defaults to 1
	SimilarityThreshold *float64 `json:"similarityThreshold,omitempty"`
}

type FindSimilarRequest struct {
	SourceImage  string   `json:"sourceImage" binding:"required"`
	TargetImages []string `json:"targetImages"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler wires the engine's HTTP contract: the three face
// operations plus the read-only monitoring surface.
func NewHandler(engine *router.HybridRouter, facade *monitoring.Facade, cfg *config.Config) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		faces := v1.Group("/faces")
		faces.POST("/detect", detectFaces(engine, cfg))
		faces.POST("/compare", compareFaces(engine, cfg))
		faces.POST("/find-similar", findSimilarFaces(engine, cfg))

		mon := v1.Group("/monitoring")
		mon.GET("/usage", usageToday(facade))
		mon.GET("/costs", costSummary(facade))
		mon.GET("/costs/aws", awsCosts(facade))
		mon.GET("/metrics/aws", awsMetrics(facade))
		mon.GET("/metrics/aws/list", awsMetricList(facade))
	}

	return r
}

func detectFaces(engine *router.HybridRouter, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req DetectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := engine.DetectFaces(ctx, req.Image)
		if err != nil {
			respondEngineError(c, "detect failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func compareFaces(engine *router.HybridRouter, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}
		threshold := 1.0
		if req.SimilarityThreshold != nil {
			threshold = *req.SimilarityThreshold
		}

		result, err := engine.CompareFaces(ctx, req.SourceImage, req.TargetImage, threshold)
		if err != nil {
			respondEngineError(c, "compare failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func findSimilarFaces(engine *router.HybridRouter, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req FindSimilarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		result, err := engine.FindSimilarFaces(ctx, req.SourceImage, req.TargetImages)
		if err != nil {
			respondEngineError(c, "find-similar failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func usageToday(facade *monitoring.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, facade.GetUsageToday())
	}
}

func costSummary(facade *monitoring.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, facade.GetCostSummary())
	}
}

func awsCosts(facade *monitoring.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
		if err != nil || days < 1 {
			respondError(c, http.StatusBadRequest, "invalid days parameter", err)
			return
		}
		costs, err := facade.GetRekognitionCosts(c.Request.Context(), days)
		if err != nil {
			respondError(c, http.StatusBadGateway, "aws cost query failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"costs": costs})
	}
}

func awsMetrics(facade *monitoring.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			respondError(c, http.StatusBadRequest, "name parameter is required", nil)
			return
		}
		hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
		if err != nil || hours < 1 {
			respondError(c, http.StatusBadRequest, "invalid hours parameter", err)
			return
		}
		points, err := facade.GetRekognitionMetrics(c.Request.Context(), name, hours)
		if err != nil {
			respondError(c, http.StatusBadGateway, "aws metric query failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"metric": name, "datapoints": points})
	}
}

func awsMetricList(facade *monitoring.Facade) gin.HandlerFunc {
	return func(c *gin.Context) {
		names, err := facade.ListRekognitionMetrics(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusBadGateway, "aws metric listing failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"metrics": names})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// respondEngineError maps the engine error taxonomy onto HTTP status
// codes: invalid input 400, both providers down 502, schema drift and
// everything else 500, timeout 504.
func respondEngineError(c *gin.Context, message string, err error) {
	code := apperrors.GetStatusCode(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		code = http.StatusTooManyRequests
	}
	respondError(c, code, message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	body := ErrorResponse{Error: http.StatusText(code)}
	if err != nil {
		body.Message = fmt.Sprintf("%s: %v", message, err)
	} else {
		body.Message = message
	}
	c.AbortWithStatusJSON(code, body)
}
