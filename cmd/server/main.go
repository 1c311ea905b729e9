package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tutorsite/internal/api"
	"tutorsite/internal/config"
	"tutorsite/internal/model"
	"tutorsite/internal/ratelimit"
	"tutorsite/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

func main() {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(cfg.ParseLogLevel())

	if cfg.UsesDefaultJWTSecret() {
		logrus.Warn("JWT_SECRET is not set, using the development secret")
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	var store storage.Storage
	if s, err := storage.NewStorage(cfg); err != nil {
		logrus.WithError(err).Warn("storage unavailable, registration export disabled")
	} else {
		store = s
	}

	limiter, err := ratelimit.New(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise rate limiter")
		return
	}

	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, limiter)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := model.SeedAdmin(seedCtx, httpHandler.Auth(), cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed admin account")
	}
	cancel()

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r, err := api.NewEngine(cfg)
	if err != nil {
		logrus.WithError(err).Error("invalid TRUSTED_PROXIES")
		return
	}

	// 添加中间件
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware(cfg.CORSAllowOrigin))
	r.Use(gin.Recovery())

	httpHandler.RegisterRoutes(r)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logrus.WithField("host", serverHost).Info("服务器启动")
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Error("服务器启动失败")
	}
}

// RequestIDMiddleware 为每个请求分配请求 ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware(allowOrigin string) gin.HandlerFunc {
	if strings.TrimSpace(allowOrigin) == "" {
		allowOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		if allowOrigin != "*" {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   duration.String(),
			"size":       c.Writer.Size(),
			"client_ip":  c.ClientIP(),
		}).Info("http_request")
	}
}
