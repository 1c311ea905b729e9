package api

import (
	"errors"
	"net/http"
	"strings"

	"tutorsite/internal/auth"
	"tutorsite/internal/config"
	"tutorsite/internal/model"
	"tutorsite/internal/ratelimit"
	"tutorsite/internal/service"
	"tutorsite/internal/storage"

	"github.com/gin-gonic/gin"
)

// exportFilesPrefix 本地存储导出文件的下载路径
const exportFilesPrefix = "/api/exports/files/"

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg     config.Config
	repo    model.Repository
	storage storage.Storage
	limiter ratelimit.Limiter

	// 服务层
	auth          *auth.Service
	registrations *service.RegistrationService
}

// NewHTTPHandler 创建 HTTP 处理器实例，store 与 limiter 可以为 nil
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, limiter ratelimit.Limiter) (*HTTPHandler, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		return nil, err
	}
	authSvc, err := auth.NewService(repo, auth.NewBcryptHasher(cfg.PasswordHashCost), tokens)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:           cfg,
		repo:          repo,
		storage:       store,
		limiter:       limiter,
		auth:          authSvc,
		registrations: service.NewRegistrationService(repo, store),
	}, nil
}

// Auth 返回认证服务，供启动时的管理员种子使用
func (h *HTTPHandler) Auth() *auth.Service {
	return h.auth
}

// NewEngine 创建 gin 引擎，仅信任配置中的反向代理，其余请求以连接地址作为客户端 IP
func NewEngine(cfg config.Config) (*gin.Engine, error) {
	r := gin.New()
	var proxies []string
	for _, p := range cfg.TrustedProxies {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			proxies = append(proxies, trimmed)
		}
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterRoutes 挂载全部 API 路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	apiGroup := r.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.RateLimit(), h.OptionalAuth(), h.Register)
	authGroup.POST("/login", h.RateLimit(), h.Login)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)

	apiGroup.POST("/registrations", h.RateLimit(), h.CreateRegistration)

	admin := apiGroup.Group("")
	admin.Use(h.AuthMiddleware(), h.RequireAdmin())

	admin.GET("/dashboard", h.Dashboard)

	userAdmin := admin.Group("/users")
	userAdmin.GET("", h.ListUsers)
	userAdmin.POST("", h.CreateUser)
	userAdmin.PATCH("/:id", h.UpdateUser)
	userAdmin.DELETE("/:id", h.DeleteUser)

	registrationAdmin := admin.Group("/registrations")
	registrationAdmin.GET("", h.ListRegistrations)
	registrationAdmin.POST("/export", h.ExportRegistrations)
	registrationAdmin.GET("/:id", h.GetRegistration)
	registrationAdmin.PATCH("/:id", h.UpdateRegistration)
	registrationAdmin.DELETE("/:id", h.DeleteRegistration)

	admin.GET("/exports/files/*key", h.DownloadExport)
}

// exportURL 本地存储返回下载地址，远端存储由调用方按对象键自行访问
func (h *HTTPHandler) exportURL(key string) string {
	if _, ok := h.storage.(storage.LocalFileResolver); !ok {
		return ""
	}
	trimmed := strings.TrimLeft(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return ""
	}
	return exportFilesPrefix + trimmed
}
