package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tutorsite/internal/auth"
	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/converter"
	"tutorsite/internal/entity/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *HTTPHandler) Register(c *gin.Context) {
	var req dto.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid registration payload")
		return
	}

	// 自助注册只能选择普通用户或访客，管理员账号需要管理员操作
	if req.Role != nil && *req.Role == common.RoleAdmin && !CurrentUser(c).IsAdmin() {
		Forbidden(c, "admin privileges required to create admin accounts")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Register(ctx, auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		logrus.WithError(err).WithField("code", auth.Code(err)).Warn("registration rejected")
		AuthErrorResponse(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role.String()}).Info("user registered")
	c.JSON(http.StatusCreated, dto.RegisterResponse{User: user})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req dto.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid login payload")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).WithField("code", auth.Code(err)).Warn("login attempt failed")
		AuthErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		User: dto.SessionUser{
			UserSummary: result.User,
			Token:       result.Token,
			ExpiresAt:   result.ExpiresAt,
		},
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, dto.UserDetailResponse{User: converter.UserToSummary(dbUser)})
}
