package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tutorsite/internal/auth"
	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/converter"
	"tutorsite/internal/entity/db"
	"tutorsite/internal/entity/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.repo.ListUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	c.JSON(http.StatusOK, dto.UserListResponse{Users: converter.UsersToSummaries(users)})
}

func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req dto.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Register(ctx, auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   req.Status,
	})
	if err != nil {
		logrus.WithError(err).WithField("code", auth.Code(err)).Warn("admin user creation rejected")
		AuthErrorResponse(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"created_by": CurrentUser(c).ID,
	}).Info("user created by admin")
	c.JSON(http.StatusCreated, dto.UserDetailResponse{User: user})
}

func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	requestUser := CurrentUser(c)

	id, ok := parseID(c, "invalid user id")
	if !ok {
		return
	}

	var req dto.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for update")
		InternalError(c, "failed to update user")
		return
	}

	var updates db.UserUpdates

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			MissingField(c, "name")
			return
		}
		updates.Name = &name
	}

	if req.Password != nil {
		hash, err := h.auth.HashPassword(*req.Password)
		if err != nil {
			AuthErrorResponse(c, err)
			return
		}
		updates.PasswordHash = &hash
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			BadRequest(c, ErrCodeInvalidRole, auth.ErrInvalidRole.Error())
			return
		}
		// 管理员不能取消自己的管理员身份
		if dbUser.ID == requestUser.ID && *req.Role != common.RoleAdmin {
			BadRequest(c, ErrCodeInvalidField, "cannot change your own role")
			return
		}
		updates.Role = req.Role
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			BadRequest(c, ErrCodeInvalidStatus, auth.ErrInvalidStatus.Error())
			return
		}
		if dbUser.ID == requestUser.ID && *req.Status != common.StatusActive {
			BadRequest(c, ErrCodeInvalidField, "cannot deactivate your own account")
			return
		}
		updates.Status = req.Status
	}

	if updates.IsEmpty() {
		c.JSON(http.StatusOK, dto.UserDetailResponse{User: converter.UserToSummary(dbUser)})
		return
	}

	if err := h.repo.UpdateUser(ctx, dbUser.ID, updates); err != nil {
		logrus.WithError(err).Error("failed to update user")
		InternalError(c, "failed to update user")
		return
	}

	updated, err := h.repo.GetUserByID(ctx, dbUser.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to reload user after update")
		InternalError(c, "failed to load updated user")
		return
	}

	c.JSON(http.StatusOK, dto.UserDetailResponse{User: converter.UserToSummary(updated)})
}

func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	requestUser := CurrentUser(c)

	id, ok := parseID(c, "invalid user id")
	if !ok {
		return
	}

	if requestUser.ID == id {
		BadRequest(c, ErrCodeCannotDeleteSelf, "cannot delete current user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to delete user")
		InternalError(c, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// parseID 解析路径中的数字 ID，失败时直接写入 400 响应
func parseID(c *gin.Context, message string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, message)
		return 0, false
	}
	return uint(id), true
}
