package api

import (
	"context"
	"net/http"
	"time"

	"tutorsite/internal/entity/converter"
	"tutorsite/internal/entity/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dashboard 管理后台首页：用户列表与统计
func (h *HTTPHandler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, err := h.repo.ListUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list users for dashboard")
		InternalError(c, "failed to load dashboard")
		return
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := h.repo.UserStats(ctx, startOfDay)
	if err != nil {
		logrus.WithError(err).Error("failed to compute user stats")
		InternalError(c, "failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Users: converter.UsersToSummaries(users),
		Stats: dto.DashboardStats{
			TotalUsers:    stats.Total,
			ActiveUsers:   stats.Active,
			GuestUsers:    stats.Guests,
			NewUsersToday: stats.NewSince,
		},
	})
}
