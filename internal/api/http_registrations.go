package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"tutorsite/internal/entity/converter"
	"tutorsite/internal/entity/dto"
	"tutorsite/internal/service"
	"tutorsite/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeRegistrationError 将报名服务错误写成统一响应
func writeRegistrationError(c *gin.Context, err error, action string) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeInvalidField, validation.Error(), gin.H{"field": validation.Field})
	case errors.Is(err, service.ErrRegistrationExists):
		Conflict(c, ErrCodeRegistrationExists, err.Error())
	case errors.Is(err, service.ErrRegistrationNotFound):
		NotFound(c, ErrCodeRegistrationNotFound, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		ServiceUnavailable(c, err.Error())
	default:
		logrus.WithError(err).Error("failed to " + action)
		InternalError(c, "failed to "+action)
	}
}

// CreateRegistration 公开的报名表单提交
func (h *HTTPHandler) CreateRegistration(c *gin.Context) {
	var req dto.RegistrationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.registrations.Create(ctx, req)
	if err != nil {
		writeRegistrationError(c, err, "save registration")
		return
	}

	logrus.WithField("registration_id", record.ID).Info("registration received")
	c.JSON(http.StatusCreated, dto.RegistrationDetailResponse{Registration: converter.RegistrationToDTO(record)})
}

func (h *HTTPHandler) ListRegistrations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.registrations.List(ctx)
	if err != nil {
		writeRegistrationError(c, err, "load registrations")
		return
	}

	c.JSON(http.StatusOK, dto.RegistrationListResponse{Registrations: converter.RegistrationsToDTOs(items)})
}

func (h *HTTPHandler) GetRegistration(c *gin.Context) {
	id, ok := parseID(c, "invalid registration id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.registrations.Get(ctx, id)
	if err != nil {
		writeRegistrationError(c, err, "load registration")
		return
	}

	c.JSON(http.StatusOK, dto.RegistrationDetailResponse{Registration: converter.RegistrationToDTO(record)})
}

func (h *HTTPHandler) UpdateRegistration(c *gin.Context) {
	id, ok := parseID(c, "invalid registration id")
	if !ok {
		return
	}

	var req dto.RegistrationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.registrations.Update(ctx, id, req)
	if err != nil {
		writeRegistrationError(c, err, "update registration")
		return
	}

	c.JSON(http.StatusOK, dto.RegistrationDetailResponse{Registration: converter.RegistrationToDTO(record)})
}

func (h *HTTPHandler) DeleteRegistration(c *gin.Context) {
	id, ok := parseID(c, "invalid registration id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registrations.Delete(ctx, id); err != nil {
		writeRegistrationError(c, err, "delete registration")
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportRegistrations 导出全部报名记录为 CSV 并写入对象存储
func (h *HTTPHandler) ExportRegistrations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result, err := h.registrations.Export(ctx)
	if err != nil {
		writeRegistrationError(c, err, "export registrations")
		return
	}

	c.JSON(http.StatusOK, dto.RegistrationExportResponse{
		Key:   result.Key,
		Count: result.Count,
		URL:   h.exportURL(result.Key),
	})
}

// DownloadExport 下载本地存储中的导出文件
func (h *HTTPHandler) DownloadExport(c *gin.Context) {
	resolver, ok := h.storage.(storage.LocalFileResolver)
	if !ok {
		NotFound(c, ErrCodeNotFound, "exports are not served from this storage backend")
		return
	}

	key := strings.TrimLeft(c.Param("key"), "/")
	if !strings.HasPrefix(key, "exports/") {
		NotFound(c, ErrCodeNotFound, "export not found")
		return
	}

	path, err := resolver.ResolvePath(key)
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid export key")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		NotFound(c, ErrCodeNotFound, "export not found")
		return
	}

	c.FileAttachment(path, info.Name())
}
