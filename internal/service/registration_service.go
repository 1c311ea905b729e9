package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tutorsite/internal/auth"
	"tutorsite/internal/entity/db"
	"tutorsite/internal/entity/dto"
	"tutorsite/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRegistrationExists   = errors.New("a registration with this email already exists")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrStorageUnavailable   = errors.New("export storage is not configured")
)

// ValidationError reports a missing or malformed sign-up field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RegistrationStore is the persistence the registration service needs.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, registration *db.Registration) error
	GetRegistration(ctx context.Context, id uint) (*db.Registration, error)
	UpdateRegistration(ctx context.Context, id uint, updates db.RegistrationUpdates) error
	DeleteRegistration(ctx context.Context, id uint) error
	ListRegistrations(ctx context.Context) ([]db.Registration, error)
}

// ExportResult describes a stored CSV snapshot.
type ExportResult struct {
	Key   string
	Count int
}

// RegistrationService 报名记录服务，负责校验、持久化与导出
type RegistrationService struct {
	repo    RegistrationStore
	storage storage.Storage
	now     func() time.Time
}

// NewRegistrationService 创建报名服务实例，store 为 nil 时导出不可用
func NewRegistrationService(repo RegistrationStore, store storage.Storage) *RegistrationService {
	return &RegistrationService{repo: repo, storage: store, now: time.Now}
}

// exportColumns 导出列顺序
var exportColumns = []string{
	"id", "student_name", "parent_name", "email", "phone", "selected_program",
	"grade", "school_name", "address", "district", "city", "created_at",
}

// Create validates a public sign-up and stores it.
func (s *RegistrationService) Create(ctx context.Context, req dto.RegistrationCreateRequest) (*db.Registration, error) {
	record := &db.Registration{
		StudentName:     strings.TrimSpace(req.StudentName),
		ParentName:      strings.TrimSpace(req.ParentName),
		Email:           auth.NormalizeEmail(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		SelectedProgram: strings.TrimSpace(req.SelectedProgram),
		Grade:           strings.TrimSpace(req.Grade),
		SchoolName:      strings.TrimSpace(req.SchoolName),
		Address:         strings.TrimSpace(req.Address),
		District:        strings.TrimSpace(req.District),
		City:            strings.TrimSpace(req.City),
	}

	required := []struct {
		field string
		value string
	}{
		{"student_name", record.StudentName},
		{"parent_name", record.ParentName},
		{"email", record.Email},
		{"phone", record.Phone},
		{"selected_program", record.SelectedProgram},
		{"grade", record.Grade},
		{"school_name", record.SchoolName},
		{"address", record.Address},
		{"district", record.District},
		{"city", record.City},
	}
	for _, item := range required {
		if item.value == "" {
			return nil, &ValidationError{Field: item.field, Message: "is required"}
		}
	}
	if !auth.ValidEmail(record.Email) {
		return nil, &ValidationError{Field: "email", Message: "is not a valid email address"}
	}

	if err := s.repo.CreateRegistration(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRegistrationExists
		}
		return nil, err
	}
	return record, nil
}

// Get loads one sign-up.
func (s *RegistrationService) Get(ctx context.Context, id uint) (*db.Registration, error) {
	record, err := s.repo.GetRegistration(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return record, nil
}

// List returns all sign-ups, newest first.
func (s *RegistrationService) List(ctx context.Context) ([]db.Registration, error) {
	return s.repo.ListRegistrations(ctx)
}

// Update applies a partial edit. Provided fields are trimmed and must not be blank.
func (s *RegistrationService) Update(ctx context.Context, id uint, req dto.RegistrationUpdateRequest) (*db.Registration, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var updates db.RegistrationUpdates
	fields := []struct {
		name string
		in   *string
		out  **string
	}{
		{"student_name", req.StudentName, &updates.StudentName},
		{"parent_name", req.ParentName, &updates.ParentName},
		{"email", req.Email, &updates.Email},
		{"phone", req.Phone, &updates.Phone},
		{"selected_program", req.SelectedProgram, &updates.SelectedProgram},
		{"grade", req.Grade, &updates.Grade},
		{"school_name", req.SchoolName, &updates.SchoolName},
		{"address", req.Address, &updates.Address},
		{"district", req.District, &updates.District},
		{"city", req.City, &updates.City},
	}
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		value := strings.TrimSpace(*f.in)
		if f.name == "email" {
			value = auth.NormalizeEmail(value)
		}
		if value == "" {
			return nil, &ValidationError{Field: f.name, Message: "must not be empty"}
		}
		if f.name == "email" && !auth.ValidEmail(value) {
			return nil, &ValidationError{Field: "email", Message: "is not a valid email address"}
		}
		*f.out = &value
	}

	if err := s.repo.UpdateRegistration(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRegistrationExists
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a sign-up.
func (s *RegistrationService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.DeleteRegistration(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRegistrationNotFound
		}
		return err
	}
	return nil
}

// Export writes every sign-up as CSV to the configured storage. The object
// name carries a digest of the content, so re-exporting unchanged data on the
// same day resolves to the existing object instead of uploading again.
func (s *RegistrationService) Export(ctx context.Context) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	items, err := s.repo.ListRegistrations(ctx)
	if err != nil {
		return nil, err
	}

	data, err := encodeRegistrationsCSV(items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key, err := s.storage.Save(ctx, data, storage.SaveOptions{
		Category:    "exports",
		BaseName:     exportBaseName(now, data),
		Extension:    "csv",
		ContentType:  "text/csv; charset=utf-8",
		SkipIfExists: true,
	})
	if err != nil {
		logrus.WithError(err).Error("failed to store registrations export")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"key": key, "count": len(items)}).Info("registrations exported")
	return &ExportResult{Key: key, Count: len(items)}, nil
}

func exportBaseName(now time.Time, data []byte) string {
	sum := sha256.Sum256(data)
	return "registrations-" + now.Format("20060102") + "-" + hex.EncodeToString(sum[:6])
}

func encodeRegistrationsCSV(items []db.Registration) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, item := range items {
		row := []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.StudentName,
			item.ParentName,
			item.Email,
			item.Phone,
			item.SelectedProgram,
			item.Grade,
			item.SchoolName,
			item.Address,
			item.District,
			item.City,
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
