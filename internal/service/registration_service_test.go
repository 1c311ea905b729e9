package service

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"tutorsite/internal/entity/db"
	"tutorsite/internal/entity/dto"
	"tutorsite/internal/storage"

	"gorm.io/gorm"
)

type memoryRegistrations struct {
	nextID uint
	items  map[uint]*db.Registration
}

func newMemoryRegistrations() *memoryRegistrations {
	return &memoryRegistrations{items: make(map[uint]*db.Registration)}
}

func (m *memoryRegistrations) emailTaken(email string, except uint) bool {
	for id, item := range m.items {
		if id != except && item.Email == email {
			return true
		}
	}
	return false
}

func (m *memoryRegistrations) CreateRegistration(_ context.Context, r *db.Registration) error {
	if m.emailTaken(r.Email, 0) {
		return gorm.ErrDuplicatedKey
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Date(2024, 2, 1, 0, 0, int(r.ID), 0, time.UTC)
	stored := *r
	m.items[r.ID] = &stored
	return nil
}

func (m *memoryRegistrations) GetRegistration(_ context.Context, id uint) (*db.Registration, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memoryRegistrations) UpdateRegistration(_ context.Context, id uint, u db.RegistrationUpdates) error {
	item, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.Email != nil && m.emailTaken(*u.Email, id) {
		return gorm.ErrDuplicatedKey
	}
	if u.Email != nil {
		item.Email = *u.Email
	}
	if u.City != nil {
		item.City = *u.City
	}
	if u.StudentName != nil {
		item.StudentName = *u.StudentName
	}
	return nil
}

func (m *memoryRegistrations) DeleteRegistration(_ context.Context, id uint) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRegistrations) ListRegistrations(_ context.Context) ([]db.Registration, error) {
	out := make([]db.Registration, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type capturingStorage struct {
	data []byte
	opts storage.SaveOptions
}

func (c *capturingStorage) Save(_ context.Context, data []byte, opts storage.SaveOptions) (string, error) {
	c.data = append([]byte(nil), data...)
	c.opts = opts
	return storage.ObjectKey(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), opts), nil
}

func validRequest(email string) dto.RegistrationCreateRequest {
	return dto.RegistrationCreateRequest{
		StudentName:     " Budi ",
		ParentName:      "Sri",
		Email:           email,
		Phone:           "0812",
		SelectedProgram: "Math",
		Grade:           "7",
		SchoolName:      "SMP 1",
		Address:         "Jl. Mawar 1",
		District:        "Coblong",
		City:            "Bandung",
	}
}

func TestRegistrationCreate(t *testing.T) {
	svc := NewRegistrationService(newMemoryRegistrations(), nil)
	ctx := context.Background()

	record, err := svc.Create(ctx, validRequest("Budi@Example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if record.Email != "budi@example.com" || record.StudentName != "Budi" {
		t.Fatalf("expected normalised record, got %+v", record)
	}

	if _, err := svc.Create(ctx, validRequest("BUDI@example.com")); !errors.Is(err, ErrRegistrationExists) {
		t.Fatalf("expected ErrRegistrationExists, got %v", err)
	}
}

func TestRegistrationCreateValidation(t *testing.T) {
	svc := NewRegistrationService(newMemoryRegistrations(), nil)

	missingCity := validRequest("a@b.co")
	missingCity.City = "  "
	badEmail := validRequest("not-an-email")

	cases := []struct {
		name  string
		req   dto.RegistrationCreateRequest
		field string
	}{
		{name: "missing city", req: missingCity, field: "city"},
		{name: "bad email", req: badEmail, field: "email"},
		{name: "empty", req: dto.RegistrationCreateRequest{}, field: "student_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestRegistrationUpdateAndDelete(t *testing.T) {
	repo := newMemoryRegistrations()
	svc := NewRegistrationService(repo, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, validRequest("first@example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, validRequest("second@example.com")); err != nil {
		t.Fatalf("create second: %v", err)
	}

	city := "  Jakarta "
	updated, err := svc.Update(ctx, first.ID, dto.RegistrationUpdateRequest{City: &city})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.City != "Jakarta" {
		t.Fatalf("expected trimmed city, got %q", updated.City)
	}

	blank := " "
	var verr *ValidationError
	if _, err := svc.Update(ctx, first.ID, dto.RegistrationUpdateRequest{StudentName: &blank}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	taken := "SECOND@example.com"
	if _, err := svc.Update(ctx, first.ID, dto.RegistrationUpdateRequest{Email: &taken}); !errors.Is(err, ErrRegistrationExists) {
		t.Fatalf("expected ErrRegistrationExists, got %v", err)
	}

	if _, err := svc.Update(ctx, 999, dto.RegistrationUpdateRequest{City: &city}); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, first.ID); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}
}

func TestRegistrationExport(t *testing.T) {
	repo := newMemoryRegistrations()
	sink := &capturingStorage{}
	svc := NewRegistrationService(repo, sink)
	svc.now = func() time.Time { return time.Date(2024, 2, 3, 10, 11, 12, 0, time.UTC) }
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		req := validRequest(email)
		req.Address = "Jl. Mawar 1, RT 02"
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	result, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 rows, got %d", result.Count)
	}
	sum := sha256.Sum256(sink.data)
	if want := "exports/2024/02/03/registrations-20240203-" + hex.EncodeToString(sum[:6]) + ".csv"; result.Key != want {
		t.Fatalf("expected key %q, got %q", want, result.Key)
	}
	if !sink.opts.SkipIfExists {
		t.Fatal("expected export to skip existing objects")
	}
	if !strings.HasPrefix(sink.opts.ContentType, "text/csv") {
		t.Fatalf("unexpected content type %q", sink.opts.ContentType)
	}

	rows, err := csv.NewReader(strings.NewReader(string(sink.data))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[0][1] != "student_name" {
		t.Fatalf("unexpected csv: %v", rows)
	}
	if rows[1][3] != "b@example.com" || rows[1][8] != "Jl. Mawar 1, RT 02" {
		t.Fatalf("expected newest first with quoted address, got %v", rows[1])
	}
}

func TestRegistrationExportReusesUnchangedObject(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	svc := NewRegistrationService(newMemoryRegistrations(), store)
	ctx := context.Background()
	if _, err := svc.Create(ctx, validRequest("a@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	path := filepath.Join(dir, filepath.FromSlash(first.Key))
	// 标记文件，确认第二次导出没有覆盖
	if err := os.WriteFile(path, []byte("marker"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	second, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if second.Key != first.Key {
		t.Fatalf("expected unchanged export to reuse %q, got %q", first.Key, second.Key)
	}
	if data, _ := os.ReadFile(path); string(data) != "marker" {
		t.Fatalf("expected existing object to be kept, got %q", data)
	}

	if _, err := svc.Create(ctx, validRequest("b@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	third, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("third export: %v", err)
	}
	if third.Key == first.Key || third.Count != 2 {
		t.Fatalf("expected a new object for changed data, got %q count=%d", third.Key, third.Count)
	}
}

func TestRegistrationExportWithoutStorage(t *testing.T) {
	svc := NewRegistrationService(newMemoryRegistrations(), nil)
	if _, err := svc.Export(context.Background()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
