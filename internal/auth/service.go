package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/converter"
	"tutorsite/internal/entity/db"
	"tutorsite/internal/entity/dto"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CredentialStore is the subset of the repository the auth core needs.
// Lookups return gorm.ErrRecordNotFound when no row matches and inserts
// return gorm.ErrDuplicatedKey on a unique index conflict.
type CredentialStore interface {
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
}

// RegisterInput carries a registration request. Nil Role selects
// common.DefaultRole and nil Status selects common.StatusActive.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     *common.Role
	Status   *common.Status
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User      dto.UserSummary
	Token     string
	ExpiresAt time.Time
}

// Service implements registration, login and token verification.
type Service struct {
	store  CredentialStore
	hasher Hasher
	tokens *Manager

	dummyOnce sync.Once
	dummyHash string
}

// NewService 创建认证服务
func NewService(store CredentialStore, hasher Hasher, tokens *Manager) (*Service, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if tokens == nil {
		return nil, errors.New("token manager is required")
	}
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultHashCost)
	}
	return &Service{store: store, hasher: hasher, tokens: tokens}, nil
}

// Register validates the input, hashes the password and inserts an active
// user. Email uniqueness is enforced by the store's unique index.
func (s *Service) Register(ctx context.Context, in RegisterInput) (dto.UserSummary, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	switch {
	case name == "":
		return dto.UserSummary{}, missingField("name")
	case email == "":
		return dto.UserSummary{}, missingField("email")
	case in.Password == "":
		return dto.UserSummary{}, missingField("password")
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return dto.UserSummary{}, err
	}
	if !ValidEmail(email) {
		return dto.UserSummary{}, newError(ErrInvalidEmailFormat, "")
	}

	role := common.DefaultRole
	if in.Role != nil {
		role = *in.Role
	}
	if !role.Valid() {
		return dto.UserSummary{}, newError(ErrInvalidRole, "")
	}
	status := common.StatusActive
	if in.Status != nil {
		status = *in.Status
	}
	if !status.Valid() {
		return dto.UserSummary{}, newError(ErrInvalidStatus, "")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		return dto.UserSummary{}, newError(ErrStoreWriteFailure, "")
	}

	user := &db.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserSummary{}, newError(ErrDuplicateEmail, "")
		}
		logrus.WithError(err).Error("failed to create user")
		return dto.UserSummary{}, newError(ErrStoreWriteFailure, "")
	}
	return converter.UserToSummary(user), nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password produce the same error; the inactive check runs only after
// the password has verified.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, missingField("email")
	}
	if password == "" {
		return nil, missingField("password")
	}

	user, err := s.store.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// equalise timing with the wrong-password path
			_ = s.hasher.Compare(s.placeholderHash(), password)
			return nil, newError(ErrInvalidCredentials, "")
		}
		logrus.WithError(err).Error("failed to load user for login")
		return nil, newError(ErrStoreReadFailure, "")
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, newError(ErrInvalidCredentials, "")
	}
	if !user.IsActive() {
		return nil, newError(ErrAccountInactive, "")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to issue token")
		return nil, newError(ErrTokenIssueFailure, "")
	}
	return &LoginResult{
		User:      converter.UserToSummary(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify recovers the claims of a signed, unexpired token.
func (s *Service) Verify(token string) (*Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, newError(ErrTokenExpired, "")
		}
		return nil, newError(ErrTokenInvalid, "")
	}
	return claims, nil
}

// Authenticate verifies the token and loads the user it names. The user's
// current status is returned as stored; callers decide how to treat inactive
// accounts.
func (s *Service) Authenticate(ctx context.Context, token string) (*db.User, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrTokenInvalid, "")
		}
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to load token user")
		return nil, newError(ErrStoreReadFailure, "")
	}
	return user, nil
}

// HashPassword hashes a new password for an existing account.
func (s *Service) HashPassword(password string) (string, error) {
	if password == "" {
		return "", missingField("password")
	}
	if err := checkPasswordLength(password); err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		return "", newError(ErrStoreWriteFailure, "")
	}
	return hash, nil
}

// EnsureAdmin creates an active admin with the given credentials unless an
// account with that email already exists. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	normalized := NormalizeEmail(email)
	existing, err := s.store.GetUserByEmail(ctx, normalized)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			logrus.WithField("email", normalized).Warn("seed admin email belongs to a non-admin account")
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logrus.WithError(err).Error("failed to look up seed admin")
		return false, newError(ErrStoreReadFailure, "")
	}

	role := common.RoleAdmin
	_, err = s.Register(ctx, RegisterInput{
		Name:     name,
		Email:    normalized,
		Password: password,
		Role:     &role,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func checkPasswordLength(password string) error {
	if len(password) > MaxPasswordBytes {
		e := newError(ErrPasswordTooLong, "")
		e.Field = "password"
		return e
	}
	return nil
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("tutorsite-placeholder-password")
		if err != nil {
			logrus.WithError(err).Warn("failed to build placeholder hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
