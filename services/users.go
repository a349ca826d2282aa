package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"empowerpwd/db"
	"empowerpwd/logger"
	"empowerpwd/models"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

var validate = validator.New()

type RegisterInput struct {
	Email          string      `json:"email" validate:"required,email,max=255"`
	Password       string      `json:"password" validate:"required,min=8,max=72"`
	Role           models.Role `json:"role" validate:"required,oneof=jobseeker employer"`
	FirstName      string      `json:"firstName" validate:"max=255"`
	LastName       string      `json:"lastName" validate:"max=255"`
	CompanyName    string      `json:"companyName" validate:"required_if=Role employer,max=255"`
	DisabilityType string      `json:"disabilityType" validate:"max=255"`
}

type UserService struct {
	orm    *gorm.DB
	tokens *TokenService
	cache  SummaryCache
}

// NewUserService builds the user store. cache may be nil.
func NewUserService(orm *gorm.DB, tokens *TokenService, cache SummaryCache) *UserService {
	return &UserService{orm: orm, tokens: tokens, cache: cache}
}

// Register creates a job seeker or employer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		return nil, validationErr("%v", err)
	}
	user := &models.User{
		Email:          in.Email,
		Role:           in.Role,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		DisabilityType: in.DisabilityType,
	}
	if err := s.create(ctx, user, in.Password); err != nil {
		return nil, err
	}
	logger.Log.Infof("Registered %s user %d", user.Role, user.ID)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the e-mail is taken.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := db.ReadOnly(ctx, s.orm).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return storeErr("count users", err)
	}
	if count > 0 {
		return nil
	}
	admin := &models.User{Email: email, Role: models.RoleAdmin, FirstName: "Admin", IsVerified: true}
	return s.create(ctx, admin, password)
}

func (s *UserService) create(ctx context.Context, user *models.User, password string) error {
	var alreadyExists int64
	err := db.ReadOnly(ctx, s.orm).Model(&models.User{}).Where("email = ?", user.Email).Count(&alreadyExists).Error
	if err != nil {
		return storeErr("count users", err)
	}
	if alreadyExists > 0 {
		return fmt.Errorf("%w: e-mail %s is registered", ErrConflict, user.Email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hash

	if err := db.Write(ctx, s.orm).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: e-mail %s is registered", ErrConflict, user.Email)
		}
		return storeErr("create user", err)
	}
	return nil
}

// Login checks credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := db.ReadOnly(ctx, s.orm).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err != nil {
		return "", nil, storeErr("find user", err)
	}
	if !checkPassword(user.Password, password) {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, err := s.tokens.Issue(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.ReadOnly(ctx, s.orm).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &user, nil
}

// Exists reads from the master: callers use it to gate writes, and a
// replica may not have seen a fresh registration yet.
func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := db.Write(ctx, s.orm).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeErr("count users", err)
	}
	return count > 0, nil
}

// Summaries resolves ids to summaries. Unknown ids are absent from the
// result. The cache is best effort: failures fall through to the database.
func (s *UserService) Summaries(ctx context.Context, ids []int64) (map[int64]models.UserSummary, error) {
	ids = lo.Uniq(ids)
	result := make(map[int64]models.UserSummary, len(ids))
	missing := ids

	if s.cache != nil {
		cached, err := s.cache.GetSummaries(ctx, ids)
		if err != nil {
			logger.Log.Warnf("User summary cache read failed: %v", err)
		} else {
			for id, summary := range cached {
				result[id] = summary
			}
			missing = lo.Filter(ids, func(id int64, _ int) bool {
				_, ok := cached[id]
				return !ok
			})
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	var users []models.User
	if err := db.ReadOnly(ctx, s.orm).Where("id IN ?", missing).Find(&users).Error; err != nil {
		return nil, storeErr("load summaries", err)
	}
	fresh := lo.Map(users, func(u models.User, _ int) models.UserSummary { return u.Summary() })
	for _, summary := range fresh {
		result[summary.ID] = summary
	}

	if s.cache != nil {
		if err := s.cache.SetSummaries(ctx, fresh); err != nil {
			logger.Log.Warnf("User summary cache write failed: %v", err)
		}
	}
	return result, nil
}

// SetVerified flips the admin verification flag.
func (s *UserService) SetVerified(ctx context.Context, id int64, verified bool) error {
	res := db.Write(ctx, s.orm).Model(&models.User{}).Where("id = ?", id).Update("is_verified", verified)
	if res.Error != nil {
		return storeErr("verify user", res.Error)
	}
	if res.RowsAffected == 0 {
		exists, err := s.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := db.ReadOnly(ctx, s.orm).Order("id ASC").Limit(limit).Offset(offset)
	if role != "" {
		if !role.Valid() {
			return nil, validationErr("unknown role %q", role)
		}
		query = query.Where("role = ?", role)
	}
	users := []models.User{}
	if err := query.Find(&users).Error; err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Log.Warnf("User summary cache invalidate failed for %d: %v", id, err)
	}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func checkPassword(stored, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(got, want) == 1
}
