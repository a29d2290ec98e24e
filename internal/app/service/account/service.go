package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/logctx"
	"github.com/inkwell/blog/pkg/tool"
	"github.com/inkwell/blog/pkg/types"
)

const minPasswordLen = 8

type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	tokens *Tokens
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, tokens *Tokens) *Service {
	return &Service{db: db, log: log, tokens: tokens}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Picture     string `json:"picture"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Picture     *string `json:"picture"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func hashPassword(pw string) (string, error) {
	if len(pw) < minPasswordLen {
		return "", errs.Invalid("password must be at least %d characters", minPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", errs.Invalid("invalid email %q", email)
	}
	return email, nil
}

// Register creates an account. Role flags are honoured only when the actor
// is a superuser.
func (s *Service) Register(ctx context.Context, actor *Principal, req *RegisterRequest) (*models.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errs.Invalid("username is required")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           tool.GenerateUUIDV7(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Picture:      req.Picture,
		Address:      req.Address,
		Phone:        req.Phone,
		IsActive:     true,
	}
	if actor.Admin() {
		u.IsStaff = req.IsStaff
		u.IsSuperuser = req.IsSuperuser
	}
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, errs.FromDB(err, "user")
	}
	logctx.FromCtx(ctx, s.log).Infow("user_registered", "user_id", u.ID, "is_staff", u.IsStaff, "is_superuser", u.IsSuperuser)
	return u, nil
}

// CreateSuperuser is the operator path used by the CLI.
func (s *Service) CreateSuperuser(ctx context.Context, email, username, password string) (*models.User, error) {
	return s.Register(ctx, &Principal{UserID: "cli", IsSuperuser: true}, &RegisterRequest{
		Email: email, Username: username, Password: password, IsStaff: true, IsSuperuser: true,
	})
}

// PublicProfile is the part of an account anyone may read.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Picture  string `json:"picture"`
}

func PublicProfileOf(u *models.User) *PublicProfile {
	return &PublicProfile{ID: u.ID, Username: u.Username, Picture: u.Picture}
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context, actor *Principal, page types.PageRequest) (*types.Page[models.User], error) {
	if !actor.Editor() {
		return nil, errs.Forbidden("only staff can list users")
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	var rows []models.User
	if err := q.Order("created_at ASC").Limit(page.PageSize).Offset(page.Offset()).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return types.NewPage(page, total, rows), nil
}

func (s *Service) Update(ctx context.Context, actor *Principal, id string, req *UpdateUserRequest) (*models.User, error) {
	if !actor.Owns(id) && !actor.Admin() {
		return nil, errs.Forbidden("cannot edit another user")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		if u.Email, err = normalizeEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Username != nil {
		if strings.TrimSpace(*req.Username) == "" {
			return nil, errs.Invalid("username is required")
		}
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Password != nil {
		if u.PasswordHash, err = hashPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	assign(&u.FirstName, req.FirstName)
	assign(&u.LastName, req.LastName)
	assign(&u.Picture, req.Picture)
	assign(&u.Address, req.Address)
	assign(&u.Phone, req.Phone)
	if req.IsStaff != nil || req.IsSuperuser != nil {
		if !actor.Admin() {
			return nil, errs.Forbidden("only a superuser can change roles")
		}
		assign(&u.IsStaff, req.IsStaff)
		assign(&u.IsSuperuser, req.IsSuperuser)
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, errs.FromDB(err, "user")
	}
	return u, nil
}

func assign[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *Service) Delete(ctx context.Context, actor *Principal, id string) error {
	if !actor.Owns(id) && !actor.Admin() {
		return errs.Forbidden("cannot delete another user")
	}
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return errs.FromDB(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("user")
	}
	logctx.FromCtx(ctx, s.log).Infow("user_deleted", "user_id", id, "by", actor.ID())
	return nil
}

// ObtainToken checks credentials and issues a token pair.
func (s *Service) ObtainToken(ctx context.Context, email, password string) (*TokenPair, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", strings.TrimSpace(strings.ToLower(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}
	return s.tokens.Issue(&u)
}

// RefreshToken exchanges a refresh token for a new access token carrying the
// user's current role flags.
func (s *Service) RefreshToken(ctx context.Context, refresh string) (string, error) {
	claims, err := s.tokens.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	u, err := s.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", fmt.Errorf("%w: user no longer exists", errs.ErrUnauthorized)
		}
		return "", err
	}
	if !u.IsActive {
		return "", fmt.Errorf("%w: user is inactive", errs.ErrUnauthorized)
	}
	return s.tokens.sign(u, TokenTypeAccess, s.tokens.accessTTL)
}

// VerifyToken accepts any valid token of either type.
func (s *Service) VerifyToken(raw string) error {
	_, err := s.tokens.Parse(raw, "")
	return err
}
