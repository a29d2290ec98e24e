package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const devSecret = "inkwell-dev-secret"

type Claims struct {
	TokenType   TokenType `json:"token_type"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() *Principal {
	return &Principal{UserID: c.Subject, IsStaff: c.IsStaff, IsSuperuser: c.IsSuperuser}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Tokens signs and verifies HS256 access/refresh tokens.
type Tokens struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(cfg *config.Config, log *zap.SugaredLogger) (*Tokens, error) {
	secret := cfg.Auth.Secret
	if secret == "" {
		if cfg.Env == config.EnvProd {
			return nil, errors.New("auth secret must be set in prod")
		}
		log.Warnw("auth secret is empty, using the development secret")
		secret = devSecret
	}
	return &Tokens{
		secret:     []byte(secret),
		issuer:     cfg.Auth.Issuer,
		accessTTL:  cfg.Auth.AccessTTL,
		refreshTTL: cfg.Auth.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (t *Tokens) sign(u *models.User, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		TokenType:   typ,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Issue returns a fresh access/refresh pair for u.
func (t *Tokens) Issue(u *models.User) (*TokenPair, error) {
	access, err := t.sign(u, TokenTypeAccess, t.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(u, TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse verifies raw and checks its type when want is not empty.
func (t *Tokens) Parse(raw string, want TokenType) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	var claims Claims
	if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return t.secret, nil }); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", errs.ErrUnauthorized)
	}
	if want != "" && claims.TokenType != want {
		return nil, fmt.Errorf("%w: expected %s token", errs.ErrUnauthorized, want)
	}
	return &claims, nil
}
