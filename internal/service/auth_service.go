package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

const AdminUserID = model.AdminUserID

// StaffSyncer refreshes the roster before a login. *SyncService satisfies it.
type StaffSyncer interface {
	SyncStaff(ctx context.Context, actor model.User) (model.SyncResult, error)
}

type Claims struct {
	Username   string     `json:"username"`
	FullName   string     `json:"name"`
	Role       model.Role `json:"role"`
	Department string     `json:"department,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	Store     *store.Store
	Syncer    StaffSyncer
	Endpoints *Endpoints
	Logger    *zap.Logger
	Now       func() time.Time

	admin    *model.Admin
	jwtKey   []byte
	tokenTTL time.Duration
}

// NewAuthService hashes the built-in admin password once. An empty admin
// password disables the built-in account.
func NewAuthService(st *store.Store, syncer StaffSyncer, endpoints *Endpoints, adminUsername, adminPassword, jwtSecret string, ttl time.Duration, logger *zap.Logger) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &AuthService{
		Store:     st,
		Syncer:    syncer,
		Endpoints: endpoints,
		Logger:    logger,
		Now:       time.Now,
		jwtKey:    []byte(jwtSecret),
		tokenTTL:  ttl,
	}
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		s.admin = &model.Admin{Username: strings.TrimSpace(adminUsername), PasswordHash: hash}
	}
	return s, nil
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Login checks the roster, refreshed from the staff webhook when one is
// configured (the cached roster is used if that fails), then the built-in
// administrator.
func (s *AuthService) Login(ctx context.Context, username, password string) (model.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.LoginResponse{}, ErrInvalidCredentials
	}

	if s.Syncer != nil && s.Endpoints != nil {
		if _, ok := s.Endpoints.URL(model.EntityStaff); ok {
			if _, err := s.Syncer.SyncStaff(ctx, model.User{Username: username}); err != nil {
				s.Logger.Warn("staff sync before login failed, using cached roster", zap.Error(err))
			}
		}
	}

	user, err := s.authenticate(username, password)
	if err != nil {
		return model.LoginResponse{}, err
	}

	if err := s.Store.SetSession(ctx, user); err != nil {
		return model.LoginResponse{}, err
	}
	if err := s.Store.PushRecentAccount(ctx, model.RecentAccount{
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		LastUsed: user.LoggedInAt,
	}); err != nil {
		s.Logger.Warn("record recent account", zap.Error(err))
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return model.LoginResponse{}, err
	}
	return model.LoginResponse{Token: token, User: user}, nil
}

func (s *AuthService) authenticate(username, password string) (model.User, error) {
	if m, ok := findByUsername(s.Store.Staff(), username); ok {
		if subtle.ConstantTimeCompare([]byte(m.Password), []byte(password)) != 1 {
			return model.User{}, ErrInvalidCredentials
		}
		if !m.Active {
			return model.User{}, ErrAccountInactive
		}
		return model.NewUserFromStaff(m, s.now()), nil
	}

	if s.admin != nil && strings.EqualFold(username, s.admin.Username) {
		if bcrypt.CompareHashAndPassword(s.admin.PasswordHash, []byte(password)) != nil {
			return model.User{}, ErrInvalidCredentials
		}
		return s.admin.User(s.now()), nil
	}
	return model.User{}, ErrInvalidCredentials
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.Store.ClearSession(ctx)
}

func (s *AuthService) Session() (model.User, bool) {
	return s.Store.Session()
}

func (s *AuthService) RecentAccounts() []model.RecentAccount {
	return s.Store.RecentAccounts()
}

func (s *AuthService) IssueToken(u model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

var ErrInvalidToken = errors.New("invalid token")

// ParseToken verifies a signed token and returns the identity it carries.
func (s *AuthService) ParseToken(tokenString string) (model.User, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var loggedIn time.Time
	if claims.IssuedAt != nil {
		loggedIn = claims.IssuedAt.Time
	}
	return model.User{
		ID:         claims.Subject,
		Username:   claims.Username,
		FullName:   claims.FullName,
		Role:       claims.Role,
		Department: claims.Department,
		LoggedInAt: loggedIn,
	}, nil
}
