package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ammotrack/internal/config"
	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	// failedLoginThreshold failed attempts within failedLoginWindow raise a
	// security alert for the username.
	failedLoginThreshold = 5
	failedLoginWindow    = 10 * time.Minute
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error
	CreateUser(ctx context.Context, actor Actor, req dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeactivateUser(ctx context.Context, actor Actor, id uuid.UUID) error
}

type authService struct {
	repo   repository.UserRepository
	alerts AlertService
	audit  AuditService
	rdb    *redis.Client
	cfg    *config.Config
}

func NewAuthService(repo repository.UserRepository, alerts AlertService, audit AuditService, rdb *redis.Client, cfg *config.Config) AuthService {
	return &authService{repo: repo, alerts: alerts, audit: audit, rdb: rdb, cfg: cfg}
}

// Login verifies the password against the stored bcrypt hash. Passwords are
// never stored or compared in plaintext anywhere in this service.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		s.recordFailedLogin(ctx, req.Username)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.recordFailedLogin(ctx, req.Username)
		return nil, ErrInvalidCredentials
	}

	s.clearFailedLogins(ctx, req.Username)
	return s.tokenResponse(user)
}

// recordFailedLogin counts attempts per username in Redis; crossing the
// threshold raises a security alert once per window.
func (s *authService) recordFailedLogin(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	key := "failed_logins:" + username
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Warn().Err(err).Msg("auth: failed-login counter unavailable")
		return
	}
	if n == 1 {
		s.rdb.Expire(ctx, key, failedLoginWindow)
	}
	if n == failedLoginThreshold && s.alerts != nil {
		s.alerts.RaiseSecurityAlert(ctx, username)
	}
}

func (s *authService) clearFailedLogins(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, "failed_logins:"+username)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("malformed token claims")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, errors.New("user not found or inactive")
	}
	return s.tokenResponse(user)
}

// ChangePassword verifies the current password before storing a new bcrypt
// hash. Wrong current password reports as invalid credentials, not a
// validation failure.
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	idStr := userID.String()
	s.audit.Record(ctx, &userID, user.Username, "user.change_password", "user", &idStr, "")
	return nil
}

func (s *authService) CreateUser(ctx context.Context, actor Actor, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		Rank:         req.Rank,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	idStr := user.ID.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "user.create", "user", &idStr,
		fmt.Sprintf("created %s (%s)", user.Username, user.Role))
	return userToResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = *userToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Rank != nil {
		user.Rank = req.Rank
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "user.update", "user", &idStr, "")
	return userToResponse(user), nil
}

func (s *authService) DeactivateUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "user.deactivate", "user", &idStr, "")
	return nil
}

func (s *authService) tokenResponse(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Rank:     u.Rank,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}
