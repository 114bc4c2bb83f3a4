package service

import (
	"context"
	"errors"
	"strings"

	"coursecritic-backend/internal/apperrors"
	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/models"
	"coursecritic-backend/internal/ratelimit"

	"github.com/rs/zerolog/log"
)

// AccountService handles sign-up, login, logout and self-service profile and
// account management.
type AccountService struct {
	users   UserStore
	revoked RevokedTokenStore
	tokens  *auth.TokenManager
	limiter *ratelimit.Limiter
	remover accountRemover
}

func NewAccountService(users UserStore, revoked RevokedTokenStore, reviews ReviewStore, facultyReviews FacultyReviewStore, tokens *auth.TokenManager, limiter *ratelimit.Limiter) *AccountService {
	return &AccountService{
		users:   users,
		revoked: revoked,
		tokens:  tokens,
		limiter: limiter,
		remover: accountRemover{
			users:          users,
			reviews:        reviews,
			facultyReviews: facultyReviews,
		},
	}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// Session is returned on sign-up and login.
type Session struct {
	Token  string       `json:"token"`
	UserID string       `json:"userId"`
	User   *models.User `json:"user"`
}

// Signup registers a student account and logs it in. Self sign-up never
// grants another role.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("Signup failed", err)
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("Signup failed", err)
	}
	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, apperrors.NewConflictError("User already exists")
		}
		return nil, apperrors.NewInternalError("Signup failed", err)
	}
	return s.session(user)
}

// Login checks credentials. Attempts are limited per email and client address.
func (s *AccountService) Login(ctx context.Context, in LoginInput, clientIP string) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	key := "login:" + in.Email + ":" + clientIP
	if ok, retryAfter := s.limiter.Allow(ctx, key); !ok {
		return nil, apperrors.NewRateLimitedError("Too many login attempts, please try again later", retryAfter)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("Login failed", err)
	}
	if user == nil || !auth.CheckPassword(user.Password, in.Password) {
		return nil, apperrors.NewAuthenticationError("Invalid email or password")
	}

	s.limiter.Reset(ctx, key)
	return s.session(user)
}

// Logout revokes the presented token until it would have expired.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.NewAuthenticationError("Unauthorized")
	}
	userID, err := claims.UserObjectID()
	if err != nil {
		return apperrors.NewAuthenticationError("Unauthorized")
	}
	token := &models.RevokedToken{
		JTI:    claims.ID,
		UserID: userID,
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, token); err != nil {
		return apperrors.NewInternalError("Logout failed", err)
	}
	return nil
}

func (s *AccountService) Profile(ctx context.Context, caller *Caller) (*models.User, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load profile", err)
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, caller *Caller, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &normalized
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != "" {
		user.Name = *in.Name
	}
	if in.Email != nil && *in.Email != "" && *in.Email != user.Email {
		existing, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to update profile", err)
		}
		if existing != nil {
			return nil, apperrors.NewConflictError("Email already in use")
		}
		user.Email = *in.Email
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to update profile", err)
		}
		user.Password = hash
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, apperrors.NewConflictError("Email already in use")
		}
		return nil, apperrors.NewInternalError("Failed to update profile", err)
	}
	return user, nil
}

// DeleteAccount removes the caller and all their reviews.
func (s *AccountService) DeleteAccount(ctx context.Context, caller *Caller) (*CascadeResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.remover.remove(ctx, caller.ID)
}

// IsRevoked reports whether the token id has been logged out.
func (s *AccountService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked.IsRevoked(ctx, jti)
}

// ResolveSession checks verified claims against stored state and returns the
// caller they currently belong to. The role comes from the stored user, so a
// token outlives neither a logout nor the account it was issued for.
func (s *AccountService) ResolveSession(ctx context.Context, claims *auth.Claims) (*Caller, error) {
	if claims == nil {
		return nil, apperrors.NewAuthenticationError("Unauthorized")
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("Server error", err)
	}
	if revoked {
		return nil, apperrors.NewAuthenticationError("Token has been revoked")
	}
	id, err := claims.UserObjectID()
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid or expired token")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError("Server error", err)
	}
	if user == nil {
		return nil, apperrors.NewAuthenticationError("User no longer exists")
	}
	return &Caller{ID: user.ID, Role: user.Role}, nil
}

func (s *AccountService) session(user *models.User) (*Session, error) {
	token, _, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to create session", err)
	}
	log.Debug().Str("user_id", user.ID.Hex()).Str("role", string(user.Role)).Msg("issued session token")
	return &Session{
		Token:  token,
		UserID: user.ID.Hex(),
		User:   user,
	}, nil
}
