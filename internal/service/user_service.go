package service

import (
	"context"
	"strings"

	"quorum/internal/authz"
	"quorum/internal/models"
	"quorum/internal/repository"
	"quorum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService owns account lifecycle: registration, login, profile reads and
// updates, and the admin-only management operations.
type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID   uint
	Username string
	Email    string
}

type UpdatePasswordInput struct {
	UserID      uint
	OldPassword string
	NewPassword string
}

type AdminUpdateUserInput struct {
	Actor    authz.Actor
	TargetID uint
	IsAdmin  *bool
}

// Profile is the aggregated public view of an account.
type Profile struct {
	User        *models.User         `json:"user"`
	Stats       *models.ProfileStats `json:"stats"`
	RecentPosts []*models.Post       `json:"recent_posts"`
}

const profileRecentPosts = 10

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

// Register creates a new account. Username and email availability are probed
// up front for friendly messages; the unique indexes remain the authority
// when two registrations race.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	// A weak password at registration is a plain validation failure;
	// WeakPassword is reserved for the password-change flow.
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials by username or email. The failure is uniform:
// an unknown identity and a wrong password are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.NewInvalidCredentialsError()
	}

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError()
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile aggregates the public profile: account, activity counters and
// the most recent posts. Counters are computed at read time, never stored.
func (s *UserService) GetProfile(ctx context.Context, userID uint, currentUserID uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.userRepo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByUserID(ctx, userID, profileRecentPosts, 0, currentUserID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Stats: stats, RecentPosts: posts}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		username := strings.TrimSpace(in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = username
	}
	if in.Email != "" {
		email := strings.TrimSpace(strings.ToLower(in.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = email
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword re-verifies the current password before accepting the new
// one, even though the caller is already authenticated.
func (s *UserService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)); err != nil {
		return models.NewInvalidCredentialsError()
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewWeakPasswordError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context, actor authz.Actor, limit, offset int) ([]models.User, int64, error) {
	if !authz.CanManageUsers(actor) {
		return nil, 0, models.NewForbiddenError("Administrator access required")
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// AdminUpdateUser changes the admin flag on the target account. An admin may
// never change its own flag, so the last administrator cannot lock the
// instance out by demoting itself.
func (s *UserService) AdminUpdateUser(ctx context.Context, in AdminUpdateUserInput) (*models.User, error) {
	if !authz.CanManageUsers(in.Actor) {
		return nil, models.NewForbiddenError("Administrator access required")
	}

	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}

	if in.IsAdmin != nil {
		if !authz.CanChangeAdminFlag(in.Actor, in.TargetID) {
			return nil, models.NewForbiddenError("Administrators cannot change their own admin status")
		}
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the target account and everything it owns. Admin only,
// and never the admin's own account.
func (s *UserService) DeleteUser(ctx context.Context, actor authz.Actor, targetID uint) error {
	if !authz.CanManageUsers(actor) {
		return models.NewForbiddenError("Administrator access required")
	}
	if !authz.CanDeleteUser(actor, targetID) {
		return models.NewSelfDeleteForbiddenError()
	}

	// Surface NOT_FOUND before attempting the cascade.
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, targetID)
}
