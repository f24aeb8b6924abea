package userservice

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/policy"
	"github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/validate"
)

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, search string, isAdmin *bool, limit, offset int) ([]domain.User, int64, error)
	GetUserPermissions(ctx context.Context, userID string) ([]string, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	AssignPermissions(ctx context.Context, userID string, names []string) error
	SyncPermissions(ctx context.Context, userID string, names []string) error
	RemovePermissions(ctx context.Context, userID string, names []string) error
}

type Service struct {
	userRepo    Repo
	hashService auth.HashServiceInterface
}

func New(repo Repo, hashService auth.HashServiceInterface) *Service {
	return &Service{
		userRepo:    repo,
		hashService: hashService,
	}
}

func (s *Service) List(ctx context.Context, actor *domain.User, search string, isAdmin *bool, page, perPage int) ([]domain.User, int64, error) {
	if !policy.CanManageUsers(actor) {
		return nil, 0, apperrors.Forbidden("manage users")
	}
	offset := (page - 1) * perPage
	users, total, err := s.userRepo.List(ctx, search, isAdmin, perPage, offset)
	if err != nil {
		zap.L().Error("can't list users: ", zap.Error(err))
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Service) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, actor *domain.User, req dto.StoreUserRequestDTO) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}

	errs := validate.New()
	errs.Required("name", req.Name)
	errs.MaxLen("name", req.Name, 255)
	errs.Required("email", req.Email)
	errs.MaxLen("email", req.Email, 255)
	errs.Required("password", req.Password)
	if req.Password != "" && len(req.Password) < 8 {
		errs.Add("password", "The password must be at least 8 characters.")
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewValidationError("email", "The email has already been taken.")
	}

	hashedPassword, err := s.hashService.HashPassword(req.Password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		IsAdmin:      req.IsAdmin,
	}
	newUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		zap.L().Error("can't create user: ", zap.Error(err))
		return nil, err
	}
	return newUser, nil
}

func (s *Service) Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateUserRequestDTO) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}

	if req.Name != nil {
		errs := validate.New()
		errs.Required("name", *req.Name)
		errs.MaxLen("name", *req.Name, 255)
		if !errs.Empty() {
			return nil, &apperrors.ValidationError{Fields: errs}
		}
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := s.userRepo.FindByEmail(ctx, *req.Email)
		if err != nil {
			zap.L().Error("can't find user: ", zap.Error(err))
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewValidationError("email", "The email has already been taken.")
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, apperrors.NewValidationError("password", "The password must be at least 8 characters.")
		}
		hashedPassword, err := s.hashService.HashPassword(*req.Password)
		if err != nil {
			zap.L().Error("can't hash password: ", zap.Error(err))
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		zap.L().Error("can't update user: ", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !policy.CanManageUsers(actor) {
		return apperrors.Forbidden("manage users")
	}
	if actor.ID == id {
		return apperrors.Forbidden("delete own account")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return err
	}
	if user == nil {
		return apperrors.NotFound("user")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete user: ", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) ListPermissions(ctx context.Context, actor *domain.User) ([]domain.Permission, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}
	permissions, err := s.userRepo.ListPermissions(ctx)
	if err != nil {
		zap.L().Error("can't list permissions: ", zap.Error(err))
		return nil, err
	}
	return permissions, nil
}

func (s *Service) GetUserPermissions(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	return user, nil
}

func (s *Service) validatePermissionNames(ctx context.Context, names []string) error {
	errs := validate.New()
	if len(names) == 0 {
		errs.Add("permissions", "The permissions field is required.")
		return &apperrors.ValidationError{Fields: errs}
	}
	known, err := s.userRepo.ListPermissions(ctx)
	if err != nil {
		zap.L().Error("can't list permissions: ", zap.Error(err))
		return err
	}
	knownNames := make(map[string]bool, len(known))
	for _, p := range known {
		knownNames[p.Name] = true
	}
	for _, name := range names {
		if !knownNames[name] {
			errs.Add("permissions", "The selected permissions is invalid.")
			return &apperrors.ValidationError{Fields: errs}
		}
	}
	return nil
}

func (s *Service) changePermissions(ctx context.Context, actor *domain.User, userID string, names []string,
	apply func(ctx context.Context, userID string, names []string) error,
) (*domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("manage users")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("user")
	}
	if err := s.validatePermissionNames(ctx, names); err != nil {
		return nil, err
	}
	if err := apply(ctx, userID, names); err != nil {
		zap.L().Error("can't change permissions: ", zap.Error(err))
		return nil, err
	}
	updated, err := s.userRepo.GetUserPermissions(ctx, userID)
	if err != nil {
		zap.L().Error("can't load permissions: ", zap.Error(err))
		return nil, err
	}
	user.Permissions = updated
	return user, nil
}

func (s *Service) AssignPermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error) {
	return s.changePermissions(ctx, actor, userID, names, s.userRepo.AssignPermissions)
}

func (s *Service) SyncPermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error) {
	return s.changePermissions(ctx, actor, userID, names, s.userRepo.SyncPermissions)
}

func (s *Service) RemovePermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error) {
	return s.changePermissions(ctx, actor, userID, names, s.userRepo.RemovePermissions)
}
