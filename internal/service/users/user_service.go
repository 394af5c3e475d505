package users

import (
	"context"
	"strings"

	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/repository"
)

type UserUseCase interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID, name, phone string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
}

type Service struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewService(users repository.UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

func (s *Service) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, domain.ValidationError("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ValidationError("a valid email is required")
	}
	if len(input.Password) < 6 {
		return nil, domain.ValidationError("password must be at least 6 characters")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ConflictError("user with email %s already exists", email)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: auth.HashPassword(input.Password),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return "", nil, domain.AuthorizationError("invalid email or password")
		}
		return "", nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, domain.AuthorizationError("invalid email or password")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID, name, phone string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ValidationError("name is required")
	}
	return s.users.UpdateProfile(ctx, userID, strings.TrimSpace(name), strings.TrimSpace(phone))
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}

var _ UserUseCase = (*Service)(nil)
