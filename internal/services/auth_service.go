package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// UserRepository is the persistence surface the auth service needs.
// Defined here so the service can be tested against a mock.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User, roles []models.RoleCode) error
	ResolveIdentity(ctx context.Context, userID int64) (*models.AuthContext, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
}

// AuthService implements register, login and profile lookup.
type AuthService struct {
	users       UserRepository
	passwordSvc *PasswordService
	jwtSvc      *JWTService
	logger      *logrus.Logger
}

func NewAuthService(users UserRepository, passwordSvc *PasswordService, jwtSvc *JWTService, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:       users,
		passwordSvc: passwordSvc,
		jwtSvc:      jwtSvc,
		logger:      logger,
	}
}

// RegisterInput is the validated register payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthResult bundles a signed token with the resolved identity.
type AuthResult struct {
	Token string
	User  *models.AuthContext
}

// Register creates a user with the requested platform role. Only CUSTOMER
// and TENANT are self-assignable; everything else is rejected.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, NewBadRequestError("name, email and password are required")
	}

	role := models.RoleCustomer
	if input.Role != "" {
		parsed, err := models.ParseRoleCode(input.Role)
		if err != nil || (parsed != models.RoleCustomer && parsed != models.RoleTenant) {
			return nil, NewBadRequestError("role must be CUSTOMER or TENANT")
		}
		role = parsed
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewConflictError("user", "Email already exists")
	}

	hash, err := s.passwordSvc.HashPassword(input.Password)
	if err != nil {
		return nil, NewBadRequestError(err.Error())
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user, []models.RoleCode{role}); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    role,
	}).Info("User registered")

	return s.issueToken(ctx, user)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, NewBadRequestError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewUnauthenticatedError("Invalid credentials")
	}

	if err := s.passwordSvc.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, NewUnauthenticatedError("Invalid credentials")
	}

	return s.issueToken(ctx, user)
}

// Profile returns the caller's user row with roles, owned stores and active
// staff links.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	identity, err := s.users.ResolveIdentity(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, NewUnauthenticatedError("Invalid credentials")
	}
	return &AuthResult{Token: token, User: identity}, nil
}
