package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-service/internal/models"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	roles  map[int64][]models.RoleCode
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*models.User),
		roles: make(map[int64][]models.RoleCode),
	}
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User, roles []models.RoleCode) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = user
	f.roles[user.ID] = roles
	return nil
}

func (f *fakeUserRepo) ResolveIdentity(_ context.Context, userID int64) (*models.AuthContext, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return &models.AuthContext{
				UserID: u.ID,
				Email:  u.Email,
				Name:   u.Name,
				Roles:  f.roles[u.ID],
			}, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return f.GetByID(ctx, userID)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, NewPasswordService(), NewJWTService("test-secret", 1), quietLogger())
}

func TestAuthService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Demo Customer",
		Email:    "Customer@Mall.com",
		Password: "123456",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	assert.Equal(t, "customer@mall.com", result.User.Email, "email is normalized")
	assert.Equal(t, []models.RoleCode{models.RoleCustomer}, result.User.Roles, "default role is CUSTOMER")

	stored := repo.users["customer@mall.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "123456", stored.PasswordHash, "password is hashed")
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "One", Email: "dup@mall.com", Password: "123456"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Two", Email: "dup@mall.com", Password: "123456"})
	require.Error(t, err)
	conflict, ok := IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, "Email already exists", conflict.Message)
}

func TestAuthService_Register_RoleRestrictions(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "T", Email: "t@mall.com", Password: "123456", Role: "ADMIN"})
	_, ok := IsBadRequestError(err)
	assert.True(t, ok, "ADMIN is not self-assignable")

	result, err := svc.Register(context.Background(), RegisterInput{Name: "Tenant", Email: "tenant@mall.com", Password: "123456", Role: "TENANT"})
	require.NoError(t, err)
	assert.Equal(t, []models.RoleCode{models.RoleTenant}, result.User.Roles)
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "U", Email: "u@mall.com", Password: "123456"})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "u@mall.com", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), "u@mall.com", "wrong-password")
	unauth, ok := IsUnauthenticatedError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", unauth.Message)

	_, err = svc.Login(context.Background(), "nobody@mall.com", "123456")
	_, ok = IsUnauthenticatedError(err)
	assert.True(t, ok, "unknown email is indistinguishable from a bad password")
}
