package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mall-service/internal/models"
)

// UserRepository handles user and role database operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail retrieves a user by email, nil when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by id, nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// EmailExists reports whether any user has the email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Create inserts the user and attaches the given platform roles. The role
// rows must already be seeded.
func (r *UserRepository) Create(ctx context.Context, user *models.User, roles []models.RoleCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		for _, code := range roles {
			var role models.Role
			if err := tx.Where("code = ?", code).First(&role).Error; err != nil {
				return fmt.Errorf("role %s not seeded: %w", code, err)
			}
			if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
				return fmt.Errorf("failed to attach role: %w", err)
			}
		}
		return nil
	})
}

// EnsureRole grants the platform role unless the user already holds it.
func (r *UserRepository) EnsureRole(ctx context.Context, userID int64, code models.RoleCode) error {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&role).Error; err != nil {
		return fmt.Errorf("role %s not seeded: %w", code, err)
	}

	var count int64
	err := r.db.WithContext(ctx).Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, role.ID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check role grant: %w", err)
	}
	if count > 0 {
		return nil
	}

	user := models.User{ID: userID}
	if err := r.db.WithContext(ctx).Model(&user).Association("Roles").Append(&role); err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}
	return nil
}

// ResolveIdentity loads everything the authorization layer needs about a
// user: roles, owned store ids and enabled staff links. Returns nil when the
// user does not exist.
func (r *UserRepository) ResolveIdentity(ctx context.Context, userID int64) (*models.AuthContext, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("OwnedStores").
		Preload("StaffLinks", "status = ?", true).
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	identity := &models.AuthContext{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}
	for _, role := range user.Roles {
		identity.Roles = append(identity.Roles, role.Code)
	}
	for _, store := range user.OwnedStores {
		identity.OwnedStoreIDs = append(identity.OwnedStoreIDs, store.ID)
	}
	for _, link := range user.StaffLinks {
		identity.StaffLinks = append(identity.StaffLinks, models.StaffLinkRef{
			StoreID: link.StoreID,
			Role:    link.Role,
		})
	}
	return identity, nil
}

// GetProfile loads a user with roles, owned stores and enabled staff links
// (with store summaries) for the profile endpoint.
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Preload("OwnedStores").
		Preload("StaffLinks", "status = ?", true).
		Preload("StaffLinks.Store").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &user, nil
}
