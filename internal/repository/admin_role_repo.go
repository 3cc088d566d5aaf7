package repository

import (
	"context"
	"encoding/json"

	"authgate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminRoleRepository interface {
	Create(ctx context.Context, role *model.AdminRole) error
	Update(ctx context.Context, role *model.AdminRole) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AdminRole, error)
	FindByKey(ctx context.Context, roleKey string) (*model.AdminRole, error)
	ListAll(ctx context.Context) ([]model.AdminRole, error)
	// ListByDomain returns the roles whose domains list contains domainID.
	ListByDomain(ctx context.Context, domainID string) ([]model.AdminRole, error)
}

type adminRoleRepository struct {
	db *gorm.DB
}

func NewAdminRoleRepository(db *gorm.DB) AdminRoleRepository {
	return &adminRoleRepository{db: db}
}

func (r *adminRoleRepository) Create(ctx context.Context, role *model.AdminRole) error {
	return translate(GetDB(ctx, r.db).Create(role).Error, "role")
}

func (r *adminRoleRepository) Update(ctx context.Context, role *model.AdminRole) error {
	return translate(GetDB(ctx, r.db).Save(role).Error, "role")
}

// Delete removes the role. Assignments go with it through the foreign key cascade.
func (r *adminRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AdminRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "role")
	}
	return nil
}

func (r *adminRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AdminRole, error) {
	var role model.AdminRole
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

func (r *adminRoleRepository) FindByKey(ctx context.Context, roleKey string) (*model.AdminRole, error) {
	var role model.AdminRole
	if err := GetDB(ctx, r.db).Where("role_key = ?", roleKey).First(&role).Error; err != nil {
		return nil, translate(err, "role")
	}
	return &role, nil
}

func (r *adminRoleRepository) ListAll(ctx context.Context) ([]model.AdminRole, error) {
	var roles []model.AdminRole
	if err := GetDB(ctx, r.db).Order("role_name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *adminRoleRepository) ListByDomain(ctx context.Context, domainID string) ([]model.AdminRole, error) {
	needle, err := json.Marshal([]string{domainID})
	if err != nil {
		return nil, err
	}
	var roles []model.AdminRole
	err = GetDB(ctx, r.db).
		Where("domains @> ?::jsonb", string(needle)).
		Order("role_name asc").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
