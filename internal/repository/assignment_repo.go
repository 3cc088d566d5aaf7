package repository

import (
	"context"
	"time"

	"authgate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	// Upsert inserts the (user, role, domain) triple or, when it already exists,
	// refreshes its updated_at. a is filled with the stored row.
	Upsert(ctx context.Context, a *model.AdminRoleAssignment) (created bool, err error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.AdminRoleAssignment, error)
	FindByTriple(ctx context.Context, userID string, roleID uuid.UUID, domainID *uuid.UUID) (*model.AdminRoleAssignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID string) ([]model.AdminRoleAssignment, error)
	// LockForUser returns the user's assignments with roles, holding row locks until the transaction ends.
	LockForUser(ctx context.Context, userID string) ([]model.AdminRoleAssignment, error)
	RolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Upsert(ctx context.Context, a *model.AdminRoleAssignment) (bool, error) {
	db := GetDB(ctx, r.db)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	if res.Error != nil {
		return false, translate(res.Error, "role assignment")
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.FindByTriple(ctx, a.UserID, a.RoleID, a.DomainID)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if err := db.Model(&model.AdminRoleAssignment{}).Where("id = ?", existing.ID).Update("updated_at", now).Error; err != nil {
		return false, err
	}
	existing.UpdatedAt = now
	*a = *existing
	return false, nil
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AdminRoleAssignment, error) {
	var a model.AdminRoleAssignment
	err := GetDB(ctx, r.db).Preload("Role").Preload("Domain").First(&a, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "role assignment")
	}
	return &a, nil
}

func (r *assignmentRepository) FindByTriple(ctx context.Context, userID string, roleID uuid.UUID, domainID *uuid.UUID) (*model.AdminRoleAssignment, error) {
	q := GetDB(ctx, r.db).Where("user_id = ? AND role_id = ?", userID, roleID)
	if domainID == nil {
		q = q.Where("domain_id IS NULL")
	} else {
		q = q.Where("domain_id = ?", *domainID)
	}
	var a model.AdminRoleAssignment
	if err := q.First(&a).Error; err != nil {
		return nil, translate(err, "role assignment")
	}
	return &a, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AdminRoleAssignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "role assignment")
	}
	return nil
}

// List returns assignments ordered by role display name. An empty userID lists everyone's.
func (r *assignmentRepository) List(ctx context.Context, userID string) ([]model.AdminRoleAssignment, error) {
	q := GetDB(ctx, r.db).
		Joins("JOIN admin_roles ON admin_roles.id = admin_role_assignments.role_id").
		Preload("Role").
		Preload("Domain").
		Order("admin_roles.role_name asc, admin_role_assignments.created_at asc")
	if userID != "" {
		q = q.Where("admin_role_assignments.user_id = ?", userID)
	}
	var out []model.AdminRoleAssignment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assignmentRepository) LockForUser(ctx context.Context, userID string) ([]model.AdminRoleAssignment, error) {
	var out []model.AdminRoleAssignment
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Role").
		Where("user_id = ?", userID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RolesForUser returns one role per assignment, so a role held in two domains appears twice.
func (r *assignmentRepository) RolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error) {
	var roles []model.AdminRole
	err := GetDB(ctx, r.db).
		Table("admin_roles").
		Select("admin_roles.*").
		Joins("JOIN admin_role_assignments ON admin_role_assignments.role_id = admin_roles.id").
		Where("admin_role_assignments.user_id = ?", userID).
		Order("admin_roles.role_name asc").
		Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}
