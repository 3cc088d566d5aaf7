package repository

import (
	"context"

	"authgate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DomainRepository interface {
	Create(ctx context.Context, d *model.Domain) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Domain, error)
	// FindByIDForShare blocks a concurrent Delete of the domain until the transaction ends.
	FindByIDForShare(ctx context.Context, id uuid.UUID) (*model.Domain, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Domain, error)
	FindBySlug(ctx context.Context, slug string) (*model.Domain, error)
	ListAll(ctx context.Context) ([]model.Domain, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

func (r *domainRepository) Create(ctx context.Context, d *model.Domain) error {
	return translate(GetDB(ctx, r.db).Create(d).Error, "domain")
}

func (r *domainRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	var d model.Domain
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err, "domain")
	}
	return &d, nil
}

func (r *domainRepository) FindByIDForShare(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	return r.findLocked(ctx, id, "SHARE")
}

func (r *domainRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	return r.findLocked(ctx, id, "UPDATE")
}

func (r *domainRepository) findLocked(ctx context.Context, id uuid.UUID, strength string) (*model.Domain, error) {
	var d model.Domain
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: strength}).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "domain")
	}
	return &d, nil
}

func (r *domainRepository) FindBySlug(ctx context.Context, slug string) (*model.Domain, error) {
	var d model.Domain
	if err := GetDB(ctx, r.db).Where("slug = ?", slug).First(&d).Error; err != nil {
		return nil, translate(err, "domain")
	}
	return &d, nil
}

func (r *domainRepository) ListAll(ctx context.Context) ([]model.Domain, error) {
	var out []model.Domain
	if err := GetDB(ctx, r.db).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the domain; scoped assignments cascade.
func (r *domainRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Domain{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "domain")
	}
	return nil
}
