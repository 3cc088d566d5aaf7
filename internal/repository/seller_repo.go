package repository

import (
	"context"
	"strings"

	"authgate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SellerFilter narrows List results.
type SellerFilter struct {
	Status string
	Plan   model.SubscriptionPlan
}

// SellerRepository defines the interface for data access of Seller entities
type SellerRepository interface {
	Create(ctx context.Context, seller *model.Seller) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Seller, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Seller, error)
	GetByEmail(ctx context.Context, email string) (*model.Seller, error)
	List(ctx context.Context, filter SellerFilter, offset, limit int) ([]model.Seller, int64, error)
	Update(ctx context.Context, seller *model.Seller) error
	// UpdatePasswordHash swaps the hash only while the stored value is still oldHash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sellerRepository struct {
	db *gorm.DB
}

func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepository{db: db}
}

func (r *sellerRepository) Create(ctx context.Context, seller *model.Seller) error {
	return translate(GetDB(ctx, r.db).Create(seller).Error, "seller")
}

func (r *sellerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	var seller model.Seller
	if err := GetDB(ctx, r.db).First(&seller, "id = ?", id).Error; err != nil {
		return nil, translate(err, "seller")
	}
	return &seller, nil
}

func (r *sellerRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	var seller model.Seller
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&seller, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "seller")
	}
	return &seller, nil
}

// GetByEmail matches case-insensitively.
func (r *sellerRepository) GetByEmail(ctx context.Context, email string) (*model.Seller, error) {
	var seller model.Seller
	err := GetDB(ctx, r.db).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&seller).Error
	if err != nil {
		return nil, translate(err, "seller")
	}
	return &seller, nil
}

func (r *sellerRepository) List(ctx context.Context, filter SellerFilter, offset, limit int) ([]model.Seller, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Plan != "" {
			db = db.Where("subscription_plan = ?", filter.Plan)
		}
		return db
	}

	var total int64
	if err := GetDB(ctx, r.db).Model(&model.Seller{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sellers []model.Seller
	if err := GetDB(ctx, r.db).Scopes(scope).Order("created_at desc").Offset(offset).Limit(limit).Find(&sellers).Error; err != nil {
		return nil, 0, err
	}
	return sellers, total, nil
}

func (r *sellerRepository) Update(ctx context.Context, seller *model.Seller) error {
	return translate(GetDB(ctx, r.db).Save(seller).Error, "seller")
}

func (r *sellerRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, oldHash, newHash string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Seller{}).
		Where("id = ? AND password_hash = ?", id, oldHash).
		Update("password_hash", newHash)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sellerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Seller{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "seller")
	}
	return nil
}
