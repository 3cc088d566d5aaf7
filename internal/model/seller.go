package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubscriptionPlan is the closed set of seller tiers.
type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "FREE"
	PlanBasic      SubscriptionPlan = "BASIC"
	PlanPro        SubscriptionPlan = "PRO"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

// Plans lists every plan in tier order.
var Plans = []SubscriptionPlan{PlanFree, PlanBasic, PlanPro, PlanEnterprise}

// Valid reports whether p is one of the known plans.
func (p SubscriptionPlan) Valid() bool {
	for _, known := range Plans {
		if p == known {
			return true
		}
	}
	return false
}

const (
	SellerStatusActive    = "active"
	SellerStatusSuspended = "suspended"
	SellerStatusDisabled  = "disabled"

	SellerRoleOwner = "OWNER"
)

// Seller is a vendor account. PasswordHash is nil until an admin provisions a password.
type Seller struct {
	ID               uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name             string                      `gorm:"type:varchar(255);not null" json:"name"`
	VendorName       string                      `gorm:"type:varchar(255)" json:"vendor_name"`
	ContactName      string                      `gorm:"type:varchar(255)" json:"contact_name"`
	Email            string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // stored lowercase
	PasswordHash     *string                     `gorm:"type:varchar(255)" json:"-"`
	Role             string                      `gorm:"type:varchar(50);not null;default:'OWNER'" json:"role"`
	Status           string                      `gorm:"type:varchar(30);not null;default:'active';index" json:"status"`
	SubscriptionPlan SubscriptionPlan            `gorm:"type:varchar(30);not null;default:'FREE'" json:"subscription_plan"`
	AllowedServices  datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"allowed_services"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Seller) TableName() string { return "sellers" }

// IsActive reports whether the seller may authenticate.
func (s *Seller) IsActive() bool {
	return s.Status == SellerStatusActive
}

// HasPassword reports whether a password has been provisioned.
func (s *Seller) HasPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}
