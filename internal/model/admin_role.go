package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PermissionWildcard grants every permission when present on a role.
const PermissionWildcard = "*"

// AdminRole is an internal operator role. RoleKey is derived from RoleName and unique.
type AdminRole struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleKey     string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"role_key"`
	RoleName    string                      `gorm:"type:varchar(255);not null" json:"role_name"`
	Description *string                     `gorm:"type:text" json:"description"`
	CanLogin    bool                        `gorm:"not null;default:true" json:"can_login"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"permissions"`
	Domains     datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"domains"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (AdminRole) TableName() string { return "admin_roles" }

// AdminRoleAssignment grants one role to one operator, optionally scoped to a domain.
// (user_id, role_id, domain_id) is unique with NULL domain_id treated as a single value.
type AdminRoleAssignment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(255);not null;index" json:"user_id"`
	RoleID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"role_id"`
	Role      *AdminRole `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"role,omitempty"`
	DomainID  *uuid.UUID `gorm:"type:uuid;index" json:"domain_id"`
	Domain    *Domain    `gorm:"foreignKey:DomainID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"domain,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (AdminRoleAssignment) TableName() string { return "admin_role_assignments" }

// Domain is a tenant scope that roles and assignments can be restricted to.
type Domain struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Domain) TableName() string { return "domains" }
