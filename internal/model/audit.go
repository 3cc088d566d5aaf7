package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateRole       = "CREATE_ROLE"
	ActionUpdateRole       = "UPDATE_ROLE"
	ActionDeleteRole       = "DELETE_ROLE"
	ActionAssignRole       = "ASSIGN_ROLE"
	ActionRemoveAssignment = "REMOVE_ASSIGNMENT"
	ActionCreateDomain     = "CREATE_DOMAIN"
	ActionDeleteDomain     = "DELETE_DOMAIN"

	ActionCreateSeller           = "CREATE_SELLER"
	ActionUpdateSeller           = "UPDATE_SELLER"
	ActionDeleteSeller           = "DELETE_SELLER"
	ActionSetSellerPassword      = "SET_SELLER_PASSWORD"
	ActionUpdateAllowedServices  = "UPDATE_ALLOWED_SERVICES"
	ActionUpdateSubscriptionPlan = "UPDATE_SUBSCRIPTION_PLAN"
	ActionSellerLoginFailed      = "SELLER_LOGIN_FAILED"
)

const (
	EntityAdminRole  = "admin_role"
	EntityAssignment = "admin_role_assignment"
	EntityDomain     = "domain"
	EntitySeller     = "seller"
)

// AuditLog tracks who changed what in the authorization data.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    string         `gorm:"type:varchar(255);index" json:"actor_id"` // operator id, credential source, or "anonymous"
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(255);index" json:"entity_id"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
