package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"authgate/internal/apperror"
	"authgate/internal/model"
	"authgate/internal/password"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/internal/repository"
)

// MinPasswordLength is the shortest seller password accepted.
const MinPasswordLength = 6

// --- DTOs ---

type CreateSellerRequest struct {
	Name             string   `json:"name" binding:"required"`
	VendorName       string   `json:"vendor_name"`
	ContactName      string   `json:"contact_name"`
	Email            string   `json:"email" binding:"required"`
	Role             string   `json:"role"`
	Status           string   `json:"status"`
	SubscriptionPlan string   `json:"subscription_plan"`
	AllowedServices  []string `json:"allowed_services"`
	Password         *string  `json:"password"`
}

type UpdateSellerRequest struct {
	Name        *string `json:"name"`
	VendorName  *string `json:"vendor_name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	Status      *string `json:"status"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type UpdateAllowedServicesRequest struct {
	AllowedServices []string `json:"allowed_services"`
}

type UpdateSubscriptionPlanRequest struct {
	SubscriptionPlan string `json:"subscription_plan" binding:"required"`
}

type SellerResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	VendorName           string   `json:"vendor_name"`
	ContactName          string   `json:"contact_name"`
	Email                string   `json:"email"`
	Role                 string   `json:"role"`
	Status               string   `json:"status"`
	SubscriptionPlan     string   `json:"subscription_plan"`
	AllowedServices      []string `json:"allowed_services"`
	EffectivePermissions []string `json:"effective_permissions"`
	HasPassword          bool     `json:"has_password"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

// PermissionNotifier is told when a seller's effective permissions or status may have changed.
type PermissionNotifier interface {
	NotifyPermissionsChanged(sellerID string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyPermissionsChanged(string) {}

// --- Interface ---

type SellerService interface {
	CreateSeller(ctx context.Context, actor principal.Admin, req CreateSellerRequest) (*SellerResponse, error)
	GetSeller(ctx context.Context, id string) (*SellerResponse, error)
	ListSellers(ctx context.Context, filter repository.SellerFilter, page, limit int) ([]SellerResponse, int64, error)
	UpdateSeller(ctx context.Context, actor principal.Admin, id string, req UpdateSellerRequest) (*SellerResponse, error)
	DeleteSeller(ctx context.Context, actor principal.Admin, id string) error
	SetPassword(ctx context.Context, actor principal.Admin, id string, plain string) error
	UpdateAllowedServices(ctx context.Context, actor principal.Admin, id string, services []string) (*SellerResponse, error)
	// UpdateSubscriptionPlan always resets allowed_services to the new plan's defaults.
	UpdateSubscriptionPlan(ctx context.Context, actor principal.Admin, id string, plan string) (*SellerResponse, error)
}

type sellerService struct {
	repo      repository.SellerRepository
	txManager repository.TransactionManager
	hasher    *password.Hasher
	audit     AuditService
	notifier  PermissionNotifier
	logger    *slog.Logger
}

func NewSellerService(
	repo repository.SellerRepository,
	txManager repository.TransactionManager,
	hasher *password.Hasher,
	audit AuditService,
	notifier PermissionNotifier,
	logger *slog.Logger,
) SellerService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &sellerService{
		repo:      repo,
		txManager: txManager,
		hasher:    hasher,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *sellerService) CreateSeller(ctx context.Context, actor principal.Admin, req CreateSellerRequest) (*SellerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	plan := model.PlanFree
	if strings.TrimSpace(req.SubscriptionPlan) != "" {
		if plan, err = parsePlan(req.SubscriptionPlan); err != nil {
			return nil, err
		}
	}
	status := model.SellerStatusActive
	if req.Status != "" {
		if status, err = parseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.SellerRoleOwner
	}

	allowed, err := normalizeServices(req.AllowedServices)
	if err != nil {
		return nil, err
	}

	seller := &model.Seller{
		Name:             name,
		VendorName:       strings.TrimSpace(req.VendorName),
		ContactName:      strings.TrimSpace(req.ContactName),
		Email:            email,
		Role:             role,
		Status:           status,
		SubscriptionPlan: plan,
		AllowedServices:  allowed,
	}
	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		seller.PasswordHash = &hash
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByEmail(txCtx, email)
		if err == nil && existing != nil {
			return apperror.Conflict("a seller with this email already exists")
		}
		if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
			return err
		}

		if err := s.repo.Create(txCtx, seller); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionCreateSeller,
			EntityType: model.EntitySeller,
			EntityID:   seller.ID.String(),
			Details:    map[string]any{"email": seller.Email, "subscription_plan": seller.SubscriptionPlan},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "seller created", "seller_id", seller.ID, "plan", seller.SubscriptionPlan)
	resp := toSellerResponse(seller)
	return &resp, nil
}

func (s *sellerService) GetSeller(ctx context.Context, id string) (*SellerResponse, error) {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return nil, err
	}
	seller, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	resp := toSellerResponse(seller)
	return &resp, nil
}

func (s *sellerService) ListSellers(ctx context.Context, filter repository.SellerFilter, page, limit int) ([]SellerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	sellers, total, err := s.repo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]SellerResponse, 0, len(sellers))
	for i := range sellers {
		res = append(res, toSellerResponse(&sellers[i]))
	}
	return res, total, nil
}

func (s *sellerService) UpdateSeller(ctx context.Context, actor principal.Admin, id string, req UpdateSellerRequest) (*SellerResponse, error) {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return nil, err
	}

	var (
		seller        *model.Seller
		statusChanged bool
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seller, err = s.repo.GetByIDForUpdate(txCtx, sellerID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperror.Validation("name cannot be empty")
			}
			seller.Name = name
		}
		if req.VendorName != nil {
			seller.VendorName = strings.TrimSpace(*req.VendorName)
		}
		if req.ContactName != nil {
			seller.ContactName = strings.TrimSpace(*req.ContactName)
		}
		if req.Role != nil && strings.TrimSpace(*req.Role) != "" {
			seller.Role = strings.ToUpper(strings.TrimSpace(*req.Role))
		}
		if req.Status != nil {
			status, err := parseStatus(*req.Status)
			if err != nil {
				return err
			}
			statusChanged = status != seller.Status
			seller.Status = status
		}
		if req.Email != nil {
			email, err := normalizeEmail(*req.Email)
			if err != nil {
				return err
			}
			if email != seller.Email {
				other, err := s.repo.GetByEmail(txCtx, email)
				if err == nil && other.ID != seller.ID {
					return apperror.Conflict("a seller with this email already exists")
				}
				if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
					return err
				}
				seller.Email = email
			}
		}

		if err := s.repo.Update(txCtx, seller); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionUpdateSeller,
			EntityType: model.EntitySeller,
			EntityID:   seller.ID.String(),
			Details:    req,
		})
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.notifier.NotifyPermissionsChanged(seller.ID.String())
	}
	resp := toSellerResponse(seller)
	return &resp, nil
}

func (s *sellerService) DeleteSeller(ctx context.Context, actor principal.Admin, id string) error {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, sellerID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionDeleteSeller,
			EntityType: model.EntitySeller,
			EntityID:   sellerID.String(),
		})
	})
	if err != nil {
		return err
	}
	s.notifier.NotifyPermissionsChanged(sellerID.String())
	return nil
}

func (s *sellerService) SetPassword(ctx context.Context, actor principal.Admin, id string, plain string) error {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return err
	}
	hash, err := s.hashPassword(plain)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seller, err := s.repo.GetByIDForUpdate(txCtx, sellerID)
		if err != nil {
			return err
		}
		seller.PasswordHash = &hash
		if err := s.repo.Update(txCtx, seller); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionSetSellerPassword,
			EntityType: model.EntitySeller,
			EntityID:   seller.ID.String(),
		})
	})
}

func (s *sellerService) UpdateAllowedServices(ctx context.Context, actor principal.Admin, id string, services []string) (*SellerResponse, error) {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return nil, err
	}

	allowed, err := normalizeServices(services)
	if err != nil {
		return nil, err
	}

	var seller *model.Seller
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seller, err = s.repo.GetByIDForUpdate(txCtx, sellerID)
		if err != nil {
			return err
		}
		seller.AllowedServices = allowed
		if err := s.repo.Update(txCtx, seller); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionUpdateAllowedServices,
			EntityType: model.EntitySeller,
			EntityID:   seller.ID.String(),
			Details:    map[string]any{"allowed_services": seller.AllowedServices},
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyPermissionsChanged(seller.ID.String())
	resp := toSellerResponse(seller)
	return &resp, nil
}

func (s *sellerService) UpdateSubscriptionPlan(ctx context.Context, actor principal.Admin, id string, rawPlan string) (*SellerResponse, error) {
	sellerID, err := parseID(id, "seller")
	if err != nil {
		return nil, err
	}
	plan, err := parsePlan(rawPlan)
	if err != nil {
		return nil, err
	}

	var seller *model.Seller
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seller, err = s.repo.GetByIDForUpdate(txCtx, sellerID)
		if err != nil {
			return err
		}
		previous := seller.SubscriptionPlan
		seller.SubscriptionPlan = plan
		seller.AllowedServices = permission.PlanDefaultsList(plan)
		if err := s.repo.Update(txCtx, seller); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionUpdateSubscriptionPlan,
			EntityType: model.EntitySeller,
			EntityID:   seller.ID.String(),
			Details:    map[string]any{"from": previous, "to": plan},
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyPermissionsChanged(seller.ID.String())
	resp := toSellerResponse(seller)
	return &resp, nil
}

func (s *sellerService) hashPassword(plain string) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", apperror.Validation("password must be at least 6 characters")
	}
	return s.hasher.Hash(plain)
}

// --- Helpers ---

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperror.Validation("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.Validation("invalid email address")
	}
	return email, nil
}

// normalizeServices cleans an allowed_services list. The admin wildcard is not a seller service.
func normalizeServices(services []string) ([]string, error) {
	out := normalizeCodes(services)
	for _, code := range out {
		if code == model.PermissionWildcard {
			return nil, apperror.Validation("allowed_services cannot contain '" + model.PermissionWildcard + "'")
		}
	}
	return out, nil
}

func parsePlan(raw string) (model.SubscriptionPlan, error) {
	plan := model.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(raw)))
	if !plan.Valid() {
		return "", apperror.Validation("subscription_plan must be one of FREE, BASIC, PRO, ENTERPRISE")
	}
	return plan, nil
}

func parseStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case model.SellerStatusActive, model.SellerStatusSuspended, model.SellerStatusDisabled:
		return status, nil
	default:
		return "", apperror.Validation("status must be one of active, suspended, disabled")
	}
}

func toSellerResponse(s *model.Seller) SellerResponse {
	allowed := []string(s.AllowedServices)
	if allowed == nil {
		allowed = []string{}
	}
	return SellerResponse{
		ID:                   s.ID.String(),
		Name:                 s.Name,
		VendorName:           s.VendorName,
		ContactName:          s.ContactName,
		Email:                s.Email,
		Role:                 s.Role,
		Status:               s.Status,
		SubscriptionPlan:     string(s.SubscriptionPlan),
		AllowedServices:      allowed,
		EffectivePermissions: permission.ForSeller(s).Slice(),
		HasPassword:          s.HasPassword(),
		CreatedAt:            formatTime(s.CreatedAt),
		UpdatedAt:            formatTime(s.UpdatedAt),
	}
}
