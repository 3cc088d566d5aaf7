package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"authgate/internal/apperror"
	"authgate/internal/model"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	CanLogin    *bool    `json:"can_login"` // defaults to true
	Permissions []string `json:"permissions"`
	Domains     []string `json:"domains"` // domain ids; empty = unrestricted
}

type UpdateRoleRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CanLogin    *bool     `json:"can_login"`
	Permissions *[]string `json:"permissions"`
	Domains     *[]string `json:"domains"`
}

type AssignRoleRequest struct {
	UserID   string  `json:"user_id" binding:"required"`
	RoleID   string  `json:"role_id" binding:"required"`
	DomainID *string `json:"domain_id"`
}

type CreateDomainRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

type RoleResponse struct {
	ID          string   `json:"id"`
	RoleKey     string   `json:"role_key"`
	RoleName    string   `json:"role_name"`
	Description *string  `json:"description"`
	CanLogin    bool     `json:"can_login"`
	Permissions []string `json:"permissions"`
	Domains     []string `json:"domains"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type AssignmentResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	RoleID     string  `json:"role_id"`
	RoleKey    string  `json:"role_key"`
	RoleName   string  `json:"role_name"`
	CanLogin   bool    `json:"can_login"`
	DomainID   *string `json:"domain_id"`
	DomainName *string `json:"domain_name"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type DomainResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
}

type EffectivePermissionsResponse struct {
	UserID      string   `json:"user_id"`
	DomainID    string   `json:"domain_id,omitempty"`
	CanLogin    bool     `json:"can_login"`
	AllGranted  bool     `json:"all_granted"`
	Permissions []string `json:"permissions"`
}

// --- Interface ---

type AdminRoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	// CreateRole upserts by role key: a name that normalizes to an existing key updates that role.
	CreateRole(ctx context.Context, actor principal.Admin, req CreateRoleRequest) (*RoleResponse, bool, error)
	UpdateRole(ctx context.Context, actor principal.Admin, id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, actor principal.Admin, id string) error

	AssignRole(ctx context.Context, actor principal.Admin, req AssignRoleRequest) (*AssignmentResponse, bool, error)
	RemoveAssignment(ctx context.Context, actor principal.Admin, id string) error
	ListRoleAssignments(ctx context.Context, userID string) ([]AssignmentResponse, error)
	GetRolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error)
	EffectivePermissions(ctx context.Context, userID, domainID string) (*EffectivePermissionsResponse, error)

	ListDomains(ctx context.Context) ([]DomainResponse, error)
	CreateDomain(ctx context.Context, actor principal.Admin, req CreateDomainRequest) (*DomainResponse, error)
	DeleteDomain(ctx context.Context, actor principal.Admin, id string) error

	SeedDefaultRoles(ctx context.Context) error
}

type adminRoleService struct {
	roles       repository.AdminRoleRepository
	assignments repository.AssignmentRepository
	domains     repository.DomainRepository
	txManager   repository.TransactionManager
	audit       AuditService
	logger      *slog.Logger
}

func NewAdminRoleService(
	roles repository.AdminRoleRepository,
	assignments repository.AssignmentRepository,
	domains repository.DomainRepository,
	txManager repository.TransactionManager,
	audit AuditService,
	logger *slog.Logger,
) AdminRoleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminRoleService{
		roles:       roles,
		assignments: assignments,
		domains:     domains,
		txManager:   txManager,
		audit:       audit,
		logger:      logger,
	}
}

// --- Roles ---

func (s *adminRoleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *adminRoleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := parseID(id, "role")
	if err != nil {
		return nil, err
	}
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *adminRoleService) CreateRole(ctx context.Context, actor principal.Admin, req CreateRoleRequest) (*RoleResponse, bool, error) {
	name := strings.TrimSpace(req.Name)
	key := permission.NormalizeRoleKey(name)
	if key == "" {
		return nil, false, apperror.Validation("role name must contain at least one letter or digit")
	}

	canLogin := true
	if req.CanLogin != nil {
		canLogin = *req.CanLogin
	}

	var (
		role    *model.AdminRole
		created bool
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		domains, err := s.normalizeDomains(txCtx, req.Domains)
		if err != nil {
			return err
		}

		existing, err := s.roles.FindByKey(txCtx, key)
		switch {
		case err == nil:
			role = existing
		case apperror.KindOf(err) == apperror.KindNotFound:
			role = &model.AdminRole{RoleKey: key}
			created = true
		default:
			return err
		}

		role.RoleName = name
		role.Description = trimOptional(req.Description)
		role.CanLogin = canLogin
		role.Permissions = normalizeCodes(req.Permissions)
		role.Domains = domains

		action := model.ActionUpdateRole
		if created {
			action = model.ActionCreateRole
			err = s.roles.Create(txCtx, role)
		} else {
			err = s.roles.Update(txCtx, role)
		}
		if err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     action,
			EntityType: model.EntityAdminRole,
			EntityID:   role.ID.String(),
			Details:    map[string]any{"role_key": role.RoleKey, "permissions": role.Permissions, "domains": role.Domains, "can_login": role.CanLogin},
		})
	})
	if err != nil {
		return nil, false, err
	}

	resp := toRoleResponse(*role)
	return &resp, created, nil
}

func (s *adminRoleService) UpdateRole(ctx context.Context, actor principal.Admin, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	roleID, err := parseID(id, "role")
	if err != nil {
		return nil, err
	}

	var role *model.AdminRole
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err = s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			key := permission.NormalizeRoleKey(name)
			if key == "" {
				return apperror.Validation("role name must contain at least one letter or digit")
			}
			if key != role.RoleKey {
				other, err := s.roles.FindByKey(txCtx, key)
				if err == nil && other.ID != role.ID {
					return apperror.Conflict("a role with key '" + key + "' already exists")
				}
				if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
					return err
				}
			}
			role.RoleName = name
			role.RoleKey = key
		}
		if req.Description != nil {
			role.Description = trimOptional(req.Description)
		}
		if req.CanLogin != nil {
			role.CanLogin = *req.CanLogin
		}
		if req.Permissions != nil {
			role.Permissions = normalizeCodes(*req.Permissions)
		}
		if req.Domains != nil {
			domains, err := s.normalizeDomains(txCtx, *req.Domains)
			if err != nil {
				return err
			}
			role.Domains = domains
		}

		if err := s.roles.Update(txCtx, role); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionUpdateRole,
			EntityType: model.EntityAdminRole,
			EntityID:   role.ID.String(),
			Details:    req,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(*role)
	return &resp, nil
}

// DeleteRole removes the role and, through the cascade, every assignment of it.
func (s *adminRoleService) DeleteRole(ctx context.Context, actor principal.Admin, id string) error {
	roleID, err := parseID(id, "role")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		role, err := s.roles.FindByID(txCtx, roleID)
		if err != nil {
			return err
		}
		if err := s.roles.Delete(txCtx, roleID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionDeleteRole,
			EntityType: model.EntityAdminRole,
			EntityID:   role.ID.String(),
			Details:    map[string]any{"role_key": role.RoleKey},
		})
	})
}

// --- Assignments ---

func (s *adminRoleService) AssignRole(ctx context.Context, actor principal.Admin, req AssignRoleRequest) (*AssignmentResponse, bool, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, false, apperror.Validation("user_id is required")
	}
	roleID, err := parseID(req.RoleID, "role")
	if err != nil {
		return nil, false, err
	}
	var domainID *uuid.UUID
	if req.DomainID != nil && strings.TrimSpace(*req.DomainID) != "" {
		parsed, err := parseID(*req.DomainID, "domain")
		if err != nil {
			return nil, false, err
		}
		domainID = &parsed
	}

	var (
		assignment *model.AdminRoleAssignment
		created    bool
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.FindByID(txCtx, roleID); err != nil {
			return err
		}
		if domainID != nil {
			if _, err := s.domains.FindByID(txCtx, *domainID); err != nil {
				return err
			}
		}

		row := &model.AdminRoleAssignment{UserID: userID, RoleID: roleID, DomainID: domainID}
		created, err = s.assignments.Upsert(txCtx, row)
		if err != nil {
			return err
		}
		assignment, err = s.assignments.FindByID(txCtx, row.ID)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionAssignRole,
			EntityType: model.EntityAssignment,
			EntityID:   row.ID.String(),
			Details:    map[string]any{"user_id": userID, "role_id": roleID.String(), "domain_id": uuidPtrString(domainID)},
		})
	})
	if err != nil {
		return nil, false, err
	}

	resp := toAssignmentResponse(*assignment)
	return &resp, created, nil
}

// RemoveAssignment deletes one assignment. When actors remove their own login-enabling
// assignment, their assignment rows are locked and the removal is refused if no other
// assignment would still grant login. Removing someone else's assignment is never refused.
// Remaining assignments are counted individually rather than as distinct roles, so the
// same login-enabled role still held in another domain is enough to allow the removal.
func (s *adminRoleService) RemoveAssignment(ctx context.Context, actor principal.Admin, id string) error {
	assignmentID, err := parseID(id, "role assignment")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		assignment, err := s.assignments.FindByID(txCtx, assignmentID)
		if err != nil {
			return err
		}

		if err := s.checkLastLoginRole(txCtx, actor, assignment); err != nil {
			return err
		}

		if err := s.assignments.Delete(txCtx, assignmentID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionRemoveAssignment,
			EntityType: model.EntityAssignment,
			EntityID:   assignmentID.String(),
			Details: map[string]any{
				"user_id":   assignment.UserID,
				"role_id":   assignment.RoleID.String(),
				"domain_id": uuidPtrString(assignment.DomainID),
			},
		})
	})
}

func (s *adminRoleService) checkLastLoginRole(ctx context.Context, actor principal.Admin, assignment *model.AdminRoleAssignment) error {
	if !actor.IsSelf(assignment.UserID) {
		if assignment.Role != nil && assignment.Role.CanLogin {
			s.logger.InfoContext(ctx, "removing login-enabled role from another operator",
				"actor_id", actor.UserID, "user_id", assignment.UserID, "role_id", assignment.RoleID)
		}
		return nil
	}
	if assignment.Role == nil || !assignment.Role.CanLogin {
		return nil
	}

	held, err := s.assignments.LockForUser(ctx, actor.UserID)
	if err != nil {
		return err
	}
	remaining := make([]model.AdminRole, 0, len(held))
	for _, a := range held {
		if a.ID == assignment.ID || a.Role == nil {
			continue
		}
		remaining = append(remaining, *a.Role)
	}
	if !permission.CanLogin(remaining) {
		return apperror.Validation("cannot remove last login-enabled role")
	}
	return nil
}

func (s *adminRoleService) ListRoleAssignments(ctx context.Context, userID string) ([]AssignmentResponse, error) {
	rows, err := s.assignments.List(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	res := make([]AssignmentResponse, 0, len(rows))
	for _, a := range rows {
		res = append(res, toAssignmentResponse(a))
	}
	return res, nil
}

func (s *adminRoleService) GetRolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.Validation("user_id is required")
	}
	return s.assignments.RolesForUser(ctx, userID)
}

func (s *adminRoleService) EffectivePermissions(ctx context.Context, userID, domainID string) (*EffectivePermissionsResponse, error) {
	roles, err := s.GetRolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	domainID = strings.TrimSpace(domainID)
	perms := permission.ForAdmin(roles, domainID)
	return &EffectivePermissionsResponse{
		UserID:      strings.TrimSpace(userID),
		DomainID:    domainID,
		CanLogin:    permission.CanLogin(roles),
		AllGranted:  perms.IsAll(),
		Permissions: perms.Slice(),
	}, nil
}

// --- Domains ---

func (s *adminRoleService) ListDomains(ctx context.Context) ([]DomainResponse, error) {
	domains, err := s.domains.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]DomainResponse, 0, len(domains))
	for _, d := range domains {
		res = append(res, toDomainResponse(d))
	}
	return res, nil
}

func (s *adminRoleService) CreateDomain(ctx context.Context, actor principal.Admin, req CreateDomainRequest) (*DomainResponse, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.ReplaceAll(permission.NormalizeRoleKey(req.Slug), "_", "-")
	if slug == "" {
		slug = strings.ReplaceAll(permission.NormalizeRoleKey(name), "_", "-")
	}
	if name == "" || slug == "" {
		return nil, apperror.Validation("domain name must contain at least one letter or digit")
	}

	d := &model.Domain{Name: name, Slug: slug}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.domains.Create(txCtx, d); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionCreateDomain,
			EntityType: model.EntityDomain,
			EntityID:   d.ID.String(),
			Details:    map[string]any{"name": d.Name, "slug": d.Slug},
		})
	})
	if err != nil {
		return nil, err
	}
	resp := toDomainResponse(*d)
	return &resp, nil
}

// DeleteDomain refuses with Conflict while any role lists the domain.
// Scoped assignments go with the domain through the cascade.
func (s *adminRoleService) DeleteDomain(ctx context.Context, actor principal.Admin, id string) error {
	domainID, err := parseID(id, "domain")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.domains.FindByIDForUpdate(txCtx, domainID); err != nil {
			return err
		}
		referencing, err := s.roles.ListByDomain(txCtx, domainID.String())
		if err != nil {
			return err
		}
		if len(referencing) > 0 {
			keys := make([]string, 0, len(referencing))
			for _, r := range referencing {
				keys = append(keys, r.RoleKey)
			}
			return apperror.Conflict("domain is still referenced by roles: " + strings.Join(keys, ", "))
		}
		if err := s.domains.Delete(txCtx, domainID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, AuditEntry{
			ActorID:    actor.AuditID(),
			Action:     model.ActionDeleteDomain,
			EntityType: model.EntityDomain,
			EntityID:   domainID.String(),
		})
	})
}

// SeedDefaultRoles creates the built-in operator roles. Re-running it updates them in place.
func (s *adminRoleService) SeedDefaultRoles(ctx context.Context) error {
	defaults := []CreateRoleRequest{
		{
			Name:        "Super Admin",
			Description: strPtr("Full access to every operator action"),
			Permissions: []string{model.PermissionWildcard},
		},
		{
			Name:        "Access Manager",
			Description: strPtr("Manages operator roles, assignments and domains"),
			Permissions: []string{permission.AdminRolesRead, permission.AdminRolesManage, permission.AdminDomainsManage, permission.AdminAuditRead},
		},
		{
			Name:        "Seller Manager",
			Description: strPtr("Onboards sellers and manages their plans and services"),
			Permissions: []string{permission.AdminSellersRead, permission.AdminSellersManage},
		},
		{
			Name:        "Auditor",
			Description: strPtr("Read-only access to roles, sellers and the audit log"),
			CanLogin:    boolPtr(false),
			Permissions: []string{permission.AdminRolesRead, permission.AdminSellersRead, permission.AdminAuditRead},
		},
	}
	for _, req := range defaults {
		if _, _, err := s.CreateRole(ctx, principal.System, req); err != nil {
			return err
		}
	}
	return nil
}

// --- Helpers ---

func (s *adminRoleService) normalizeDomains(ctx context.Context, ids []string) ([]string, error) {
	out := normalizeCodes(ids)
	for _, id := range out {
		domainID, err := uuid.Parse(id)
		if err != nil {
			return nil, apperror.Validation("invalid domain id '" + id + "'")
		}
		if _, err := s.domains.FindByIDForShare(ctx, domainID); err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return nil, apperror.Validation("unknown domain '" + id + "'")
			}
			return nil, err
		}
	}
	return out, nil
}

// normalizeCodes trims, drops empties, de-duplicates and sorts.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func parseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + entity + " id")
	}
	return id, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toRoleResponse(r model.AdminRole) RoleResponse {
	perms := []string(r.Permissions)
	if perms == nil {
		perms = []string{}
	}
	domains := []string(r.Domains)
	if domains == nil {
		domains = []string{}
	}
	return RoleResponse{
		ID:          r.ID.String(),
		RoleKey:     r.RoleKey,
		RoleName:    r.RoleName,
		Description: r.Description,
		CanLogin:    r.CanLogin,
		Permissions: perms,
		Domains:     domains,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}

func toAssignmentResponse(a model.AdminRoleAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:        a.ID.String(),
		UserID:    a.UserID,
		RoleID:    a.RoleID.String(),
		DomainID:  uuidPtrString(a.DomainID),
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
	if a.Role != nil {
		resp.RoleKey = a.Role.RoleKey
		resp.RoleName = a.Role.RoleName
		resp.CanLogin = a.Role.CanLogin
	}
	if a.Domain != nil {
		name := a.Domain.Name
		resp.DomainName = &name
	}
	return resp
}

func toDomainResponse(d model.Domain) DomainResponse {
	return DomainResponse{
		ID:        d.ID.String(),
		Name:      d.Name,
		Slug:      d.Slug,
		CreatedAt: formatTime(d.CreatedAt),
	}
}
