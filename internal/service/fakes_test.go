package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"authgate/internal/apperror"
	"authgate/internal/model"
	"authgate/internal/password"
	"authgate/internal/ratelimit"
	"authgate/internal/repository"
	"authgate/internal/token"

	"github.com/google/uuid"
)

// fakeStore backs every fake repository so cascades behave like the real schema.
type fakeStore struct {
	mu          sync.Mutex
	roles       map[uuid.UUID]model.AdminRole
	assignments map[uuid.UUID]model.AdminRoleAssignment
	domains     map[uuid.UUID]model.Domain
	sellers     map[uuid.UUID]model.Seller
	audits      []model.AuditLog
	clock       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:       make(map[uuid.UUID]model.AdminRole),
		assignments: make(map[uuid.UUID]model.AdminRoleAssignment),
		domains:     make(map[uuid.UUID]model.Domain),
		sellers:     make(map[uuid.UUID]model.Seller),
		clock:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick must be called with mu held.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.audits))
	for _, a := range s.audits {
		out = append(out, a.Action)
	}
	return out
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- roles ---

type fakeRoleRepo struct{ s *fakeStore }

func (r fakeRoleRepo) Create(_ context.Context, role *model.AdminRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.RoleKey == role.RoleKey {
			return apperror.Conflict("admin role already exists")
		}
	}
	role.ID = uuid.New()
	role.CreatedAt = r.s.tick()
	role.UpdatedAt = role.CreatedAt
	r.s.roles[role.ID] = *role
	return nil
}

func (r fakeRoleRepo) Update(_ context.Context, role *model.AdminRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[role.ID]; !ok {
		return apperror.NotFound("admin role not found")
	}
	for id, existing := range r.s.roles {
		if id != role.ID && existing.RoleKey == role.RoleKey {
			return apperror.Conflict("admin role already exists")
		}
	}
	role.UpdatedAt = r.s.tick()
	r.s.roles[role.ID] = *role
	return nil
}

func (r fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[id]; !ok {
		return apperror.NotFound("admin role not found")
	}
	delete(r.s.roles, id)
	for aid, a := range r.s.assignments {
		if a.RoleID == id {
			delete(r.s.assignments, aid)
		}
	}
	return nil
}

func (r fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AdminRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, apperror.NotFound("admin role not found")
	}
	return &role, nil
}

func (r fakeRoleRepo) FindByKey(_ context.Context, key string) (*model.AdminRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.RoleKey == key {
			return &role, nil
		}
	}
	return nil, apperror.NotFound("admin role not found")
}

func (r fakeRoleRepo) ListAll(_ context.Context) ([]model.AdminRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.AdminRole, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleName < out[j].RoleName })
	return out, nil
}

// --- assignments ---

type fakeAssignmentRepo struct{ s *fakeStore }

func sameDomain(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// hydrate must be called with mu held.
func (r fakeAssignmentRepo) hydrate(a model.AdminRoleAssignment) model.AdminRoleAssignment {
	if role, ok := r.s.roles[a.RoleID]; ok {
		a.Role = &role
	}
	if a.DomainID != nil {
		if d, ok := r.s.domains[*a.DomainID]; ok {
			a.Domain = &d
		}
	}
	return a
}

func (r fakeAssignmentRepo) Upsert(_ context.Context, a *model.AdminRoleAssignment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.assignments {
		if existing.UserID == a.UserID && existing.RoleID == a.RoleID && sameDomain(existing.DomainID, a.DomainID) {
			existing.UpdatedAt = r.s.tick()
			r.s.assignments[id] = existing
			*a = existing
			return false, nil
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Role, stored.Domain = nil, nil
	r.s.assignments[a.ID] = stored
	return true, nil
}

func (r fakeAssignmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.AdminRoleAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperror.NotFound("role assignment not found")
	}
	a = r.hydrate(a)
	return &a, nil
}

func (r fakeAssignmentRepo) FindByTriple(_ context.Context, userID string, roleID uuid.UUID, domainID *uuid.UUID) (*model.AdminRoleAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.UserID == userID && a.RoleID == roleID && sameDomain(a.DomainID, domainID) {
			return &a, nil
		}
	}
	return nil, apperror.NotFound("role assignment not found")
}

func (r fakeAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return apperror.NotFound("role assignment not found")
	}
	delete(r.s.assignments, id)
	return nil
}

func (r fakeAssignmentRepo) List(_ context.Context, userID string) ([]model.AdminRoleAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AdminRoleAssignment
	for _, a := range r.s.assignments {
		if userID != "" && a.UserID != userID {
			continue
		}
		out = append(out, r.hydrate(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Role.RoleName != out[j].Role.RoleName {
			return out[i].Role.RoleName < out[j].Role.RoleName
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r fakeAssignmentRepo) LockForUser(ctx context.Context, userID string) ([]model.AdminRoleAssignment, error) {
	return r.List(ctx, userID)
}

func (r fakeAssignmentRepo) RolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error) {
	rows, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.AdminRole, 0, len(rows))
	for _, a := range rows {
		out = append(out, *a.Role)
	}
	return out, nil
}

func (r fakeRoleRepo) ListByDomain(_ context.Context, domainID string) ([]model.AdminRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AdminRole
	for _, role := range r.s.roles {
		for _, d := range role.Domains {
			if d == domainID {
				out = append(out, role)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoleName < out[j].RoleName })
	return out, nil
}

// --- domains ---

type fakeDomainRepo struct{ s *fakeStore }

func (r fakeDomainRepo) Create(_ context.Context, d *model.Domain) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.domains {
		if existing.Slug == d.Slug {
			return apperror.Conflict("domain already exists")
		}
	}
	d.ID = uuid.New()
	d.CreatedAt = r.s.tick()
	r.s.domains[d.ID] = *d
	return nil
}

func (r fakeDomainRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Domain, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.domains[id]
	if !ok {
		return nil, apperror.NotFound("domain not found")
	}
	return &d, nil
}

func (r fakeDomainRepo) FindByIDForShare(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	return r.FindByID(ctx, id)
}

func (r fakeDomainRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Domain, error) {
	return r.FindByID(ctx, id)
}

func (r fakeDomainRepo) FindBySlug(_ context.Context, slug string) (*model.Domain, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.domains {
		if d.Slug == slug {
			return &d, nil
		}
	}
	return nil, apperror.NotFound("domain not found")
}

func (r fakeDomainRepo) ListAll(_ context.Context) ([]model.Domain, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Domain, 0, len(r.s.domains))
	for _, d := range r.s.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeDomainRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.domains[id]; !ok {
		return apperror.NotFound("domain not found")
	}
	delete(r.s.domains, id)
	for aid, a := range r.s.assignments {
		if a.DomainID != nil && *a.DomainID == id {
			delete(r.s.assignments, aid)
		}
	}
	return nil
}

// --- sellers ---

type fakeSellerRepo struct{ s *fakeStore }

func (r fakeSellerRepo) Create(_ context.Context, seller *model.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sellers {
		if strings.EqualFold(existing.Email, seller.Email) {
			return apperror.Conflict("seller already exists")
		}
	}
	seller.ID = uuid.New()
	seller.CreatedAt = r.s.tick()
	seller.UpdatedAt = seller.CreatedAt
	r.s.sellers[seller.ID] = *seller
	return nil
}

func (r fakeSellerRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seller, ok := r.s.sellers[id]
	if !ok {
		return nil, apperror.NotFound("seller not found")
	}
	return &seller, nil
}

func (r fakeSellerRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Seller, error) {
	return r.GetByID(ctx, id)
}

func (r fakeSellerRepo) GetByEmail(_ context.Context, email string) (*model.Seller, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, seller := range r.s.sellers {
		if strings.ToLower(seller.Email) == email {
			return &seller, nil
		}
	}
	return nil, apperror.NotFound("seller not found")
}

func (r fakeSellerRepo) List(_ context.Context, filter repository.SellerFilter, offset, limit int) ([]model.Seller, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []model.Seller
	for _, seller := range r.s.sellers {
		if filter.Status != "" && seller.Status != filter.Status {
			continue
		}
		if filter.Plan != "" && seller.SubscriptionPlan != filter.Plan {
			continue
		}
		all = append(all, seller)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Seller{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r fakeSellerRepo) Update(_ context.Context, seller *model.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sellers[seller.ID]; !ok {
		return apperror.NotFound("seller not found")
	}
	seller.UpdatedAt = r.s.tick()
	r.s.sellers[seller.ID] = *seller
	return nil
}

func (r fakeSellerRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, oldHash, newHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seller, ok := r.s.sellers[id]
	if !ok || seller.PasswordHash == nil || *seller.PasswordHash != oldHash {
		return false, nil
	}
	seller.PasswordHash = &newHash
	seller.UpdatedAt = r.s.tick()
	r.s.sellers[id] = seller
	return true, nil
}

func (r fakeSellerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sellers[id]; !ok {
		return apperror.NotFound("seller not found")
	}
	delete(r.s.sellers, id)
	return nil
}

// --- audit ---

type fakeAuditRepo struct{ s *fakeStore }

func (r fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = r.s.tick()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditLog
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		a := r.s.audits[i]
		if filter.ActorID != "" && a.ActorID != filter.ActorID {
			continue
		}
		if filter.EntityType != "" && a.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && a.EntityID != filter.EntityID {
			continue
		}
		out = append(out, a)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.AuditLog{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// --- notifier ---

type recordingNotifier struct {
	mu  sync.Mutex
	ids []string
}

func (n *recordingNotifier) NotifyPermissionsChanged(sellerID string) {
	n.mu.Lock()
	n.ids = append(n.ids, sellerID)
	n.mu.Unlock()
}

func (n *recordingNotifier) count(sellerID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, id := range n.ids {
		if id == sellerID {
			c++
		}
	}
	return c
}

// --- wiring ---

var testHasherParams = password.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

const testTokenSecret = "test-signing-secret"

type testEnvOptions struct {
	limiter  ratelimit.Limiter
	throttle LoginThrottle
}

func withThrottle(limit int) func(*testEnvOptions) {
	return func(o *testEnvOptions) {
		o.limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{})
		o.throttle = LoginThrottle{Limit: limit, Window: time.Minute}
	}
}

type testEnv struct {
	store    *fakeStore
	roles    AdminRoleService
	sellers  SellerService
	auth     SellerAuthService
	audit    AuditService
	tokens   *token.Service
	hasher   *password.Hasher
	notifier *recordingNotifier
}

func newTestEnv(t interface{ Fatalf(string, ...any) }, opts ...func(*testEnvOptions)) *testEnv {
	o := testEnvOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	store := newFakeStore()
	audit := NewAuditService(fakeAuditRepo{store})
	hasher := password.NewHasher(testHasherParams)
	tokens, err := token.NewService(token.Options{Secret: []byte(testTokenSecret)})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	notifier := &recordingNotifier{}

	return &testEnv{
		store:    store,
		roles:    NewAdminRoleService(fakeRoleRepo{store}, fakeAssignmentRepo{store}, fakeDomainRepo{store}, fakeTxManager{}, audit, nil),
		sellers:  NewSellerService(fakeSellerRepo{store}, fakeTxManager{}, hasher, audit, notifier, nil),
		auth:     NewSellerAuthService(fakeSellerRepo{store}, hasher, tokens, o.limiter, o.throttle, audit, nil),
		audit:    audit,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
	}
}

func repositorySellerFilter(status string, plan model.SubscriptionPlan) repository.SellerFilter {
	return repository.SellerFilter{Status: status, Plan: plan}
}
