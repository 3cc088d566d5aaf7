package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"authgate/internal/apperror"
	"authgate/internal/model"
	"authgate/internal/password"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/internal/ratelimit"
	"authgate/internal/repository"
	"authgate/internal/token"

	"github.com/google/uuid"
)

// errInvalidCredentials is the only error a failed login ever surfaces.
var errInvalidCredentials = apperror.Authentication("invalid email or password")

// --- DTOs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Token string `json:"token"`
}

type TokenClaimsResponse struct {
	SubjectID        string   `json:"subject_id"`
	DisplayName      string   `json:"display_name"`
	Role             string   `json:"role"`
	SubscriptionPlan string   `json:"subscription_plan,omitempty"`
	Permissions      []string `json:"permissions"`
}

type LoginResponse struct {
	Token     string              `json:"token"`
	TokenType string              `json:"token_type"`
	ExpiresAt string              `json:"expires_at"`
	Seller    TokenClaimsResponse `json:"seller"`
}

type ProfileResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	VendorName       string   `json:"vendor_name"`
	ContactName      string   `json:"contact_name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Status           string   `json:"status"`
	SubscriptionPlan string   `json:"subscription_plan"`
	AllowedServices  []string `json:"allowed_services"`
	Permissions      []string `json:"permissions"`
}

// LoginThrottle bounds login attempts per email and per client IP within Window.
type LoginThrottle struct {
	Limit  int
	Window time.Duration
}

// --- Interface ---

type SellerAuthService interface {
	Login(ctx context.Context, email, plain, clientIP string) (*LoginResponse, error)
	// Authenticate verifies a bearer token. Current-format tokens never touch the store;
	// legacy tokens are accepted only while the seller is still active.
	Authenticate(ctx context.Context, tokenString string) (*principal.Seller, error)
	// Profile re-resolves permissions from the store rather than from any token.
	Profile(ctx context.Context, sellerID string) (*ProfileResponse, error)
	Refresh(ctx context.Context, tokenString string) (*LoginResponse, error)
}

type sellerAuthService struct {
	repo     repository.SellerRepository
	hasher   *password.Hasher
	tokens   *token.Service
	limiter  ratelimit.Limiter
	throttle LoginThrottle
	audit    AuditService
	logger   *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewSellerAuthService(
	repo repository.SellerRepository,
	hasher *password.Hasher,
	tokens *token.Service,
	limiter ratelimit.Limiter,
	throttle LoginThrottle,
	audit AuditService,
	logger *slog.Logger,
) SellerAuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sellerAuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		throttle: throttle,
		audit:    audit,
		logger:   logger,
	}
}

func (s *sellerAuthService) Login(ctx context.Context, rawEmail, plain, clientIP string) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))
	if email == "" || plain == "" {
		return nil, errInvalidCredentials
	}

	if err := s.checkThrottle(ctx, email, clientIP); err != nil {
		return nil, err
	}

	seller, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) != apperror.KindNotFound {
			return nil, err
		}
		// Burn comparable time so unknown emails are not distinguishable by latency.
		_ = s.hasher.Verify(plain, s.dummy())
		s.recordFailure(ctx, nil, email, clientIP, "unknown_email")
		return nil, errInvalidCredentials
	}
	if !seller.IsActive() {
		s.recordFailure(ctx, seller, email, clientIP, "inactive")
		return nil, errInvalidCredentials
	}
	if !seller.HasPassword() {
		s.recordFailure(ctx, seller, email, clientIP, "password_not_provisioned")
		return nil, errInvalidCredentials
	}

	if err := s.hasher.Verify(plain, *seller.PasswordHash); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.ErrorContext(ctx, "stored password hash unusable", "seller_id", seller.ID, "error", err)
		}
		s.recordFailure(ctx, seller, email, clientIP, "wrong_password")
		return nil, errInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, emailThrottleKey(email)); err != nil {
			s.logger.WarnContext(ctx, "reset login throttle failed", "error", err)
		}
	}
	s.upgradeHash(ctx, seller, plain)

	s.logger.InfoContext(ctx, "seller logged in", "seller_id", seller.ID)
	return s.issue(seller)
}

func (s *sellerAuthService) Authenticate(ctx context.Context, tokenString string) (*principal.Seller, error) {
	decoded, err := s.tokens.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if !decoded.NeedsLiveCheck() {
		c := decoded.Current
		return &principal.Seller{
			ID:               c.SubjectID,
			Name:             c.DisplayName,
			Role:             c.Role,
			SubscriptionPlan: c.SubscriptionPlan,
			AllowedServices:  c.Permissions,
			Permissions:      permission.NewSet(c.Permissions...),
			TokenFormat:      decoded.Format.String(),
		}, nil
	}

	seller, err := s.liveSeller(ctx, decoded.SubjectID())
	if err != nil {
		return nil, err
	}
	perms := permission.ForSeller(seller)
	return &principal.Seller{
		ID:               seller.ID.String(),
		Name:             seller.Name,
		Role:             seller.Role,
		SubscriptionPlan: string(seller.SubscriptionPlan),
		AllowedServices:  perms.Slice(),
		Permissions:      perms,
		TokenFormat:      decoded.Format.String(),
	}, nil
}

func (s *sellerAuthService) Profile(ctx context.Context, sellerID string) (*ProfileResponse, error) {
	id, err := parseID(sellerID, "seller")
	if err != nil {
		return nil, err
	}
	seller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := []string(seller.AllowedServices)
	if allowed == nil {
		allowed = []string{}
	}
	return &ProfileResponse{
		ID:               seller.ID.String(),
		Name:             seller.Name,
		VendorName:       seller.VendorName,
		ContactName:      seller.ContactName,
		Email:            seller.Email,
		Role:             seller.Role,
		Status:           seller.Status,
		SubscriptionPlan: string(seller.SubscriptionPlan),
		AllowedServices:  allowed,
		Permissions:      permission.ForSeller(seller).Slice(),
	}, nil
}

// Refresh exchanges any valid token, current or legacy, for a fresh current-format one.
func (s *sellerAuthService) Refresh(ctx context.Context, tokenString string) (*LoginResponse, error) {
	decoded, err := s.tokens.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	seller, err := s.liveSeller(ctx, decoded.SubjectID())
	if err != nil {
		return nil, err
	}
	return s.issue(seller)
}

// liveSeller loads the token holder and requires the account to still be active.
func (s *sellerAuthService) liveSeller(ctx context.Context, sellerID string) (*model.Seller, error) {
	id, err := uuid.Parse(sellerID)
	if err != nil {
		return nil, apperror.InvalidToken("invalid token", err)
	}
	seller, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.InvalidToken("invalid token", err)
		}
		return nil, err
	}
	if !seller.IsActive() {
		return nil, apperror.InvalidToken("invalid token", errors.New("seller is not active"))
	}
	return seller, nil
}

func (s *sellerAuthService) issue(seller *model.Seller) (*LoginResponse, error) {
	signed, claims, err := s.tokens.Issue(token.Subject{
		ID:               seller.ID.String(),
		DisplayName:      seller.Name,
		Role:             seller.Role,
		SubscriptionPlan: string(seller.SubscriptionPlan),
		Permissions:      permission.ForSeller(seller).Slice(),
	})
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		Seller: TokenClaimsResponse{
			SubjectID:        claims.SubjectID,
			DisplayName:      claims.DisplayName,
			Role:             claims.Role,
			SubscriptionPlan: claims.SubscriptionPlan,
			Permissions:      claims.Permissions,
		},
	}, nil
}

func (s *sellerAuthService) checkThrottle(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil || s.throttle.Limit <= 0 {
		return nil
	}
	keys := []string{emailThrottleKey(email)}
	if clientIP != "" {
		keys = append(keys, "login:ip:"+clientIP)
	}
	for _, key := range keys {
		decision, err := s.limiter.Allow(ctx, key, s.throttle.Limit, s.throttle.Window)
		if err != nil {
			// Fail open when the counter store is unreachable.
			s.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
			return nil
		}
		if !decision.Allowed {
			return apperror.RateLimited("too many login attempts, try again later")
		}
	}
	return nil
}

// upgradeHash replaces bcrypt or outdated argon2id hashes after a successful login.
// Only the hash column is written, and only if it still holds the verified value.
func (s *sellerAuthService) upgradeHash(ctx context.Context, seller *model.Seller, plain string) {
	if !s.hasher.NeedsRehash(*seller.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		s.logger.WarnContext(ctx, "password rehash failed", "seller_id", seller.ID, "error", err)
		return
	}
	swapped, err := s.repo.UpdatePasswordHash(ctx, seller.ID, *seller.PasswordHash, hash)
	if err != nil {
		s.logger.WarnContext(ctx, "store rehashed password failed", "seller_id", seller.ID, "error", err)
		return
	}
	if !swapped {
		s.logger.DebugContext(ctx, "password changed during login, rehash skipped", "seller_id", seller.ID)
	}
}

func (s *sellerAuthService) recordFailure(ctx context.Context, seller *model.Seller, email, clientIP, reason string) {
	entityID := ""
	if seller != nil {
		entityID = seller.ID.String()
	}
	err := s.audit.Record(ctx, AuditEntry{
		ActorID:    "anonymous",
		Action:     model.ActionSellerLoginFailed,
		EntityType: model.EntitySeller,
		EntityID:   entityID,
		Details:    map[string]any{"email": email, "ip": clientIP, "reason": reason},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "record failed login", "error", err)
	}
	s.logger.InfoContext(ctx, "seller login failed", "reason", reason, "client_ip", clientIP)
}

func (s *sellerAuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

func emailThrottleKey(email string) string {
	return "login:email:" + email
}
