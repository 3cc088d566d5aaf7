// Package token issues and verifies the signed, stateless seller bearer tokens.
//
// Two claim shapes are accepted. Current tokens carry subject_id, display_name, role and
// a permission snapshot. Legacy tokens, minted before the format change, carry seller_id,
// email, subscription_plan, allowed_services and status. Verify tries the current shape
// first and falls back to the legacy one only when the current decode fails. Callers that
// accept a legacy token must re-check the seller's status live, see Decoded.NeedsLiveCheck.
package token

import (
	"errors"
	"fmt"
	"time"

	"authgate/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a freshly issued token.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the current token shape.
type Claims struct {
	SubjectID        string   `json:"subject_id"`
	DisplayName      string   `json:"display_name"`
	Role             string   `json:"role"`
	Permissions      []string `json:"permissions"`
	SubscriptionPlan string   `json:"subscription_plan,omitempty"`
	jwt.RegisteredClaims
}

// LegacyClaims is the pre-migration token shape.
type LegacyClaims struct {
	SellerID         string   `json:"seller_id"`
	Email            string   `json:"email"`
	SubscriptionPlan string   `json:"subscription_plan"`
	AllowedServices  []string `json:"allowed_services"`
	Status           string   `json:"status"`
	jwt.RegisteredClaims
}

// Format tags which claim shape a token decoded as.
type Format int

const (
	FormatCurrent Format = iota + 1
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatCurrent:
		return "current"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Decoded is the result of Decode. Exactly one of Current and Legacy is set, matching Format.
type Decoded struct {
	Format  Format
	Current *Claims
	Legacy  *LegacyClaims
}

// SubjectID returns the seller id regardless of format.
func (d Decoded) SubjectID() string {
	switch d.Format {
	case FormatCurrent:
		return d.Current.SubjectID
	case FormatLegacy:
		return d.Legacy.SellerID
	}
	return ""
}

// NeedsLiveCheck reports whether the holder's account status must be re-read from the store.
func (d Decoded) NeedsLiveCheck() bool {
	return d.Format == FormatLegacy
}

// Subject is what gets embedded into a new token.
type Subject struct {
	ID               string
	DisplayName      string
	Role             string
	SubscriptionPlan string
	Permissions      []string
}

// Options configure a Service.
type Options struct {
	Secret       []byte
	LegacySecret []byte // defaults to Secret
	TTL          time.Duration
	// LegacyMaxAge bounds legacy tokens that carry iat but no exp. Defaults to TTL.
	LegacyMaxAge time.Duration
	Issuer       string
	Now          func() time.Time
}

// Service signs and verifies tokens with a shared HMAC secret.
type Service struct {
	secret       []byte
	legacySecret []byte
	ttl          time.Duration
	legacyMaxAge time.Duration
	issuer       string
	now          func() time.Time
}

func NewService(opts Options) (*Service, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	if opts.LegacySecret == nil {
		opts.LegacySecret = opts.Secret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.LegacyMaxAge <= 0 {
		opts.LegacyMaxAge = opts.TTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		secret:       opts.Secret,
		legacySecret: opts.LegacySecret,
		ttl:          opts.TTL,
		legacyMaxAge: opts.LegacyMaxAge,
		issuer:       opts.Issuer,
		now:          opts.Now,
	}, nil
}

// Issue signs a current-format token for subject.
func (s *Service) Issue(subject Subject) (string, *Claims, error) {
	if subject.ID == "" {
		return "", nil, apperror.Validation("token subject is required")
	}
	now := s.now()
	perms := subject.Permissions
	if perms == nil {
		perms = []string{}
	}
	claims := &Claims{
		SubjectID:        subject.ID,
		DisplayName:      subject.DisplayName,
		Role:             subject.Role,
		Permissions:      perms,
		SubscriptionPlan: subject.SubscriptionPlan,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify accepts only current-format tokens.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if _, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc(s.secret), opts...); err != nil {
		return nil, apperror.InvalidToken("invalid token", err)
	}
	if claims.SubjectID == "" {
		return nil, apperror.InvalidToken("invalid token", errors.New("missing subject_id claim"))
	}
	return claims, nil
}

// VerifyLegacy accepts only legacy-format tokens. A token needs exp, or iat no older
// than the legacy max age; one carrying neither is rejected.
func (s *Service) VerifyLegacy(tokenString string) (*LegacyClaims, error) {
	claims := &LegacyClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc(s.legacySecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperror.InvalidToken("invalid token", err)
	}
	if claims.SellerID == "" {
		return nil, apperror.InvalidToken("invalid token", errors.New("missing seller_id claim"))
	}
	if claims.ExpiresAt == nil {
		if claims.IssuedAt == nil {
			return nil, apperror.InvalidToken("invalid token", errors.New("legacy token has neither exp nor iat"))
		}
		if s.now().Sub(claims.IssuedAt.Time) > s.legacyMaxAge {
			return nil, apperror.InvalidToken("invalid token", jwt.ErrTokenExpired)
		}
	}
	return claims, nil
}

// Decode tries the current format, then the legacy one.
func (s *Service) Decode(tokenString string) (Decoded, error) {
	current, currentErr := s.Verify(tokenString)
	if currentErr == nil {
		return Decoded{Format: FormatCurrent, Current: current}, nil
	}
	legacy, legacyErr := s.VerifyLegacy(tokenString)
	if legacyErr == nil {
		return Decoded{Format: FormatLegacy, Legacy: legacy}, nil
	}
	return Decoded{}, apperror.InvalidToken("invalid token", errors.Join(currentErr, legacyErr))
}

// TTL is the lifetime applied to issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}
}
