// Package token mints and validates the signed bearer tokens that scope an
// authenticated administrator to exactly one organization.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"orgsvc/pkg/ident"
)

// Validation failures are distinguished internally for logging and tests.
// The HTTP boundary collapses all of them into one generic 401 so a caller
// cannot tell which check failed.
var (
	ErrInvalidSignature = errors.New("token: invalid signature")
	ErrExpired          = errors.New("token: expired")
	ErrMalformedClaims  = errors.New("token: malformed claims")
)

const orgClaim = "org_id"

// Claims is the decoded, validated content of a token.
type Claims struct {
	SubjectID ident.ID // administrator
	TenantID  ident.ID // organization the token is scoped to
}

// Service signs and verifies tokens with a single deployment-configured
// HMAC secret. The secret never derives from request data.
type Service struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

func NewService(secret string, defaultTTL time.Duration) *Service {
	return &Service{secret: []byte(secret), defaultTTL: defaultTTL, now: time.Now}
}

// Issue mints a token with the configured default TTL.
func (s *Service) Issue(subjectID, tenantID ident.ID) (string, error) {
	return s.IssueWithTTL(subjectID, tenantID, s.defaultTTL)
}

// IssueWithTTL mints a token expiring at now+ttl. A zero or negative ttl
// produces a token that is already expired.
func (s *Service) IssueWithTTL(subjectID, tenantID ident.ID, ttl time.Duration) (string, error) {
	now := s.now()
	tok, err := jwt.NewBuilder().
		Subject(subjectID.String()).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Claim(orgClaim, tenantID.String()).
		Build()
	if err != nil {
		return "", fmt.Errorf("token build: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("token sign: %w", err)
	}
	return string(signed), nil
}

// Validate verifies the signature, checks expiry, and decodes the subject
// and organization claims.
func (s *Service) Validate(raw string) (Claims, error) {
	// A token without an expiry would be valid forever; treat absent
	// required claims the same as undecodable ones.
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(s.now)),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithRequiredClaim(jwt.SubjectKey),
		jwt.WithRequiredClaim(orgClaim),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired()):
			return Claims{}, ErrExpired
		case jwt.IsValidationError(err):
			return Claims{}, ErrMalformedClaims
		default:
			return Claims{}, ErrInvalidSignature
		}
	}

	sub := tok.Subject()
	org, ok := tok.Get(orgClaim)
	if sub == "" || !ok {
		return Claims{}, ErrMalformedClaims
	}
	subjectID, err := ident.Parse(sub)
	if err != nil {
		return Claims{}, ErrMalformedClaims
	}
	orgStr, ok := org.(string)
	if !ok {
		return Claims{}, ErrMalformedClaims
	}
	tenantID, err := ident.Parse(orgStr)
	if err != nil {
		return Claims{}, ErrMalformedClaims
	}
	return Claims{SubjectID: subjectID, TenantID: tenantID}, nil
}
