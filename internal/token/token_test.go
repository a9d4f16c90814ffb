package token

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgsvc/pkg/ident"
)

const testSecret = "unit-test-signing-secret"

func newTestService(ttl time.Duration) *Service {
	return NewService(testSecret, ttl)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestService(30 * time.Minute)
	sub, org := ident.New(), ident.New()

	raw, err := svc.Issue(sub, org)
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, sub, claims.SubjectID)
	assert.Equal(t, org, claims.TenantID)
}

func TestZeroTTLIsImmediatelyExpired(t *testing.T) {
	svc := newTestService(30 * time.Minute)
	raw, err := svc.IssueWithTTL(ident.New(), ident.New(), 0)
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestExpiryAdvancesWithClock(t *testing.T) {
	svc := newTestService(time.Minute)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	raw, err := svc.Issue(ident.New(), ident.New())
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := newTestService(30 * time.Minute)
	raw, err := svc.Issue(ident.New(), ident.New())
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWrongSecretRejected(t *testing.T) {
	other := NewService("some-other-secret", 30*time.Minute)
	raw, err := other.Issue(ident.New(), ident.New())
	require.NoError(t, err)

	svc := newTestService(30 * time.Minute)
	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := newTestService(30 * time.Minute)
	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMissingClaimsRejected(t *testing.T) {
	// Signed with the right secret but lacking sub / org_id.
	tok, err := jwt.NewBuilder().
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)

	svc := newTestService(30 * time.Minute)
	_, err = svc.Validate(string(signed))
	assert.ErrorIs(t, err, ErrMalformedClaims)
}

func TestMissingExpiryRejected(t *testing.T) {
	// Correctly signed, carries subject and organization, but no expiry:
	// accepting it would mean a forever-valid credential.
	tok, err := jwt.NewBuilder().
		Subject(ident.New().String()).
		Claim("org_id", ident.New().String()).
		IssuedAt(time.Now()).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)

	svc := newTestService(30 * time.Minute)
	_, err = svc.Validate(string(signed))
	assert.ErrorIs(t, err, ErrMalformedClaims)
}

func TestNonHexClaimsRejected(t *testing.T) {
	tok, err := jwt.NewBuilder().
		Subject("not-hex").
		Claim("org_id", "also-not-hex").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(testSecret)))
	require.NoError(t, err)

	svc := newTestService(30 * time.Minute)
	_, err = svc.Validate(string(signed))
	assert.ErrorIs(t, err, ErrMalformedClaims)
}
