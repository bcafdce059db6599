package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeeper/contact-service/internal/domain"
)

var (
	testSubject = domain.Subject{Username: "alice", Email: "alice@example.com", ID: "u-1"}
	testEpoch   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestManager(t *testing.T, secret string) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(secret, DefaultAccessTokenTTL)
	require.NoError(t, err)
	return tm.WithClock(fixedClock(testEpoch))
}

func TestNewTokenManager_MissingSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewTokenManager("   ", time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm, err := NewTokenManager("k", 0)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, tm.TTL())
}

func TestIssueAndVerify_Success(t *testing.T) {
	tm := newTestManager(t, "super-secret")

	tok, exp, err := tm.Issue(testSubject)
	require.NoError(t, err)
	assert.Equal(t, testEpoch.Add(15*time.Minute), exp)

	got, err := tm.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, testSubject, got)
}

func TestIssue_ClaimShape(t *testing.T) {
	tm := newTestManager(t, "super-secret")

	tok, _, err := tm.Issue(testSubject)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)

	user, ok := claims["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, "u-1", user["id"])
	assert.Equal(t, "u-1", claims["sub"])
	assert.EqualValues(t, testEpoch.Unix(), claims["iat"])
	assert.EqualValues(t, testEpoch.Add(15*time.Minute).Unix(), claims["exp"])
}

func TestIssue_IndependentTokens(t *testing.T) {
	tm, err := NewTokenManager("super-secret", DefaultAccessTokenTTL)
	require.NoError(t, err)

	first, _, err := tm.WithClock(fixedClock(testEpoch)).Issue(testSubject)
	require.NoError(t, err)
	second, _, err := tm.WithClock(fixedClock(testEpoch.Add(time.Minute))).Issue(testSubject)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	verifier := tm.WithClock(fixedClock(testEpoch.Add(2 * time.Minute)))
	_, err = verifier.Verify(first)
	assert.NoError(t, err)
	_, err = verifier.Verify(second)
	assert.NoError(t, err)
}

func TestVerify_ExpiresExactlyAtTTL(t *testing.T) {
	tm := newTestManager(t, "secret")

	tok, _, err := tm.Issue(testSubject)
	require.NoError(t, err)

	_, err = tm.WithClock(fixedClock(testEpoch.Add(15*time.Minute - time.Second))).Verify(tok)
	assert.NoError(t, err)

	_, err = tm.WithClock(fixedClock(testEpoch.Add(15 * time.Minute))).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = tm.WithClock(fixedClock(testEpoch.Add(time.Hour))).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// flipLowBit swaps a base64url character for its neighbour differing only in the lowest bit.
func flipLowBit(c byte) byte {
	i := strings.IndexByte(base64URLAlphabet, c)
	return base64URLAlphabet[i^1]
}

func TestVerify_TamperedSignature(t *testing.T) {
	tm := newTestManager(t, "secret")

	tok, _, err := tm.Issue(testSubject)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	cases := []struct {
		name   string
		mutate func(sig []byte)
	}{
		{"middle character", func(sig []byte) { sig[len(sig)/2] = flipLowBit(sig[len(sig)/2]) }},
		{"last character", func(sig []byte) { sig[len(sig)-1] = flipLowBit(sig[len(sig)-1]) }},
		{"first character", func(sig []byte) { sig[0] = flipLowBit(sig[0]) }},
		{"non-alphabet byte", func(sig []byte) { sig[len(sig)/2] = '!' }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := []byte(parts[2])
			tc.mutate(sig)
			require.NotEqual(t, parts[2], string(sig))

			_, err := tm.Verify(parts[0] + "." + parts[1] + "." + string(sig))
			assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
		})
	}
}

func TestVerify_UndecodableClaimsIsMalformed(t *testing.T) {
	tm := newTestManager(t, "secret")
	tok, _, err := tm.Issue(testSubject)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")

	_, err = tm.Verify(parts[0] + ".!!!." + parts[2])
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _, err := newTestManager(t, "right-secret").Issue(testSubject)
	require.NoError(t, err)

	_, err = newTestManager(t, "wrong-secret").Verify(tok)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerify_UnexpectedAlgorithm(t *testing.T) {
	claims := &Claims{
		User: testSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testEpoch.Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestManager(t, "secret").Verify(tok)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	tm := newTestManager(t, "secret")

	for _, raw := range []string{"not.a.jwt", "garbage", "a.b", "...."} {
		_, err := tm.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, raw)
	}

	_, err := tm.Verify("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestVerify_MissingExpiry(t *testing.T) {
	claims := &Claims{User: testSubject}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestManager(t, "secret").Verify(tok)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
