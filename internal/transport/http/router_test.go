package httptransport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nutricore/internal/audit"
	"nutricore/internal/domain"
	"nutricore/internal/identity/password"
	"nutricore/internal/identity/service"
	"nutricore/internal/identity/store/credential"
	"nutricore/internal/identity/store/profile"
	"nutricore/internal/identity/uniqueness"
	"nutricore/internal/platform/logger"
	"nutricore/internal/platform/metrics"
	"nutricore/internal/ratelimit"
	"nutricore/internal/token"
	"nutricore/internal/verification"
	"nutricore/pkg/testutil"
)

const testAdminKey = "super-admin-passphrase"

// Shared across all handler tests; promauto panics on duplicate registration.
var testMetrics = metrics.New()

type handlerEnv struct {
	router   http.Handler
	identity *service.Service
	verifier *verification.Service
	tokens   *token.Service
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	log := logger.New("dev")
	profiles := profile.NewMemoryRegistry()
	tokens := token.NewService("test-signing-key", "nutricore", "nutricore-clients")
	auditPub := audit.NewPublisher(audit.NewMemoryStore())

	identity := service.New(
		credential.NewMemoryStore(),
		profiles,
		uniqueness.NewChecker(profiles),
		password.NewHasher(bcrypt.MinCost),
		tokens,
		service.WithAdminKey(testAdminKey),
		service.WithAuditPublisher(auditPub),
	)
	verifier := verification.New(profiles, verification.NewMemoryLog(),
		verification.WithAuditPublisher(auditPub))
	lockout := ratelimit.New(ratelimit.NewMemoryStore())

	h := New(identity, verifier, tokens, lockout, log, testMetrics)
	return &handlerEnv{
		router:   h.Router(),
		identity: identity,
		verifier: verifier,
		tokens:   tokens,
	}
}

// registerBody is a valid user registration payload; tests mutate copies.
func registerBody(email, name, phone string) map[string]any {
	return map[string]any{
		"email":       email,
		"password":    "secret-password-1",
		"name":        name,
		"phone":       phone,
		"dateOfBirth": "1993-04-12",
		"gender":      "female",
		"address":     "12 Main St",
		"age":         32,
	}
}

func dietitianBody(email, name, phone, license string) map[string]any {
	body := registerBody(email, name, phone)
	body["licenseNumber"] = license
	return body
}

// registerVia drives the real endpoint and returns the issued token and
// profile id.
func registerVia(t *testing.T, env *handlerEnv, role string, body map[string]any) (token, profileID string) {
	t.Helper()
	rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/"+role+"/register", body))
	require.Equal(t, http.StatusCreated, rr.Code, "registration should succeed: %s", rr.Body.String())
	res := testutil.UnmarshalResponse[registerResponse](t, rr)
	return res.Token, res.ProfileID
}

func bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthz(t *testing.T) {
	env := newHandlerEnv(t)
	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func parseRole(t *testing.T, role string) domain.Role {
	t.Helper()
	r, err := domain.ParseRole(role)
	require.NoError(t, err)
	return r
}

func expiredToken(t *testing.T, env *handlerEnv, identityID, role, profileID string) string {
	t.Helper()
	tok, err := env.tokens.Issue(identityID, parseRole(t, role), profileID, -time.Minute)
	require.NoError(t, err)
	return tok
}
