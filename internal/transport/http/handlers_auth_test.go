package httptransport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutricore/pkg/testutil"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newHandlerEnv(t)

	rr := testutil.DoRequest(env.router,
		testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/register", registerBody("a@x.com", "Jane Runner", "9998887776")))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	res := testutil.UnmarshalResponse[registerResponse](t, rr)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "user", res.Role)
	assert.NotEmpty(t, res.ProfileID)
	assert.Equal(t, "Jane Runner", res.DisplayName)

	t.Run("display name conflict across roles", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/dietitian/register",
				dietitianBody("d@x.com", "Jane Runner", "5551234567", "DT12345")))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "CONFLICT")
		assert.Equal(t, "name", testutil.UnmarshalErrorResponse(t, rr).Field)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/register", registerBody("a@x.com", "Other Name", "1112223334")))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "CONFLICT")
	})
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	env := newHandlerEnv(t)

	cases := []struct {
		name string
		path string
		body map[string]any
		code string
	}{
		{"unknown role", "/auth/superuser/register", registerBody("a@x.com", "Jane", "9998887776"), "INVALID_ROLE"},
		{"bad email", "/auth/user/register", registerBody("not-an-email", "Jane", "9998887776"), "VALIDATION_ERROR"},
		{"short password", "/auth/user/register", func() map[string]any {
			b := registerBody("a@x.com", "Jane", "9998887776")
			b["password"] = "short"
			return b
		}(), "VALIDATION_ERROR"},
		{"non-numeric phone", "/auth/user/register", registerBody("a@x.com", "Jane", "99988877xx"), "VALIDATION_ERROR"},
		{"missing license", "/auth/dietitian/register", registerBody("d@x.com", "Diet One", "5551234567"), "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := testutil.DoRequest(env.router, testutil.NewJSONRequest(t, http.MethodPost, tc.path, tc.body))
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, tc.code)
		})
	}

	t.Run("unparseable body", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/auth/user/register")
		req.Header.Set("Content-Type", "application/json")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestLoginEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	registerVia(t, env, "user", registerBody("a@x.com", "Jane Runner", "9998887776"))

	rr := testutil.DoRequest(env.router,
		testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
			map[string]any{"email": "a@x.com", "password": "secret-password-1"}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	res := testutil.UnmarshalResponse[loginResponse](t, rr)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "user", res.Role)
	assert.Equal(t, 24*60*60, res.ExpiresIn)

	t.Run("rememberMe extends expiry", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
				map[string]any{"email": "a@x.com", "password": "secret-password-1", "rememberMe": true}))
		testutil.AssertStatus(t, rr, http.StatusOK)
		res := testutil.UnmarshalResponse[loginResponse](t, rr)
		assert.Equal(t, 7*24*60*60, res.ExpiresIn)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
				map[string]any{"email": "a@x.com", "password": "wrong-password-1"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	})
}

func TestLoginEndpoint_DietitianLicense(t *testing.T) {
	env := newHandlerEnv(t)
	registerVia(t, env, "dietitian", dietitianBody("d@x.com", "Diet One", "5551234567", "DT12345"))

	t.Run("wrong license", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/dietitian/login",
				map[string]any{"email": "d@x.com", "password": "secret-password-1", "licenseNumber": "DT99999"}))
		body := rr.Body.String()
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "INVALID_LICENSE")
		assert.NotContains(t, body, "token", "no token on a failed secondary factor")
	})

	t.Run("correct license", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/dietitian/login",
				map[string]any{"email": "d@x.com", "password": "secret-password-1", "licenseNumber": "DT12345"}))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}

func TestLoginEndpoint_LockoutAfterRepeatedFailures(t *testing.T) {
	env := newHandlerEnv(t)
	registerVia(t, env, "user", registerBody("a@x.com", "Jane Runner", "9998887776"))

	badLogin := func(email string) *http.Request {
		return testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
			map[string]any{"email": email, "password": "wrong-password-1"})
	}

	// Case variants of one address share a single failure counter; cycling
	// them must not buy a fresh window per spelling.
	variants := []string{"a@x.com", "A@x.com", "a@X.com", "A@X.COM", "a@x.COM"}
	for _, email := range variants {
		rr := testutil.DoRequest(env.router, badLogin(email))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	rr := testutil.DoRequest(env.router, badLogin("a@x.com"))
	testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	t.Run("further case variants are blocked too", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, badLogin("A@x.COM"))
		testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
	})

	t.Run("correct password is also blocked while locked", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
				map[string]any{"email": "a@x.com", "password": "secret-password-1"}))
		testutil.AssertStatus(t, rr, http.StatusTooManyRequests)
	})
}

func TestSessionEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	tok, profileID := registerVia(t, env, "user", registerBody("a@x.com", "Jane Runner", "9998887776"))

	rr := testutil.DoRequest(env.router, bearer(testutil.NewRequest(t, http.MethodGet, "/auth/session"), tok))
	testutil.AssertStatus(t, rr, http.StatusOK)
	res := testutil.UnmarshalResponse[sessionResponse](t, rr)
	assert.Equal(t, "user", res.Role)
	assert.Equal(t, profileID, res.ProfileID)
	assert.NotEmpty(t, res.IdentityID)
}

func TestSessionEndpoint_ReasonCodes(t *testing.T) {
	env := newHandlerEnv(t)
	_, profileID := registerVia(t, env, "user", registerBody("a@x.com", "Jane Runner", "9998887776"))

	t.Run("no token", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, testutil.NewRequest(t, http.MethodGet, "/auth/session"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "NO_TOKEN")
	})
	t.Run("invalid format", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/auth/session")
		req.Header.Set("Authorization", "Token abc")
		rr := testutil.DoRequest(env.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "INVALID_FORMAT")
	})
	t.Run("expired token", func(t *testing.T) {
		tok := expiredToken(t, env, "identity-1", "user", profileID)
		rr := testutil.DoRequest(env.router, bearer(testutil.NewRequest(t, http.MethodGet, "/auth/session"), tok))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "TOKEN_EXPIRED")
	})
	t.Run("garbage token", func(t *testing.T) {
		rr := testutil.DoRequest(env.router, bearer(testutil.NewRequest(t, http.MethodGet, "/auth/session"), "not.a.jwt"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "INVALID_TOKEN")
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newHandlerEnv(t)
	tok, _ := registerVia(t, env, "user", registerBody("a@x.com", "Jane Runner", "9998887776"))

	rr := testutil.DoRequest(env.router,
		bearer(testutil.NewJSONRequest(t, http.MethodPost, "/auth/password",
			map[string]any{"oldPassword": "secret-password-1", "newPassword": "fresh-password-2"}), tok))
	testutil.AssertStatus(t, rr, http.StatusOK)
	res := testutil.UnmarshalResponse[map[string]bool](t, rr)
	assert.True(t, (*res)["success"])

	t.Run("login with the new password", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/user/login",
				map[string]any{"email": "a@x.com", "password": "fresh-password-2"}))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("same password rejected", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			bearer(testutil.NewJSONRequest(t, http.MethodPost, "/auth/password",
				map[string]any{"oldPassword": "fresh-password-2", "newPassword": "fresh-password-2"}), tok))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "SAME_PASSWORD")
	})

	t.Run("requires auth", func(t *testing.T) {
		rr := testutil.DoRequest(env.router,
			testutil.NewJSONRequest(t, http.MethodPost, "/auth/password",
				map[string]any{"oldPassword": "a", "newPassword": "b"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "NO_TOKEN")
	})
}
