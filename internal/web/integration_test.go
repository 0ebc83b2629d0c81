package web_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/poseidon/internal/auth"
	"github.com/vbonduro/poseidon/internal/db"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/metrics"
	"github.com/vbonduro/poseidon/internal/service"
	"github.com/vbonduro/poseidon/internal/store"
	"github.com/vbonduro/poseidon/internal/validation"
	"github.com/vbonduro/poseidon/internal/web"
	"github.com/vbonduro/poseidon/internal/web/templates"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	adminPassword = "Admin#2024"
	userPassword  = "User#2024x"
)

type testApp struct {
	server *web.Server
	db     *sql.DB
	svcs   web.Services
	users  *service.UserService
}

func newTestApp(t *testing.T, loginBurst int) *testApp {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	v := validation.New()
	log := zerolog.Nop()

	users, err := service.NewUserService(store.NewUserStore(d), auth.NewHasher(bcrypt.MinCost), v, log)
	require.NoError(t, err)

	svcs := web.Services{
		Bids:        service.NewBidService(store.NewBidStore(d), v, log),
		CurvePoints: service.NewCurvePointService(store.NewCurvePointStore(d), v, log),
		Ratings:     service.NewRatingService(store.NewRatingStore(d), v, log),
		Rules:       service.NewRuleService(store.NewRuleStore(d), v, log),
		Trades:      service.NewTradeService(store.NewTradeStore(d), v, log),
		Users:       users,
	}
	sessions := auth.NewSessions(auth.SessionConfig{
		Secret:     "integration-test-secret-0123456789",
		TTL:        time.Hour,
		CookieName: "POSEIDON_SESSION",
	})

	srv := web.NewServer(svcs, templates.FS, web.Options{
		Sessions:   sessions,
		Metrics:    metrics.New(),
		DB:         d,
		Env:        "test",
		LoginRate:  rate.Limit(0.001),
		LoginBurst: loginBurst,
	}, log)

	ctx := context.Background()
	_, err = users.Create(ctx, "test", &domain.User{Username: "admin", Password: adminPassword, Fullname: "Administrator", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = users.Create(ctx, "test", &domain.User{Username: "user", Password: userPassword, Fullname: "Plain User", Role: domain.RoleUser})
	require.NoError(t, err)

	return &testApp{server: srv, db: d, svcs: svcs, users: users}
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) post(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := a.post(t, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "POSEIDON_SESSION" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.get(t, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")

	rec = app.get(t, "/login", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="username"`)

	rec = app.get(t, "/css/style.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".topbar")
}

func TestResponsesCarrySecurityHeadersAndRequestID(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.get(t, "/", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	app := newTestApp(t, 100)

	for _, path := range []string{"/bid/list", "/bidList/list", "/curvePoint/add", "/rating/list", "/rule/list", "/ruleName/list", "/trade/list", "/user/list"} {
		rec := app.get(t, path, nil)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestWrongMethodRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.get(t, "/user/validate", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = app.post(t, "/bid/list", url.Values{}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookie := app.login(t, "admin", adminPassword)
	rec = app.get(t, "/user/validate", cookie)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "not supported")
}

func TestLoginFailureRedirectsWithError(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.post(t, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?error", rec.Header().Get("Location"))

	rec = app.get(t, "/login?error", nil)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)
	assert.True(t, cookie.HttpOnly)

	rec := app.get(t, "/", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome, Plain User.")
	assert.NotContains(t, rec.Body.String(), "/user/list")

	rec = app.post(t, "/logout", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?logout", rec.Header().Get("Location"))
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)

	rec = app.get(t, "/login?logout", nil)
	assert.Contains(t, rec.Body.String(), "You have been logged out.")
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, 2)
	bad := url.Values{"username": {"admin"}, "password": {"nope"}}

	assert.Equal(t, http.StatusFound, app.post(t, "/login", bad, nil).Code)
	assert.Equal(t, http.StatusFound, app.post(t, "/login", bad, nil).Code)

	rec := app.post(t, "/login", bad, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many login attempts")
}

func TestUserRoleIsForbiddenFromUserAdmin(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)

	rec := app.get(t, "/user/list", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "You are not authorized to access the requested data.")

	rec = app.get(t, "/bid/list", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminUserList(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "admin", adminPassword)

	rec := app.get(t, "/user/list", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Administrator")
	assert.Contains(t, body, "Plain User")
	assert.NotContains(t, body, "$2a$")
}

func TestBidLifecycle(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)

	rec := app.get(t, "/bid/add", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/bid/validate"`)

	rec = app.post(t, "/bid/validate", url.Values{"account": {""}, "type": {"Type"}, "bidQuantity": {"0"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account is mandatory")
	assert.Contains(t, rec.Body.String(), "Bid Quantity must be at least 1.0")

	rec = app.post(t, "/bid/validate", url.Values{"account": {"Desk A"}, "type": {"Spot"}, "bidQuantity": {"10.5"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/bid/list", rec.Header().Get("Location"))

	bids, err := app.svcs.Bids.List(context.Background())
	require.NoError(t, err)
	require.Len(t, bids, 1)
	id := bids[0].ID
	assert.Equal(t, "user", bids[0].CreationName)
	idPath := "/bid/update/" + strconv.FormatInt(id, 10)

	rec = app.get(t, "/bid/list", cookie)
	assert.Contains(t, rec.Body.String(), "Desk A")
	assert.Contains(t, rec.Body.String(), "10.5")

	rec = app.get(t, idPath, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Desk A"`)

	rec = app.post(t, idPath, url.Values{"account": {"Desk B"}, "type": {"Spot"}, "bidQuantity": {"abc"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a number")

	rec = app.post(t, idPath, url.Values{"account": {"Desk B"}, "type": {"Spot"}, "bidQuantity": {"12"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	got, err := app.svcs.Bids.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Desk B", got.Account)
	assert.Equal(t, "user", got.RevisionName)

	rec = app.get(t, "/bid/delete/"+strconv.FormatInt(id, 10), cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/bid/list", rec.Header().Get("Location"))

	rec = app.get(t, "/bid/list", cookie)
	assert.NotContains(t, rec.Body.String(), "Desk B")
}

func TestUnknownIDRendersNotFound(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "admin", adminPassword)

	rec := app.get(t, "/bid/update/999", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid bid id: 999")

	rec = app.get(t, "/trade/delete/77", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid trade id: 77")

	rec = app.post(t, "/rating/update/5", url.Values{"moodysRating": {"A"}, "sandPRating": {"A"}, "fitchRating": {"A"}, "orderNumber": {"1"}}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid rating id: 5")

	rec = app.post(t, "/curvePoint/update/5", url.Values{"curveId": {"x"}}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.get(t, "/user/update/42", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid user id: 42")
}

func TestCurvePointDateValidation(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)

	rec := app.post(t, "/curvePoint/validate", url.Values{"curveId": {"3"}, "asOfDate": {"31/12/2023"}, "term": {"1"}, "value": {"2"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a date (YYYY-MM-DD)")

	rec = app.post(t, "/curvePoint/validate", url.Values{"curveId": {"3"}, "asOfDate": {"2023-12-31"}, "term": {"1"}, "value": {"2"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = app.get(t, "/curvePoint/list", cookie)
	assert.Contains(t, rec.Body.String(), "<td>3</td>")
}

func TestRuleAliasRoutes(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)

	form := url.Values{
		"name": {"R1"}, "description": {"desc"}, "json": {"{}"},
		"template": {"tpl"}, "sqlStr": {"SELECT 1"}, "sqlPart": {"WHERE 1"},
	}
	rec := app.post(t, "/ruleName/validate", form, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/rule/list", rec.Header().Get("Location"))

	for _, path := range []string{"/rule/list", "/ruleName/list"} {
		rec = app.get(t, path, cookie)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "SELECT 1", path)
	}

	for _, path := range []string{"/rule/update/999", "/ruleName/update/999"} {
		rec = app.get(t, path, cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "invalid rule id: 999", path)
	}
}

func TestAdminManagesUsers(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "admin", adminPassword)

	rec := app.post(t, "/user/validate", url.Values{"username": {"jdoe"}, "password": {"weak"}, "fullname": {"John Doe"}, "role": {"USER"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), validation.PasswordMessage)
	assert.NotContains(t, rec.Body.String(), `value="weak"`)

	rec = app.post(t, "/user/validate", url.Values{"username": {"user"}, "password": {"Strong#123"}, "fullname": {"Dup"}, "role": {"USER"}}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username already exists")

	rec = app.post(t, "/user/validate", url.Values{"username": {"jdoe"}, "password": {"Strong#123"}, "fullname": {"John Doe"}, "role": {"USER"}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/list", rec.Header().Get("Location"))

	app.login(t, "jdoe", "Strong#123")
}

func TestDeletedUserLosesAccess(t *testing.T) {
	app := newTestApp(t, 100)
	userCookie := app.login(t, "user", userPassword)
	adminCookie := app.login(t, "admin", adminPassword)

	u, err := app.users.GetByUsername(context.Background(), "user")
	require.NoError(t, err)
	require.NotNil(t, u)

	rec := app.get(t, "/user/delete/"+strconv.FormatInt(u.ID, 10), adminCookie)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = app.get(t, "/bid/list", userCookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSessionUserLookupFailureIsServerError(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)

	require.NoError(t, app.db.Close())

	rec := app.get(t, "/bid/list", cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")

	rec = app.get(t, "/bid/list", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.get(t, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Checks      map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, "healthy", body.Checks["database"].Status)

	require.NoError(t, app.db.Close())
	rec = app.get(t, "/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, 100)
	cookie := app.login(t, "user", userPassword)
	app.get(t, "/bid/list", cookie)

	rec := app.get(t, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `poseidon_http_requests_total{method="GET",route="/bid/list",status="200"} 1`)
	assert.Contains(t, body, `poseidon_auth_login_attempts_total{outcome="success"} 1`)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	app := newTestApp(t, 100)

	rec := app.get(t, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
