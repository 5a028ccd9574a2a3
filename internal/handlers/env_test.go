package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/session"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

type testEnv struct {
	T   *testing.T
	E   *echo.Echo
	A   *AuthHandler
	U   *UserHandler
	Svc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	userRepo := repo.NewUserRepo(db)
	svc := &service.AuthService{
		Repo:     userRepo,
		Sessions: session.NewRedisStore(client),
		Codec: &tokens.Codec{
			AccessSecret:  []byte("test-access-secret"),
			RefreshSecret: []byte("test-refresh-secret"),
		},
		AccessTTL:  30 * time.Second,
		RefreshTTL: 24 * time.Hour,
	}

	cookies := CookiePolicy{Secure: true, SameSite: http.SameSiteStrictMode}

	return &testEnv{
		T:   t,
		E:   echo.New(),
		A:   &AuthHandler{Svc: svc, Cookies: cookies},
		U:   &UserHandler{Svc: &service.UserService{Repo: userRepo}},
		Svc: svc,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == RefreshCookieName {
			return ck
		}
	}
	t.Fatalf("response did not set a %s cookie", RefreshCookieName)
	return nil
}

func registerUser(t *testing.T, env *testEnv, email string) {
	t.Helper()
	payload := map[string]string{
		"email":     email,
		"password":  "secret1",
		"firstName": "Test",
		"lastName":  "User",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/register", payload)
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func loginUser(t *testing.T, env *testEnv, email string) (string, *http.Cookie) {
	t.Helper()
	payload := map[string]string{"email": email, "password": "secret1"}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/login", payload)
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	return resp.AccessToken, refreshCookie(t, rec)
}
