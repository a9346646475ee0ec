package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"veever-server/models"
	"veever-server/storage"
	"veever-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRoutesTestDB points storage.DB at a fresh in-memory sqlite database.
func setupRoutesTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.Migrator().DropTable(&models.User{}, &models.CustomExperience{}, &models.ExperienceNote{})
	if err := db.AutoMigrate(&models.User{}, &models.CustomExperience{}, &models.ExperienceNote{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	storage.DB = db
}

// buildTestApp creates a minimal Iris app with the admin routes and JWT verifier
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	setupRoutesTestDB(t)

	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(mockAccessToken) })

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, mockAdminOnlyMiddleware)
	{
		admin.Get("/experiences", AdminListExperiences)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	return app
}

type mockAccessToken struct {
	ID   uint
	Role string
}

// mockAdminOnlyMiddleware uses mockAccessToken
func mockAdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*mockAccessToken)
	if claims.Role != "admin" && claims.Role != "super_admin" {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}
	ctx.Next()
}

// signTestToken returns a signed JWT with the given role
func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")), 15*time.Minute)
	token, _ := signer.Sign(mockAccessToken{ID: 1, Role: role})
	return string(token)
}

func TestAdminExperiencesRBAC(t *testing.T) {
	app := buildTestApp(t)

	// No token -> rejected by the verifier
	req := httptest.NewRequest(http.MethodGet, "/api/admin/experiences", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK {
		t.Fatalf("expected non-200 without token, got %d", resp.Code)
	}

	// User role -> 403
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/experiences", nil)
	req2.Header.Set("Authorization", "Bearer "+signTestToken("user"))
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", resp2.Code)
	}

	// Admin role -> 200 (empty list OK)
	req3 := httptest.NewRequest(http.MethodGet, "/api/admin/experiences", nil)
	req3.Header.Set("Authorization", "Bearer "+signTestToken("admin"))
	resp3 := httptest.NewRecorder()
	app.ServeHTTP(resp3, req3)
	if resp3.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", resp3.Code)
	}
}

func TestAdminEmailStaysAttributable(t *testing.T) {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	setupRoutesTestDB(t)

	app := iris.New()
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	verifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })
	app.Get("/whoami", verifierMiddleware, func(ctx iris.Context) {
		ctx.WriteString(adminEmail(ctx))
	})
	if err := app.Build(); err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}

	signer := jwt.NewSigner(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")), 15*time.Minute)
	token, err := signer.Sign(utils.AccessToken{ID: 7, Role: "admin"})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	whoami := func() string {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+string(token))
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	// no profile row: the token subject keeps the entry attributable
	if got := whoami(); got != "admin:7" {
		t.Fatalf("expected token-subject fallback admin:7, got %q", got)
	}

	admin := models.User{Email: "backoffice@veever.fr", Role: "admin"}
	admin.ID = 7
	if err := storage.DB.Create(&admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if got := whoami(); got != "backoffice@veever.fr" {
		t.Fatalf("expected the profile email, got %q", got)
	}
}
