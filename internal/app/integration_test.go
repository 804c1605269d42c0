package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/internal/app/controller"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/internal/app/service"
	"github.com/trouvetonartisan/backend/internal/db"
	"github.com/trouvetonartisan/backend/internal/middleware"
	"github.com/trouvetonartisan/backend/internal/router"
	"github.com/trouvetonartisan/backend/internal/storage"
	"github.com/trouvetonartisan/backend/pkg/mailer"
	"gorm.io/gorm"
)

const testAPIKey = "test-api-key"

type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type TestServer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Catalog *db.TestCatalog
	Mailer  *recordingMailer
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:         "5000",
			GinMode:      gin.TestMode,
			Environment:  "test",
			BodyLimit:    10 * 1024,
			QueryTimeout: 5 * time.Second,
		},
		API:  config.APIConfig{Key: testAPIKey},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{
			Window:        15 * time.Minute,
			Max:           100,
			ContactWindow: time.Hour,
			ContactMax:    5,
		},
		Storage: config.StorageConfig{UploadsDir: t.TempDir()},
	}
}

func setupIntegrationTest(t *testing.T, cfg *config.Config) *TestServer {
	gin.SetMode(gin.TestMode)

	// Setup database
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	catalog, err := db.SeedTestCatalog(testDB)
	require.NoError(t, err)

	// Setup repositories
	artisanRepo := repository.NewArtisanRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)

	// Setup services
	m := &recordingMailer{}
	artisanService := service.NewArtisanService(artisanRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	contactService := service.NewContactService(artisanService, m)

	// Setup router
	r := router.NewRouter(
		controller.NewArtisanController(artisanService, false),
		controller.NewCategoryController(categoryService, false),
		controller.NewContactController(contactService, false),
		controller.NewHealthController(),
		controller.NewImageController(storage.NewLocalStorage(cfg.Storage.UploadsDir), nil),
		middleware.NewAuthMiddleware(cfg.API, cfg.Server),
		middleware.NewMemoryRateLimitStore(),
		cfg,
	)

	return &TestServer{
		Router:  r.Setup(),
		DB:      testDB,
		Catalog: catalog,
		Mailer:  m,
	}
}

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, withKey bool) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func names(t *testing.T, data interface{}) []string {
	items, ok := data.([]interface{})
	require.True(t, ok, "data is not a list")
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.(map[string]interface{})["nom"].(string))
	}
	return result
}

func TestHealthDoesNotRequireKey(t *testing.T) {
	ts := setupIntegrationTest(t, testConfig(t))

	w, resp := ts.do(t, http.MethodGet, "/api/health", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["timestamp"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAPIKeyEnforcement(t *testing.T) {
	ts := setupIntegrationTest(t, testConfig(t))
	artisanID := itoa(ts.Catalog.Artisans["Durand Menuiserie"].ID)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/categories/batiment"},
		{http.MethodGet, "/api/categories/batiment/artisans"},
		{http.MethodGet, "/api/artisans"},
		{http.MethodGet, "/api/artisans/top"},
		{http.MethodGet, "/api/artisans/search?q=dur"},
		{http.MethodGet, "/api/artisans/" + artisanID},
		{http.MethodPost, "/api/contact"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w, resp := ts.do(t, route.method, route.path, nil, false)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, "AUTH_API_KEY_MISSING", resp["error"])

			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set(middleware.APIKeyHeader, "nope")
			w = httptest.NewRecorder()
			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestCatalogBrowsingJourney(t *testing.T) {
	ts := setupIntegrationTest(t, testConfig(t))

	// 1. Categories with their specialties
	t.Log("Step 1: List categories")
	w, resp := ts.do(t, http.MethodGet, "/api/categories", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Alimentation", "Bâtiment", "Fabrication", "Services"}, names(t, resp["data"]))
	assert.EqualValues(t, 4, resp["count"])
	batiment := resp["data"].([]interface{})[1].(map[string]interface{})
	for _, raw := range batiment["specialites"].([]interface{}) {
		specialty := raw.(map[string]interface{})
		assert.ElementsMatch(t, []string{"id", "nom"}, keys(specialty))
	}

	// 2. Filtered, paginated listing
	t.Log("Step 2: Filter artisans")
	w, resp = ts.do(t, http.MethodGet, "/api/artisans?categorie=batiment&search=dur&page=1&limit=12", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Durand Menuiserie", "Ambiance Dure"}, names(t, resp["data"]))
	assert.EqualValues(t, 2, resp["count"])
	assert.EqualValues(t, 1, resp["totalPages"])
	assert.EqualValues(t, 1, resp["currentPage"])

	first := resp["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "4.5", first["note"])
	specialty := first["specialite"].(map[string]interface{})
	assert.Equal(t, "Menuisier", specialty["nom"])
	assert.Equal(t, "batiment", specialty["categorie"].(map[string]interface{})["slug"])

	// 3. Featured artisans
	t.Log("Step 3: Top artisans")
	w, resp = ts.do(t, http.MethodGet, "/api/artisans/top", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Chocolaterie Labbé", "Durance Coiffure", "Durand Menuiserie"}, names(t, resp["data"]))

	// 4. Detail page
	t.Log("Step 4: Artisan detail")
	id := ts.Catalog.Artisans["Dupont Plomberie"].ID
	w, resp = ts.do(t, http.MethodGet, "/api/artisans/"+itoa(id), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dupont Plomberie", resp["data"].(map[string]interface{})["nom"])

	// 5. Category page
	t.Log("Step 5: Category artisans")
	w, resp = ts.do(t, http.MethodGet, "/api/categories/services/artisans", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Durance Coiffure", "Royden Charbonneau"}, names(t, resp["data"]))
	assert.Equal(t, "services", resp["categorie"].(map[string]interface{})["slug"])
}

func TestNotFoundAndValidationErrors(t *testing.T) {
	ts := setupIntegrationTest(t, testConfig(t))

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"unknown category", "/api/categories/inconnue", http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"unknown category artisans", "/api/categories/inconnue/artisans", http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"unknown artisan", "/api/artisans/99999", http.StatusNotFound, "ARTISAN_NOT_FOUND"},
		{"non numeric id", "/api/artisans/abc", http.StatusNotFound, "ARTISAN_NOT_FOUND"},
		{"short search", "/api/artisans/search?q=d", http.StatusBadRequest, "VALIDATION_TOO_SHORT"},
		{"unknown route", "/api/nowhere", http.StatusNotFound, "ROUTE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := ts.do(t, http.MethodGet, tt.path, nil, true)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.code, resp["error"])
		})
	}
}

func TestContactMessage(t *testing.T) {
	ts := setupIntegrationTest(t, testConfig(t))
	artisan := ts.Catalog.Artisans["Durand Menuiserie"]

	request := func(message string) map[string]interface{} {
		return map[string]interface{}{
			"artisan_id": artisan.ID,
			"nom":        "Jean Client",
			"email":      "jean@example.com",
			"objet":      "Devis cuisine",
			"message":    message,
		}
	}

	t.Run("message too short", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/contact", request("123456789"), true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_INVALID_INPUT", resp["error"])
		errs := resp["errors"].([]interface{})
		require.Len(t, errs, 1)
		assert.Equal(t, "message", errs[0].(map[string]interface{})["field"])
		assert.Empty(t, ts.Mailer.sent)
	})

	t.Run("accepted", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/contact", request("1234567890"), true)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, service.ContactSuccessMessage, resp["message"])
		require.Len(t, ts.Mailer.sent, 1)
		assert.Equal(t, artisan.Email, ts.Mailer.sent[0].To)
		assert.Equal(t, "jean@example.com", ts.Mailer.sent[0].ReplyTo)
	})

	t.Run("unknown artisan", func(t *testing.T) {
		body := request("Bonjour, je voudrais un devis.")
		body["artisan_id"] = 99999
		w, _ := ts.do(t, http.MethodPost, "/api/contact", body, true)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		w, resp := ts.do(t, http.MethodPost, "/api/contact", request(strings.Repeat("a", 20*1024)), true)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "VALIDATION_BODY_TOO_LARGE", resp["error"])
	})
}

func TestRateLimiting(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.Max = 2
	ts := setupIntegrationTest(t, cfg)

	for i := 0; i < 2; i++ {
		w, _ := ts.do(t, http.MethodGet, "/api/health", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp := ts.do(t, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", resp["error"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestContactRateLimiting(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.ContactMax = 1
	ts := setupIntegrationTest(t, cfg)
	artisan := ts.Catalog.Artisans["Boulangerie Martin"]

	body := map[string]interface{}{
		"artisan_id": artisan.ID,
		"nom":        "Jean Client",
		"email":      "jean@example.com",
		"objet":      "Commande",
		"message":    "Bonjour, je voudrais commander un gâteau.",
	}

	w, _ := ts.do(t, http.MethodPost, "/api/contact", body, true)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := ts.do(t, http.MethodPost, "/api/contact", body, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "CONTACT_RATE_LIMITED", resp["error"])
	assert.Len(t, ts.Mailer.sent, 1)
}

func keys(m map[string]interface{}) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	return result
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
