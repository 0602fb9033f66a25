package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestApp boots the full router against a fresh in-memory database.
func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("UPLOAD_BASE", t.TempDir())

	logger = zap.NewNop()
	cfg = &Config{
		DBDriver:       "sqlite",
		DBDSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		DBAutoMigrate:  true,
		JWTSecret:      "test-secret",
		ClaimTicketKey: "test-ticket-key",
		WebURL:         "http://localhost:3000",
		AdminURL:       "http://localhost:3001",
		SMTPFrom:       "no-reply@test.local",
	}
	jwtSecret = []byte(cfg.JWTSecret)
	initDB(cfg)
	return setupRouter()
}

func performRequest(r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doJSON sends a JSON request, attaching the bearer token when given.
func doJSON(r http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return performRequest(r, method, path, body, headers)
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// multipartBody builds a multipart payload with string fields plus n small
// PDF files under fileField.
func multipartBody(t *testing.T, fields map[string]string, fileField string, n int) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for i := 0; i < n; i++ {
		fw, err := mw.CreateFormFile(fileField, fmt.Sprintf("attachment-%d.pdf", i))
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 test attachment"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// ---- fixtures ----

func createTestMunicipality(t *testing.T, name string) (models.Municipality, models.Barangay) {
	t.Helper()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	muni := models.Municipality{Name: name, Slug: slug, PSGCCode: "9" + slug, IsActive: true}
	require.NoError(t, db.Create(&muni).Error)
	brgy := models.Barangay{MunicipalityID: muni.ID, Name: "Poblacion", Slug: "poblacion"}
	require.NoError(t, db.Create(&brgy).Error)
	return muni, brgy
}

func createTestResident(t *testing.T, username string, muni models.Municipality, brgy models.Barangay, verified bool) models.User {
	t.Helper()
	hash, err := hashPassword("password123")
	require.NoError(t, err)
	muniID, brgyID := muni.ID, brgy.ID
	status := models.VerificationPending
	if verified {
		status = models.VerificationVerified
	}
	user := models.User{
		Username:           username,
		Email:              username + "@example.com",
		PasswordHash:       hash,
		FirstName:          "Juan",
		LastName:           "Dela Cruz",
		Role:               models.RoleResident,
		MunicipalityID:     &muniID,
		BarangayID:         &brgyID,
		EmailVerified:      verified,
		AdminVerified:      verified,
		VerificationStatus: status,
		IsActive:           true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestAdmin(t *testing.T, username string, muni models.Municipality) models.User {
	t.Helper()
	hash, err := hashPassword("password123")
	require.NoError(t, err)
	muniID := muni.ID
	admin := models.User{
		Username:            username,
		Email:               username + "@example.com",
		PasswordHash:        hash,
		FirstName:           "Ana",
		LastName:            "Reyes",
		Role:                models.RoleMunicipalAdmin,
		AdminMunicipalityID: &muniID,
		EmailVerified:       true,
		AdminVerified:       true,
		VerificationStatus:  models.VerificationVerified,
		IsActive:            true,
	}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := issueAccessToken(&user)
	require.NoError(t, err)
	return token
}
