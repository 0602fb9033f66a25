package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"munlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRejectResetsVerification(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Iba")
	admin := createTestAdmin(t, "iba-admin", muni)
	user := createTestResident(t, "applicant", muni, brgy, false)
	front := "verification/applicant/front.jpg"
	require.NoError(t, db.Model(&user).Updates(map[string]interface{}{
		"valid_id_front": front,
		"email_verified": true,
	}).Error)

	w := doJSON(r, "POST", "/api/admin/users/"+itoa(user.ID)+"/reject", tokenFor(t, admin),
		map[string]string{"reason": "ID photo unreadable"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Nil(t, reloaded.ValidIDFront)
	assert.False(t, reloaded.EmailVerified)
	assert.False(t, reloaded.AdminVerified)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, models.VerificationRejected, reloaded.VerificationStatus)
	require.NotNil(t, reloaded.RejectionReason)
	assert.Equal(t, "ID photo unreadable", *reloaded.RejectionReason)

	var audit models.AuditLog
	require.NoError(t, db.Where("action = ?", "resident_rejected").First(&audit).Error)
	assert.Equal(t, muni.ID, audit.MunicipalityID)
	assert.Equal(t, "ID photo unreadable", audit.Notes)
	require.NotNil(t, audit.EntityID)
	assert.Equal(t, user.ID, *audit.EntityID)
}

func TestAdminApproveVerifiesResident(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Subic")
	admin := createTestAdmin(t, "subic-admin", muni)
	user := createTestResident(t, "pending1", muni, brgy, false)

	w := doJSON(r, "POST", "/api/admin/users/"+itoa(user.ID)+"/approve", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.FullyVerified())
	assert.Equal(t, models.VerificationVerified, reloaded.VerificationStatus)

	// already-verified accounts cannot be approved twice
	w = doJSON(r, "POST", "/api/admin/users/"+itoa(user.ID)+"/approve", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminScopeIsOwnMunicipality(t *testing.T) {
	r := setupTestApp(t)
	home, homeBrgy := createTestMunicipality(t, "Botolan")
	away, _ := createTestMunicipality(t, "Masinloc")
	awayAdmin := createTestAdmin(t, "away-admin", away)
	user := createTestResident(t, "homebody", home, homeBrgy, false)

	w := doJSON(r, "POST", "/api/admin/users/"+itoa(user.ID)+"/approve", tokenFor(t, awayAdmin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// a resident token cannot enter the admin surface at all
	residentToken := tokenFor(t, user)
	w = doJSON(r, "GET", "/api/admin/users", residentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransferWorkflow(t *testing.T) {
	r := setupTestApp(t)
	from, fromBrgy := createTestMunicipality(t, "Palauig")
	to, _ := createTestMunicipality(t, "Candelaria")
	toAdmin := createTestAdmin(t, "to-admin", to)
	user := createTestResident(t, "mover", from, fromBrgy, true)
	token := tokenFor(t, user)

	w := doJSON(r, "POST", "/api/auth/transfer", token, map[string]interface{}{
		"to_municipality_id": to.ID,
		"notes":              "moving for work",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	transfer := parseBody(t, w)["transfer"].(map[string]interface{})
	transferID := itoa(uint(transfer["id"].(float64)))

	// only one active transfer at a time
	w = doJSON(r, "POST", "/api/auth/transfer", token, map[string]interface{}{
		"to_municipality_id": to.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "active transfer request")

	w = doJSON(r, "POST", "/api/admin/transfers/"+transferID+"/approve", tokenFor(t, toAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.MunicipalityID)
	assert.Equal(t, to.ID, *reloaded.MunicipalityID)
	assert.Nil(t, reloaded.BarangayID)

	// the request is settled, so a new one may be filed
	w = doJSON(r, "POST", "/api/auth/transfer", token, map[string]interface{}{
		"to_municipality_id": from.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestIssueStatusTransitions(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Cabangan")
	admin := createTestAdmin(t, "issue-admin", muni)
	user := createTestResident(t, "reporter", muni, brgy, true)

	var category models.IssueCategory
	require.NoError(t, db.Where("name = ?", "Streetlights").First(&category).Error)

	w := doJSON(r, "POST", "/api/issues", tokenFor(t, user), map[string]interface{}{
		"title":       "Broken streetlight",
		"description": "Corner of Rizal St, dark for a week",
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	issue := parseBody(t, w)["issue"].(map[string]interface{})
	issueID := itoa(uint(issue["id"].(float64)))
	assert.Equal(t, "Streetlights", issue["category_label"])

	adminToken := tokenFor(t, admin)
	w = doJSON(r, "POST", "/api/admin/issues/"+issueID+"/status", adminToken,
		map[string]string{"status": models.IssueInProgress})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// resolved issues cannot go backwards
	w = doJSON(r, "POST", "/api/admin/issues/"+issueID+"/status", adminToken,
		map[string]string{"status": models.IssueResolved, "resolution_notes": "Bulb replaced"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, "POST", "/api/admin/issues/"+issueID+"/status", adminToken,
		map[string]string{"status": models.IssueOpen})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var reloaded models.Issue
	require.NoError(t, db.First(&reloaded, issueID).Error)
	assert.Equal(t, "Bulb replaced", reloaded.ResolutionNotes)
	assert.NotNil(t, reloaded.ResolvedAt)
}

func TestExports(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Santa Cruz")
	admin := createTestAdmin(t, "export-admin", muni)
	createTestResident(t, "row1", muni, brgy, true)
	createTestResident(t, "row2", muni, brgy, false)
	adminToken := tokenFor(t, admin)

	for _, path := range []string{
		"/api/admin/exports/users.pdf",
		"/api/admin/exports/users.xlsx",
		"/api/admin/exports/documents.pdf",
		"/api/admin/exports/documents.xlsx",
	} {
		w := doJSON(r, "POST", path, adminToken, map[string]string{"range": "all"})
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", path, w.Body.String())
		body := parseBody(t, w)
		url := body["url"].(string)
		assert.True(t, strings.HasPrefix(url, "/uploads/exports/"), url)
		summary := body["summary"].(map[string]interface{})
		if strings.Contains(path, "users") {
			assert.EqualValues(t, 2, summary["rows"])
		} else {
			assert.EqualValues(t, 0, summary["rows"])
		}

		rel := strings.TrimPrefix(url, "/uploads/")
		full := filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))
		info, err := os.Stat(full)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))

		// the artifact is downloadable through the public file route
		dl := performRequest(r, "GET", url, nil, nil)
		assert.Equal(t, http.StatusOK, dl.Code)
	}

	w := doJSON(r, "POST", "/api/admin/exports/users.pdf", adminToken, map[string]string{"range": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadsAllowlist(t *testing.T) {
	r := setupTestApp(t)

	secret := filepath.Join(uploadBaseDir(), "private", "secrets.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(secret), 0o755))
	require.NoError(t, os.WriteFile(secret, []byte("nope"), 0o644))

	w := performRequest(r, "GET", "/uploads/private/secrets.txt", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "GET", "/uploads/marketplace/missing.jpg", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "GET", "/uploads/marketplace/../private/secrets.txt", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuditLogListing(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "San Felipe")
	admin := createTestAdmin(t, "audit-admin", muni)
	user := createTestResident(t, "audited", muni, brgy, false)
	adminToken := tokenFor(t, admin)

	w := doJSON(r, "POST", "/api/admin/users/"+itoa(user.ID)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "GET", "/api/admin/audit-logs", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := parseBody(t, w)
	require.EqualValues(t, 1, body["count"])
	entry := body["audit_logs"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "resident_approved", entry["action"])
	assert.Equal(t, "user", entry["entity_type"])
}
