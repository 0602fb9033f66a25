package main

import (
	"net/http"
	"testing"
	"time"

	"munlink/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProgram(t *testing.T, muni *models.Municipality, durationDays int) models.BenefitProgram {
	t.Helper()
	program := models.BenefitProgram{
		Code:                    "PROG-" + uuid.NewString()[:8],
		Name:                    "Educational Assistance",
		ProgramType:             "education",
		DurationDays:            durationDays,
		IsActive:                true,
		IsAcceptingApplications: true,
	}
	if muni != nil {
		id := muni.ID
		program.MunicipalityID = &id
	}
	require.NoError(t, db.Create(&program).Error)
	return program
}

func TestBenefitHistory(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Iba")
	user := createTestResident(t, "applicant1", muni, brgy, true)
	admin := createTestAdmin(t, "badmin1", muni)
	program := createTestProgram(t, &muni, 0)
	token := tokenFor(t, user)

	w := doJSON(r, "GET", "/api/benefits/my-history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, parseBody(t, w)["count"])

	w = doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{
		"program_id":       program.ID,
		"application_data": map[string]interface{}{"school": "Zambales NHS", "year_level": "Grade 11"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := parseBody(t, w)["application"].(map[string]interface{})
	appID := itoa(uint(app["id"].(float64)))
	assert.Contains(t, app["application_number"], "APP-")

	// still pending, so not part of history
	w = doJSON(r, "GET", "/api/benefits/my-history", token, nil)
	assert.EqualValues(t, 0, parseBody(t, w)["count"])

	w = doJSON(r, "POST", "/api/admin/benefits/applications/"+appID+"/approve", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, "GET", "/api/benefits/my-history", token, nil)
	body := parseBody(t, w)
	require.EqualValues(t, 1, body["count"])
	entry := body["history"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, models.StatusApproved, entry["status"])
	assert.NotNil(t, entry["program"])
}

func TestBenefitProgramScoping(t *testing.T) {
	r := setupTestApp(t)
	home, homeBrgy := createTestMunicipality(t, "Subic")
	away, _ := createTestMunicipality(t, "Botolan")
	user := createTestResident(t, "applicant2", home, homeBrgy, true)
	token := tokenFor(t, user)

	awayProgram := createTestProgram(t, &away, 0)
	w := doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{
		"program_id": awayProgram.ID,
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// province-wide programs are open to every municipality
	provinceWide := createTestProgram(t, nil, 0)
	w = doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{
		"program_id": provinceWide.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDuplicateApplicationBlocked(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Masinloc")
	user := createTestResident(t, "applicant3", muni, brgy, true)
	program := createTestProgram(t, &muni, 0)
	token := tokenFor(t, user)

	w := doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{"program_id": program.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{"program_id": program.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "active application")
}

func TestRequiredDocumentsEnforced(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Palauig")
	user := createTestResident(t, "applicant4", muni, brgy, true)
	program := createTestProgram(t, &muni, 0)
	require.NoError(t, db.Model(&program).
		Update("required_documents", encodeStringList([]string{"Indigency certificate", "School registration"})).Error)
	token := tokenFor(t, user)

	w := doJSON(r, "POST", "/api/benefits/applications", token, map[string]interface{}{"program_id": program.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "attachments")

	body, contentType := multipartBody(t, map[string]string{
		"program_id": itoa(program.ID),
	}, "supporting_documents", 2)
	w = performRequest(r, "POST", "/api/benefits/applications", body, map[string]string{
		"Content-Type": contentType, "Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

// Programs past their duration are completed on listing and drop out of the
// catalog.
func TestProgramAutoExpiry(t *testing.T) {
	r := setupTestApp(t)
	muni, _ := createTestMunicipality(t, "Candelaria")
	program := createTestProgram(t, &muni, 5)
	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, db.Model(&program).Update("created_at", stale).Error)

	w := doJSON(r, "GET", "/api/benefits/programs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, parseBody(t, w)["count"])

	var reloaded models.BenefitProgram
	require.NoError(t, db.First(&reloaded, program.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.False(t, reloaded.IsAcceptingApplications)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestBeneficiaryCountDecoration(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Cabangan")
	admin := createTestAdmin(t, "badmin2", muni)
	program := createTestProgram(t, &muni, 0)

	for _, name := range []string{"ben1", "ben2"} {
		user := createTestResident(t, name, muni, brgy, true)
		w := doJSON(r, "POST", "/api/benefits/applications", tokenFor(t, user), map[string]interface{}{
			"program_id": program.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		app := parseBody(t, w)["application"].(map[string]interface{})
		w = doJSON(r, "POST", "/api/admin/benefits/applications/"+itoa(uint(app["id"].(float64)))+"/approve",
			tokenFor(t, admin), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(r, "GET", "/api/benefits/programs/"+itoa(program.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := parseBody(t, w)["program"].(map[string]interface{})
	assert.EqualValues(t, 2, p["current_beneficiaries"])
}
