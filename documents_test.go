package main

import (
	"net/http"
	"testing"

	"munlink/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededDocType(t *testing.T, code string) models.DocumentType {
	t.Helper()
	var dt models.DocumentType
	require.NoError(t, db.Where("code = ?", code).First(&dt).Error, "seed catalog missing %s", code)
	return dt
}

func TestDocumentRequestMunicipalityScoping(t *testing.T) {
	r := setupTestApp(t)
	home, brgy := createTestMunicipality(t, "Iba")
	away, _ := createTestMunicipality(t, "Subic")
	user := createTestResident(t, "resident1", home, brgy, true)
	token := tokenFor(t, user)
	dt := seededDocType(t, "BRGY-CLEARANCE")

	w := doJSON(r, "POST", "/api/documents/requests", token, map[string]interface{}{
		"document_type_id": dt.ID,
		"municipality_id":  away.ID,
		"delivery_method":  models.DeliveryPickup,
		"purpose":          "employment",
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "registered municipality")
}

func TestDocumentRequestDigitalRules(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Botolan")
	user := createTestResident(t, "resident2", muni, brgy, true)
	token := tokenFor(t, user)

	// BRGY-CLEARANCE carries a fee and does not support digital delivery
	withFee := seededDocType(t, "BRGY-CLEARANCE")
	w := doJSON(r, "POST", "/api/documents/requests", token, map[string]interface{}{
		"document_type_id": withFee.ID,
		"municipality_id":  muni.ID,
		"delivery_method":  models.DeliveryDigital,
		"purpose":          "employment",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// a free digital-capable type with a fee tacked on is still rejected
	free := seededDocType(t, "BRGY-RESIDENCY")
	require.NoError(t, db.Model(&free).Update("fee", decimal.NewFromInt(50)).Error)
	w = doJSON(r, "POST", "/api/documents/requests", token, map[string]interface{}{
		"document_type_id": free.ID,
		"municipality_id":  muni.ID,
		"delivery_method":  models.DeliveryDigital,
		"purpose":          "school enrollment",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "in person")
}

func TestDocumentRequestAttachmentMinimum(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Masinloc")
	user := createTestResident(t, "resident3", muni, brgy, true)
	token := tokenFor(t, user)
	dt := seededDocType(t, "BRGY-RESIDENCY") // two requirements

	// JSON body carries no attachments at all
	w := doJSON(r, "POST", "/api/documents/requests", token, map[string]interface{}{
		"document_type_id": dt.ID,
		"municipality_id":  muni.ID,
		"delivery_method":  models.DeliveryPickup,
		"purpose":          "proof of address",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "attachments")

	// one file is below the minimum of two
	body, contentType := multipartBody(t, map[string]string{
		"document_type_id": itoa(dt.ID),
		"municipality_id":  itoa(muni.ID),
		"delivery_method":  models.DeliveryPickup,
		"purpose":          "proof of address",
	}, "supporting_documents", 1)
	w = performRequest(r, "POST", "/api/documents/requests", body, map[string]string{
		"Content-Type": contentType, "Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// meeting the minimum succeeds and derives the pickup address
	body, contentType = multipartBody(t, map[string]string{
		"document_type_id": itoa(dt.ID),
		"municipality_id":  itoa(muni.ID),
		"delivery_method":  models.DeliveryPickup,
		"purpose":          "proof of address",
	}, "supporting_documents", 2)
	w = performRequest(r, "POST", "/api/documents/requests", body, map[string]string{
		"Content-Type": contentType, "Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := parseBody(t, w)["request"].(map[string]interface{})
	assert.Contains(t, req["request_number"], "REQ-MASINLOC-")
	assert.Contains(t, req["delivery_address"], "Barangay Hall")
	assert.Equal(t, models.StatusPending, req["status"])

	// blank entries in the requirement checklist do not raise the minimum
	require.NoError(t, db.Model(&dt).
		Update("requirements", encodeStringList([]string{"Valid ID", "", "   "})).Error)
	body, contentType = multipartBody(t, map[string]string{
		"document_type_id": itoa(dt.ID),
		"municipality_id":  itoa(muni.ID),
		"delivery_method":  models.DeliveryPickup,
		"purpose":          "proof of address",
	}, "supporting_documents", 1)
	w = performRequest(r, "POST", "/api/documents/requests", body, map[string]string{
		"Content-Type": contentType, "Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDocumentRequestOwnerScoping(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Palauig")
	owner := createTestResident(t, "owner", muni, brgy, true)
	other := createTestResident(t, "other", muni, brgy, true)
	request := createPickupRequest(t, owner, muni, brgy)

	w := doJSON(r, "GET", "/api/documents/requests/"+itoa(request.ID), tokenFor(t, owner), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, "GET", "/api/documents/requests/"+itoa(request.ID), tokenFor(t, other), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClaimTicketFlow(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Candelaria")
	user := createTestResident(t, "claimant", muni, brgy, true)
	admin := createTestAdmin(t, "admin1", muni)
	request := createPickupRequest(t, user, muni, brgy)
	userToken := tokenFor(t, user)

	// nothing issued before approval
	w := doJSON(r, "GET", "/api/documents/requests/"+itoa(request.ID)+"/claim-ticket", userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, "POST", "/api/admin/documents/requests/"+itoa(request.ID)+"/approve", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, "GET", "/api/documents/requests/"+itoa(request.ID)+"/claim-ticket", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ticket := parseBody(t, w)
	masked := ticket["code_masked"].(string)
	assert.Contains(t, masked, "*")
	assert.NotContains(t, ticket, "code")
	assert.NotEmpty(t, ticket["qr_url"])
	assert.NotEmpty(t, ticket["window_start"])

	w = doJSON(r, "GET", "/api/documents/requests/"+itoa(request.ID)+"/claim-ticket?reveal=1", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	revealed := parseBody(t, w)
	code := revealed["code"].(string)
	assert.Len(t, code, 10)
	assert.Equal(t, masked[:2], code[:2])
}

func TestPublicVerifyEndpoint(t *testing.T) {
	r := setupTestApp(t)
	muni, brgy := createTestMunicipality(t, "Cabangan")
	user := createTestResident(t, "verified1", muni, brgy, true)
	admin := createTestAdmin(t, "admin2", muni)

	w := doJSON(r, "GET", "/api/documents/verify/REQ-NOPE-00000000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_found", parseBody(t, w)["reason"])

	pickup := createPickupRequest(t, user, muni, brgy)
	w = doJSON(r, "GET", "/api/documents/verify/"+pickup.RequestNumber, "", nil)
	assert.Equal(t, "not_digital", parseBody(t, w)["reason"])

	digital := createDigitalRequest(t, user, muni, brgy)
	w = doJSON(r, "GET", "/api/documents/verify/"+digital.RequestNumber, "", nil)
	assert.Equal(t, "no_file", parseBody(t, w)["reason"])

	// A generated file alone is not enough while the request is still pending.
	require.NoError(t, db.Model(&digital).Update("document_file", "generated_docs/early.pdf").Error)
	w = doJSON(r, "GET", "/api/documents/verify/"+digital.RequestNumber, "", nil)
	assert.Equal(t, "status_pending", parseBody(t, w)["reason"])
	require.NoError(t, db.Model(&digital).Update("document_file", nil).Error)

	adminToken := tokenFor(t, admin)
	w = doJSON(r, "POST", "/api/admin/documents/requests/"+itoa(digital.ID)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, "POST", "/api/admin/documents/requests/"+itoa(digital.ID)+"/generate-pdf", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	generated := parseBody(t, w)["request"].(map[string]interface{})
	assert.Equal(t, models.StatusReady, generated["status"])

	w = doJSON(r, "GET", "/api/documents/verify/"+digital.RequestNumber, "", nil)
	body := parseBody(t, w)
	assert.Equal(t, true, body["valid"], w.Body.String())
	assert.Equal(t, digital.RequestNumber, body["request_number"])
}

// ---- fixtures ----

func createPickupRequest(t *testing.T, user models.User, muni models.Municipality, brgy models.Barangay) models.DocumentRequest {
	t.Helper()
	dt := seededDocType(t, "BRGY-CLEARANCE")
	request := models.DocumentRequest{
		RequestNumber:  newRequestNumber("REQ", muni.Slug),
		UserID:         user.ID,
		DocumentTypeID: dt.ID,
		MunicipalityID: muni.ID,
		BarangayID:     &brgy.ID,
		DeliveryMethod: models.DeliveryPickup,
		Purpose:        "employment",
		Status:         models.StatusPending,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func createDigitalRequest(t *testing.T, user models.User, muni models.Municipality, brgy models.Barangay) models.DocumentRequest {
	t.Helper()
	dt := seededDocType(t, "BRGY-INDIGENCY")
	request := models.DocumentRequest{
		RequestNumber:  newRequestNumber("REQ", muni.Slug),
		UserID:         user.ID,
		DocumentTypeID: dt.ID,
		MunicipalityID: muni.ID,
		BarangayID:     &brgy.ID,
		DeliveryMethod: models.DeliveryDigital,
		Purpose:        "medical assistance",
		Status:         models.StatusPending,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}
