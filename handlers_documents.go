package main

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"munlink/models"
	"munlink/pkg/claimticket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func listDocumentTypesHandler(c *gin.Context) {
	var types []models.DocumentType
	if err := db.Where("is_active = ?", true).Order("authority_level asc, name asc").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document types", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_types": types, "count": len(types)})
}

// documentRequestInput is the create form. It arrives either as JSON or as
// multipart form fields with attachments.
type documentRequestInput struct {
	DocumentTypeID  uint   `json:"document_type_id"`
	MunicipalityID  uint   `json:"municipality_id"`
	DeliveryMethod  string `json:"delivery_method"`
	Purpose         string `json:"purpose"`
	CivilStatus     string `json:"civil_status"`
	AdditionalNotes string `json:"additional_notes"`
}

func bindDocumentRequestInput(c *gin.Context) (documentRequestInput, []*multipart.FileHeader, error) {
	var in documentRequestInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return in, nil, err
		}
		typeID, _ := strconv.ParseUint(c.PostForm("document_type_id"), 10, 32)
		muniID, _ := strconv.ParseUint(c.PostForm("municipality_id"), 10, 32)
		in.DocumentTypeID = uint(typeID)
		in.MunicipalityID = uint(muniID)
		in.DeliveryMethod = c.PostForm("delivery_method")
		in.Purpose = c.PostForm("purpose")
		in.CivilStatus = c.PostForm("civil_status")
		in.AdditionalNotes = c.PostForm("additional_notes")
		return in, form.File["supporting_documents"], nil
	}
	err := c.ShouldBindJSON(&in)
	return in, nil, err
}

func createDocumentRequestHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	in, attachments, err := bindDocumentRequestInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.DocumentTypeID == 0 || in.MunicipalityID == 0 || in.DeliveryMethod == "" || in.Purpose == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required fields",
			"details": "document_type_id, municipality_id, delivery_method, and purpose are required.",
		})
		return
	}
	if in.DeliveryMethod != models.DeliveryPickup && in.DeliveryMethod != models.DeliveryDigital {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery_method", "details": "Use pickup or digital."})
		return
	}
	if user.MunicipalityID == nil || *user.MunicipalityID != in.MunicipalityID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only request documents from your registered municipality"})
		return
	}

	var docType models.DocumentType
	if err := db.First(&docType, in.DocumentTypeID).Error; err != nil || !docType.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document_type_id"})
		return
	}
	if in.DeliveryMethod == models.DeliveryDigital {
		if !docType.SupportsDigital {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This document is not available for digital delivery"})
			return
		}
		if !docType.Fee.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Documents with a processing fee must be claimed in person"})
			return
		}
	}
	if user.BarangayID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Set your barangay on your profile before requesting documents"})
		return
	}

	requirements := decodeStringList(docType.Requirements)
	if need := requiredAttachmentCount(requirements); need > 0 && len(attachments) < need {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required attachments",
			"details": fmt.Sprintf("This document requires at least %d supporting file(s).", need),
		})
		return
	}

	var muni models.Municipality
	db.First(&muni, in.MunicipalityID)
	var brgy models.Barangay
	db.First(&brgy, *user.BarangayID)

	// Pickup location is derived from the issuing authority, never free text.
	deliveryAddress := ""
	if in.DeliveryMethod == models.DeliveryPickup {
		if docType.AuthorityLevel == models.AuthorityBarangay {
			deliveryAddress = fmt.Sprintf("%s Barangay Hall, %s, Zambales", brgy.Name, muni.Name)
		} else {
			deliveryAddress = fmt.Sprintf("%s Municipal Hall, Zambales", muni.Name)
		}
	}

	request := models.DocumentRequest{
		RequestNumber:   newRequestNumber("REQ", muni.Slug),
		UserID:          user.ID,
		DocumentTypeID:  docType.ID,
		MunicipalityID:  muni.ID,
		BarangayID:      user.BarangayID,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryAddress: deliveryAddress,
		Purpose:         in.Purpose,
		CivilStatus:     in.CivilStatus,
		AdditionalNotes: in.AdditionalNotes,
		Status:          models.StatusPending,
		ResidentInput: encodeJSONMap(map[string]interface{}{
			"document_type_id": docType.ID,
			"municipality_id":  muni.ID,
			"barangay_id":      *user.BarangayID,
			"delivery_method":  in.DeliveryMethod,
			"purpose":          in.Purpose,
			"civil_status":     in.CivilStatus,
			"additional_notes": in.AdditionalNotes,
		}),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return nil
		}
		folder := documentRequestFolder(muni.Slug, request.ID)
		var stored []string
		for _, file := range attachments {
			rel, err := saveUpload(c, file, folder)
			if err != nil {
				return err
			}
			stored = append(stored, rel)
		}
		return tx.Model(&request).Update("supporting_documents", encodeStringList(stored)).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document request", "details": err.Error()})
		return
	}

	db.Preload("DocumentType").Preload("Municipality").First(&request, request.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Document request submitted", "request": request})
}

func listMyDocumentRequestsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.DocumentRequest
	if err := q.Preload("DocumentType").Preload("Municipality").
		Order("created_at desc").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document requests", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

func getDocumentRequestHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var request models.DocumentRequest
	if err := db.Preload("DocumentType").Preload("Municipality").Preload("User").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document request not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request})
}

// claimTicketHandler returns the pickup claim ticket for an owned request.
// The plaintext claim code is only decrypted when ?reveal=1 is passed.
func claimTicketHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var request models.DocumentRequest
	if err := db.Preload("DocumentType").Preload("Municipality").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document request not found"})
		return
	}
	if request.DeliveryMethod != models.DeliveryPickup {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Claim tickets are only issued for pickup requests"})
		return
	}
	if len(request.QRData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No claim ticket has been issued yet"})
		return
	}

	var payload claimticket.Payload
	if err := json.Unmarshal(request.QRData, &payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read claim ticket", "details": err.Error()})
		return
	}

	resp := gin.H{
		"request_number": request.RequestNumber,
		"status":         request.Status,
		"document":       request.DocumentType.Name,
		"municipality":   request.Municipality.Name,
		"pickup_address": request.DeliveryAddress,
		"code_masked":    payload.CodeMasked,
		"window_start":   payload.WindowStart,
		"window_end":     payload.WindowEnd,
	}
	if request.QRCode != nil {
		resp["qr_url"] = uploadURL(*request.QRCode)
	}
	if c.Query("reveal") == "1" {
		code, err := claimticket.Decrypt(claimticket.DeriveKey(cfg.ClaimTicketKey), payload.CodeEnc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read claim ticket", "details": err.Error()})
			return
		}
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

// verifyDocumentHandler is the public authenticity check behind the QR
// verification link printed on generated certificates.
func verifyDocumentHandler(c *gin.Context) {
	number := c.Param("request_number")
	var request models.DocumentRequest
	err := db.Preload("DocumentType").Preload("Municipality").
		Where("request_number = ?", number).First(&request).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "not_found"})
		return
	}
	if request.DeliveryMethod != models.DeliveryDigital {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "not_digital"})
		return
	}
	if request.DocumentFile == nil || *request.DocumentFile == "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "no_file"})
		return
	}
	if request.Status != models.StatusReady && request.Status != models.StatusCompleted {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": "status_" + request.Status})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"request_number": request.RequestNumber,
		"document":       request.DocumentType.Name,
		"municipality":   request.Municipality.Name,
		"issued_at":      request.ReadyAt,
		"status":         request.Status,
	})
}

// uploadDocumentRequestFilesHandler appends supporting files to an owned
// request that is still being processed.
func uploadDocumentRequestFilesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var request models.DocumentRequest
	if err := db.Preload("Municipality").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document request not found"})
		return
	}
	if request.Status == models.StatusCompleted || request.Status == models.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This request is no longer accepting attachments"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	files := form.File["supporting_documents"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	stored := decodeStringList(request.SupportingDocuments)
	folder := documentRequestFolder(request.Municipality.Slug, request.ID)
	for _, file := range files {
		rel, err := saveUpload(c, file, folder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments", "details": err.Error()})
			return
		}
		stored = append(stored, rel)
	}
	if err := db.Model(&request).Update("supporting_documents", encodeStringList(stored)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachments uploaded", "supporting_documents": stored})
}
