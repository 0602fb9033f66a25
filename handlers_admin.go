package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"munlink/models"
	"munlink/pkg/claimticket"
	"munlink/pkg/docgen"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ---- resident verification ----

func adminListUsersHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	q := db.Where("municipality_id = ? AND role = ?", muniID, models.RoleResident)
	if status := c.Query("status"); status != "" {
		q = q.Where("verification_status = ?", status)
	}
	var users []models.User
	if err := q.Preload("Barangay").Order("created_at desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get users", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

func adminGetUserHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	var user models.User
	if err := db.Preload("Barangay").Preload("Municipality").
		Where("id = ? AND municipality_id = ? AND role = ?", c.Param("id"), muniID, models.RoleResident).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func adminApproveUserHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var user models.User
	if err := db.Where("id = ? AND municipality_id = ? AND role = ?", c.Param("id"), muniID, models.RoleResident).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.VerificationStatus != models.VerificationPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending verifications can be approved"})
		return
	}

	old := map[string]interface{}{"verification_status": user.VerificationStatus}
	updates := map[string]interface{}{
		"email_verified":      true,
		"admin_verified":      true,
		"verification_status": models.VerificationVerified,
		"rejection_reason":    nil,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve user", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "user", user.ID, "resident_approved", "",
		old, map[string]interface{}{"verification_status": models.VerificationVerified})
	c.JSON(http.StatusOK, gin.H{"message": "Resident verified"})
}

// adminRejectUserHandler rejects a verification submission: the uploaded
// images are discarded, both verification flags reset, and the account is
// deactivated until the resident resubmits through support.
func adminRejectUserHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	var user models.User
	if err := db.Where("id = ? AND municipality_id = ? AND role = ?", c.Param("id"), muniID, models.RoleResident).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.VerificationStatus != models.VerificationPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending verifications can be rejected"})
		return
	}

	old := map[string]interface{}{
		"verification_status": user.VerificationStatus,
		"email_verified":      user.EmailVerified,
		"admin_verified":      user.AdminVerified,
	}
	updates := map[string]interface{}{
		"valid_id_front":      nil,
		"valid_id_back":       nil,
		"selfie_with_id":      nil,
		"proof_of_residency":  nil,
		"email_verified":      false,
		"admin_verified":      false,
		"verification_status": models.VerificationRejected,
		"rejection_reason":    req.Reason,
		"is_active":           false,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject user", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "user", user.ID, "resident_rejected", req.Reason,
		old, map[string]interface{}{"verification_status": models.VerificationRejected, "is_active": false})
	c.JSON(http.StatusOK, gin.H{"message": "Resident verification rejected"})
}

// ---- document request processing ----

func adminScopedDocumentRequest(c *gin.Context, muniID uint) (*models.DocumentRequest, bool) {
	var request models.DocumentRequest
	if err := db.Preload("DocumentType").Preload("Municipality").Preload("User").Preload("User.Barangay").
		Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&request).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document request not found"})
		return nil, false
	}
	return &request, true
}

func adminListDocumentRequestsHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	q := db.Where("municipality_id = ?", muniID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.DocumentRequest
	if err := q.Preload("DocumentType").Preload("User").
		Order("created_at desc").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get document requests", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

// adminApproveDocumentRequestHandler approves a pending request. Pickup
// requests get a claim ticket: a one-time code stored encrypted plus a QR
// image the resident presents at the counter.
func adminApproveDocumentRequestHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	request, ok := adminScopedDocumentRequest(c, muniID)
	if !ok {
		return
	}
	if request.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending requests can be approved"})
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req)

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.StatusApproved,
		"approved_at":  now,
		"processed_by": admin.ID,
	}
	if req.Notes != "" {
		updates["admin_notes"] = req.Notes
	}

	if request.DeliveryMethod == models.DeliveryPickup {
		key := claimticket.DeriveKey(cfg.ClaimTicketKey)
		ticket, err := claimticket.Issue(key, request.DocumentType.ProcessingDays, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue claim ticket", "details": err.Error()})
			return
		}
		payload := claimticket.Payload{
			RequestNumber: request.RequestNumber,
			CodeEnc:       ticket.CodeEncrypted,
			CodeMasked:    ticket.CodeMasked,
			WindowStart:   ticket.WindowStart.Format(time.RFC3339),
			WindowEnd:     ticket.WindowEnd.Format(time.RFC3339),
		}
		rel := fmt.Sprintf("generated_docs/%s-claim.png", request.RequestNumber)
		if err := claimticket.WritePNG(payload, filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue claim ticket", "details": err.Error()})
			return
		}
		qrData, _ := json.Marshal(payload)
		updates["qr_code"] = rel
		updates["qr_data"] = qrData
	}

	if err := db.Model(request).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve request", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "document_request", request.ID, "request_approved", req.Notes,
		map[string]interface{}{"status": models.StatusPending},
		map[string]interface{}{"status": models.StatusApproved})

	db.Preload("DocumentType").First(request, request.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Request approved", "request": request})
}

func adminRejectDocumentRequestHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	request, ok := adminScopedDocumentRequest(c, muniID)
	if !ok {
		return
	}
	if request.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending requests can be rejected"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           models.StatusRejected,
		"rejected_at":      now,
		"rejection_reason": req.Reason,
		"processed_by":     admin.ID,
	}
	if err := db.Model(request).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject request", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "document_request", request.ID, "request_rejected", req.Reason,
		map[string]interface{}{"status": models.StatusPending},
		map[string]interface{}{"status": models.StatusRejected})
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// adminGeneratePDFHandler renders the certificate for an approved digital
// request and moves it to ready. A render failure leaves the request
// untouched.
func adminGeneratePDFHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	request, ok := adminScopedDocumentRequest(c, muniID)
	if !ok {
		return
	}
	if request.Status != models.StatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only approved requests can be generated"})
		return
	}
	if request.DeliveryMethod != models.DeliveryDigital {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PDF generation is only for digital delivery requests"})
		return
	}

	barangayName := ""
	if request.User != nil && request.User.Barangay != nil {
		barangayName = request.User.Barangay.Name
	}
	residentName := ""
	if request.User != nil {
		residentName = fmt.Sprintf("%s %s", request.User.FirstName, request.User.LastName)
	}

	now := time.Now()
	cert := docgen.Certificate{
		RequestNumber:    request.RequestNumber,
		DocumentName:     request.DocumentType.Name,
		ResidentName:     residentName,
		MunicipalityName: request.Municipality.Name,
		BarangayName:     barangayName,
		Purpose:          request.Purpose,
		IssuedAt:         now,
		SignatoryName:    fmt.Sprintf("%s %s", admin.FirstName, admin.LastName),
		SignatoryTitle:   "Municipal Administrator",
		VerifyURL:        fmt.Sprintf("%s/verify/%s", cfg.WebURL, request.RequestNumber),
	}
	rel := fmt.Sprintf("generated_docs/%s.pdf", request.RequestNumber)
	if err := docgen.Write(cert, filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{
		"document_file": rel,
		"status":        models.StatusReady,
		"ready_at":      now,
		"processed_by":  admin.ID,
	}
	if err := db.Model(request).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "document_request", request.ID, "document_generated", "",
		map[string]interface{}{"status": models.StatusApproved},
		map[string]interface{}{"status": models.StatusReady})
	db.Preload("DocumentType").Preload("Municipality").First(request, request.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Document generated",
		"document_file": rel,
		"url":           uploadURL(rel),
		"request":       request,
	})
}

func adminReadyDocumentRequestHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	request, ok := adminScopedDocumentRequest(c, muniID)
	if !ok {
		return
	}
	if request.Status != models.StatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only approved requests can be marked ready"})
		return
	}
	now := time.Now()
	if err := db.Model(request).Updates(map[string]interface{}{
		"status":   models.StatusReady,
		"ready_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "document_request", request.ID, "request_ready", "",
		map[string]interface{}{"status": models.StatusApproved},
		map[string]interface{}{"status": models.StatusReady})
	c.JSON(http.StatusOK, gin.H{"message": "Request marked ready for pickup"})
}

// adminCompleteDocumentRequestHandler closes out a request. For pickups the
// counter staff may pass the resident's claim code for confirmation; a
// mismatch blocks completion.
func adminCompleteDocumentRequestHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	request, ok := adminScopedDocumentRequest(c, muniID)
	if !ok {
		return
	}
	if request.Status != models.StatusApproved && request.Status != models.StatusReady {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only approved or ready requests can be completed"})
		return
	}

	var req struct {
		ClaimCode string `json:"claim_code"`
	}
	_ = c.ShouldBindJSON(&req)

	if req.ClaimCode != "" && request.DeliveryMethod == models.DeliveryPickup && len(request.QRData) > 0 {
		var payload claimticket.Payload
		if err := json.Unmarshal(request.QRData, &payload); err == nil {
			code, err := claimticket.Decrypt(claimticket.DeriveKey(cfg.ClaimTicketKey), payload.CodeEnc)
			if err != nil || code != req.ClaimCode {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim code"})
				return
			}
		}
	}

	now := time.Now()
	old := map[string]interface{}{"status": request.Status}
	if err := db.Model(request).Updates(map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete request", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "document_request", request.ID, "request_completed", "",
		old, map[string]interface{}{"status": models.StatusCompleted})
	c.JSON(http.StatusOK, gin.H{"message": "Request completed"})
}

// ---- transfers ----

func adminListTransfersHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	q := db.Where("to_municipality_id = ?", muniID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var transfers []models.TransferRequest
	if err := q.Preload("User").Preload("FromMunicipality").Preload("ToMunicipality").
		Order("created_at desc").Find(&transfers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transfer requests", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers, "count": len(transfers)})
}

// adminApproveTransferHandler moves the resident into the admin's
// municipality. The barangay is cleared; the resident picks a new one on
// their profile.
func adminApproveTransferHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var transfer models.TransferRequest
	if err := db.Where("id = ? AND to_municipality_id = ?", c.Param("id"), muniID).
		First(&transfer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer request not found"})
		return
	}
	if transfer.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending transfers can be approved"})
		return
	}

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&transfer).Updates(map[string]interface{}{
			"status":      models.StatusApproved,
			"reviewed_by": admin.ID,
			"reviewed_at": now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", transfer.UserID).Updates(map[string]interface{}{
			"municipality_id": transfer.ToMunicipalityID,
			"barangay_id":     nil,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve transfer", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "transfer_request", transfer.ID, "transfer_approved", "",
		map[string]interface{}{"municipality_id": transfer.FromMunicipalityID},
		map[string]interface{}{"municipality_id": transfer.ToMunicipalityID})
	c.JSON(http.StatusOK, gin.H{"message": "Transfer approved"})
}

func adminRejectTransferHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var transfer models.TransferRequest
	if err := db.Where("id = ? AND to_municipality_id = ?", c.Param("id"), muniID).
		First(&transfer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transfer request not found"})
		return
	}
	if transfer.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending transfers can be rejected"})
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	now := time.Now()
	if err := db.Model(&transfer).Updates(map[string]interface{}{
		"status":      models.StatusRejected,
		"reviewed_by": admin.ID,
		"reviewed_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject transfer", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "transfer_request", transfer.ID, "transfer_rejected", req.Reason, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Transfer rejected"})
}

// ---- issues ----

func adminListIssuesHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	q := db.Where("municipality_id = ?", muniID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var issues []models.Issue
	if err := q.Preload("User").Preload("Category").
		Order("created_at desc").Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get issues", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

var issueTransitions = map[string][]string{
	models.IssueOpen:       {models.IssueInProgress, models.IssueResolved, models.IssueDismissed},
	models.IssueInProgress: {models.IssueResolved, models.IssueDismissed},
}

func adminUpdateIssueStatusHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var issue models.Issue
	if err := db.Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&issue).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	var req struct {
		Status          string `json:"status" binding:"required"`
		ResolutionNotes string `json:"resolution_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allowed := false
	for _, next := range issueTransitions[issue.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid status transition",
			"details": fmt.Sprintf("Cannot move an issue from %s to %s.", issue.Status, req.Status),
		})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.ResolutionNotes != "" {
		updates["resolution_notes"] = req.ResolutionNotes
	}
	if req.Status == models.IssueResolved || req.Status == models.IssueDismissed {
		updates["resolved_at"] = time.Now()
	}
	if err := db.Model(&issue).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "issue", issue.ID, "issue_"+req.Status, req.ResolutionNotes,
		map[string]interface{}{"status": issue.Status},
		map[string]interface{}{"status": req.Status})
	c.JSON(http.StatusOK, gin.H{"message": "Issue updated"})
}

// ---- announcements ----

func adminCreateAnnouncementHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content" binding:"required"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now := time.Now()
	id := muniID
	ann := models.Announcement{
		MunicipalityID: &id,
		AuthorID:       admin.ID,
		Title:          req.Title,
		Content:        req.Content,
		Category:       req.Category,
		IsPublished:    true,
		PublishedAt:    &now,
	}
	if err := db.Create(&ann).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create announcement", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "announcement", ann.ID, "announcement_created", req.Title, nil, nil)
	c.JSON(http.StatusCreated, gin.H{"message": "Announcement published", "announcement": ann})
}

func adminUpdateAnnouncementHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var ann models.Announcement
	if err := db.Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&ann).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}
	var req struct {
		Title       *string `json:"title"`
		Content     *string `json:"content"`
		Category    *string `json:"category"`
		IsPublished *bool   `json:"is_published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if err := db.Model(&ann).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update announcement", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "announcement", ann.ID, "announcement_updated", "", nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Announcement updated"})
}

func adminDeleteAnnouncementHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var ann models.Announcement
	if err := db.Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&ann).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}
	if err := db.Delete(&ann).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete announcement", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "announcement", ann.ID, "announcement_deleted", ann.Title, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
}

// ---- audit trail ----

func adminListAuditLogsHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	q := db.Where("municipality_id = ?", muniID)
	if entityType := c.Query("entity_type"); entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at desc").Limit(500).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit logs", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs, "count": len(logs)})
}
