package main

import (
	"net/http"
	"time"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func adminCreateBenefitProgramHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var req struct {
		Code              string           `json:"code" binding:"required"`
		Name              string           `json:"name" binding:"required"`
		Description       string           `json:"description"`
		ProgramType       string           `json:"program_type"`
		RequiredDocuments []string         `json:"required_documents"`
		Amount            *decimal.Decimal `json:"amount"`
		MaxBeneficiaries  int              `json:"max_beneficiaries"`
		DurationDays      int              `json:"duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProgramType == "" {
		req.ProgramType = "general"
	}

	id := muniID
	program := models.BenefitProgram{
		Code:                    req.Code,
		Name:                    req.Name,
		Description:             req.Description,
		ProgramType:             req.ProgramType,
		MunicipalityID:          &id,
		Amount:                  req.Amount,
		MaxBeneficiaries:        req.MaxBeneficiaries,
		DurationDays:            req.DurationDays,
		IsActive:                true,
		IsAcceptingApplications: true,
	}
	if len(req.RequiredDocuments) > 0 {
		program.RequiredDocuments = encodeStringList(req.RequiredDocuments)
	}
	if err := db.Create(&program).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "A program with this code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create program", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_program", program.ID, "program_created", program.Name, nil, nil)
	c.JSON(http.StatusCreated, gin.H{"message": "Program created", "program": program})
}

func adminUpdateBenefitProgramHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var program models.BenefitProgram
	if err := db.Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit program not found"})
		return
	}
	var req struct {
		Name                    *string          `json:"name"`
		Description             *string          `json:"description"`
		ProgramType             *string          `json:"program_type"`
		RequiredDocuments       []string         `json:"required_documents"`
		Amount                  *decimal.Decimal `json:"amount"`
		MaxBeneficiaries        *int             `json:"max_beneficiaries"`
		DurationDays            *int             `json:"duration_days"`
		IsAcceptingApplications *bool            `json:"is_accepting_applications"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ProgramType != nil {
		updates["program_type"] = *req.ProgramType
	}
	if req.RequiredDocuments != nil {
		updates["required_documents"] = encodeStringList(req.RequiredDocuments)
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.MaxBeneficiaries != nil {
		updates["max_beneficiaries"] = *req.MaxBeneficiaries
	}
	if req.DurationDays != nil {
		updates["duration_days"] = *req.DurationDays
	}
	if req.IsAcceptingApplications != nil {
		updates["is_accepting_applications"] = *req.IsAcceptingApplications
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if err := db.Model(&program).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update program", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_program", program.ID, "program_updated", "", nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Program updated"})
}

// adminDeleteBenefitProgramHandler retires a program. Applications stay on
// record, so this deactivates rather than deletes.
func adminDeleteBenefitProgramHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	var program models.BenefitProgram
	if err := db.Where("id = ? AND municipality_id = ?", c.Param("id"), muniID).
		First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit program not found"})
		return
	}
	now := time.Now()
	if err := db.Model(&program).Updates(map[string]interface{}{
		"is_active":                 false,
		"is_accepting_applications": false,
		"completed_at":              now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retire program", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_program", program.ID, "program_retired", program.Name, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Program retired"})
}

// adminMunicipalProgramIDs collects the ids of programs the admin's
// municipality runs.
func adminMunicipalProgramIDs(muniID uint) []uint {
	var ids []uint
	db.Model(&models.BenefitProgram{}).Where("municipality_id = ?", muniID).Pluck("id", &ids)
	return ids
}

func adminListBenefitApplicationsHandler(c *gin.Context) {
	_, muniID := adminFromContext(c)
	ids := adminMunicipalProgramIDs(muniID)
	if len(ids) == 0 {
		c.JSON(http.StatusOK, gin.H{"applications": []models.BenefitApplication{}, "count": 0})
		return
	}
	q := db.Where("program_id IN ?", ids)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var applications []models.BenefitApplication
	if err := q.Preload("User").Preload("Program").
		Order("created_at desc").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get applications", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
}

func adminScopedBenefitApplication(c *gin.Context, muniID uint) (*models.BenefitApplication, bool) {
	var application models.BenefitApplication
	err := db.Preload("Program").
		Joins("JOIN benefit_programs ON benefit_programs.id = benefit_applications.program_id").
		Where("benefit_applications.id = ? AND benefit_programs.municipality_id = ?", c.Param("id"), muniID).
		First(&application).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return nil, false
	}
	return &application, true
}

func adminApproveBenefitApplicationHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	application, ok := adminScopedBenefitApplication(c, muniID)
	if !ok {
		return
	}
	if application.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending applications can be approved"})
		return
	}
	if application.Program != nil && application.Program.MaxBeneficiaries > 0 {
		var approved int64
		db.Model(&models.BenefitApplication{}).
			Where("program_id = ? AND status IN ?", application.ProgramID,
				[]string{models.StatusApproved, models.StatusCompleted}).
			Count(&approved)
		if approved >= int64(application.Program.MaxBeneficiaries) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This program has reached its beneficiary limit"})
			return
		}
	}

	var req struct {
		Remarks string `json:"remarks"`
	}
	_ = c.ShouldBindJSON(&req)

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.StatusApproved,
		"approved_at": now,
		"reviewed_by": admin.ID,
	}
	if req.Remarks != "" {
		updates["remarks"] = req.Remarks
	}
	if err := db.Model(application).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve application", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_application", application.ID, "application_approved", req.Remarks,
		map[string]interface{}{"status": models.StatusPending},
		map[string]interface{}{"status": models.StatusApproved})
	c.JSON(http.StatusOK, gin.H{"message": "Application approved"})
}

func adminRejectBenefitApplicationHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	application, ok := adminScopedBenefitApplication(c, muniID)
	if !ok {
		return
	}
	if application.Status != models.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending applications can be rejected"})
		return
	}
	var req struct {
		Remarks string `json:"remarks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection remarks are required"})
		return
	}

	now := time.Now()
	if err := db.Model(application).Updates(map[string]interface{}{
		"status":      models.StatusRejected,
		"rejected_at": now,
		"reviewed_by": admin.ID,
		"remarks":     req.Remarks,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject application", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_application", application.ID, "application_rejected", req.Remarks,
		map[string]interface{}{"status": models.StatusPending},
		map[string]interface{}{"status": models.StatusRejected})
	c.JSON(http.StatusOK, gin.H{"message": "Application rejected"})
}

// adminCompleteBenefitApplicationHandler records that the benefit has been
// released to the applicant.
func adminCompleteBenefitApplicationHandler(c *gin.Context) {
	admin, muniID := adminFromContext(c)
	application, ok := adminScopedBenefitApplication(c, muniID)
	if !ok {
		return
	}
	if application.Status != models.StatusApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only approved applications can be completed"})
		return
	}

	now := time.Now()
	if err := db.Model(application).Updates(map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": now,
		"reviewed_by":  admin.ID,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete application", "details": err.Error()})
		return
	}
	recordAudit(admin, muniID, "benefit_application", application.ID, "application_completed", "",
		map[string]interface{}{"status": models.StatusApproved},
		map[string]interface{}{"status": models.StatusCompleted})
	c.JSON(http.StatusOK, gin.H{"message": "Application completed"})
}
