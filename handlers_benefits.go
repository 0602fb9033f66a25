package main

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// expireElapsedPrograms auto-completes programs whose duration has run out:
// they stop accepting applications, deactivate, and get a completed_at stamp.
func expireElapsedPrograms(now time.Time) {
	var programs []models.BenefitProgram
	if err := db.Where("is_active = ? AND duration_days > 0 AND completed_at IS NULL", true).
		Find(&programs).Error; err != nil {
		logger.Sugar().Warnf("benefit program expiry sweep failed: %v", err)
		return
	}
	for i := range programs {
		p := &programs[i]
		deadline := p.CreatedAt.AddDate(0, 0, p.DurationDays)
		if now.Before(deadline) {
			continue
		}
		updates := map[string]interface{}{
			"is_active":                 false,
			"is_accepting_applications": false,
			"completed_at":              now,
		}
		if err := db.Model(p).Updates(updates).Error; err != nil {
			logger.Sugar().Warnf("auto-complete of benefit program %d failed: %v", p.ID, err)
		}
	}
}

func decorateBeneficiaryCounts(programs []models.BenefitProgram) {
	for i := range programs {
		db.Model(&models.BenefitApplication{}).
			Where("program_id = ? AND status IN ?", programs[i].ID,
				[]string{models.StatusApproved, models.StatusCompleted}).
			Count(&programs[i].CurrentBeneficiaries)
	}
}

func listBenefitProgramsHandler(c *gin.Context) {
	expireElapsedPrograms(time.Now())

	q := db.Model(&models.BenefitProgram{}).Where("is_active = ?", true)
	if muniID := c.Query("municipality_id"); muniID != "" {
		q = q.Where("municipality_id = ? OR municipality_id IS NULL", muniID)
	}
	if programType := c.Query("type"); programType != "" {
		q = q.Where("program_type = ?", programType)
	}

	var programs []models.BenefitProgram
	if err := q.Preload("Municipality").Order("created_at desc").Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get benefit programs", "details": err.Error()})
		return
	}
	decorateBeneficiaryCounts(programs)
	c.JSON(http.StatusOK, gin.H{"programs": programs, "count": len(programs)})
}

func getBenefitProgramHandler(c *gin.Context) {
	expireElapsedPrograms(time.Now())

	var program models.BenefitProgram
	if err := db.Preload("Municipality").
		Where("id = ? AND is_active = ?", c.Param("id"), true).First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit program not found"})
		return
	}
	db.Model(&models.BenefitApplication{}).
		Where("program_id = ? AND status IN ?", program.ID,
			[]string{models.StatusApproved, models.StatusCompleted}).
		Count(&program.CurrentBeneficiaries)
	c.JSON(http.StatusOK, gin.H{"program": program})
}

func bindBenefitApplicationInput(c *gin.Context) (uint, datatypes.JSON, []*multipart.FileHeader, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return 0, nil, nil, err
		}
		programID, _ := strconv.ParseUint(c.PostForm("program_id"), 10, 32)
		return uint(programID), normalizeApplicationData(c.PostForm("application_data")),
			form.File["supporting_documents"], nil
	}
	var req struct {
		ProgramID       uint            `json:"program_id"`
		ApplicationData json.RawMessage `json:"application_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return 0, nil, nil, err
	}
	return req.ProgramID, normalizeApplicationData(string(req.ApplicationData)), nil, nil
}

// normalizeApplicationData accepts the free-form answers either as a JSON
// object or as a plain string, storing both as valid JSON.
func normalizeApplicationData(raw string) datatypes.JSON {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if json.Valid([]byte(raw)) {
		return datatypes.JSON(raw)
	}
	b, _ := json.Marshal(raw)
	return datatypes.JSON(b)
}

func createBenefitApplicationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	programID, applicationData, attachments, err := bindBenefitApplicationInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if programID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": "program_id is required."})
		return
	}

	var program models.BenefitProgram
	if err := db.Preload("Municipality").First(&program, programID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit program not found"})
		return
	}
	if !program.IsActive || !program.IsAcceptingApplications {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This program is not accepting applications"})
		return
	}
	if program.MunicipalityID != nil &&
		(user.MunicipalityID == nil || *user.MunicipalityID != *program.MunicipalityID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This program is limited to residents of its municipality"})
		return
	}

	var existing int64
	db.Model(&models.BenefitApplication{}).
		Where("user_id = ? AND program_id = ? AND status IN ?", user.ID, program.ID,
			[]string{models.StatusPending, models.StatusApproved}).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You already have an active application for this program"})
		return
	}

	required := decodeStringList(program.RequiredDocuments)
	if need := requiredAttachmentCount(required); need > 0 && len(attachments) < need {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required attachments",
			"details": fmt.Sprintf("This program requires at least %d supporting file(s).", need),
		})
		return
	}

	slug := "province"
	if program.Municipality != nil {
		slug = program.Municipality.Slug
	}

	application := models.BenefitApplication{
		ApplicationNumber: newRequestNumber("APP", slug),
		UserID:            user.ID,
		ProgramID:         program.ID,
		ApplicationData:   applicationData,
		Status:            models.StatusPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		if len(attachments) == 0 {
			return nil
		}
		folder := benefitFolder(slug, application.ID)
		var stored []string
		for _, file := range attachments {
			rel, err := saveUpload(c, file, folder)
			if err != nil {
				return err
			}
			stored = append(stored, rel)
		}
		return tx.Model(&application).Update("supporting_documents", encodeStringList(stored)).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application", "details": err.Error()})
		return
	}

	db.Preload("Program").First(&application, application.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted", "application": application})
}

func listMyBenefitApplicationsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var applications []models.BenefitApplication
	if err := db.Where("user_id = ?", user.ID).
		Preload("Program").Preload("Program.Municipality").
		Order("created_at desc").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get applications", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": applications, "count": len(applications)})
}

// benefitHistoryHandler lists the granted benefits (approved or completed
// applications) with their program snapshot.
func benefitHistoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var applications []models.BenefitApplication
	if err := db.Where("user_id = ? AND status IN ?", user.ID,
		[]string{models.StatusApproved, models.StatusCompleted}).
		Preload("Program").Preload("Program.Municipality").
		Order("created_at desc").Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get benefit history", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": applications, "count": len(applications)})
}

func uploadBenefitApplicationFilesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var application models.BenefitApplication
	if err := db.Preload("Program").Preload("Program.Municipality").
		First(&application, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if application.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only upload to your own application"})
		return
	}
	if application.Status == models.StatusCompleted || application.Status == models.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This application is no longer accepting attachments"})
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

	slug := "province"
	if application.Program != nil && application.Program.Municipality != nil {
		slug = application.Program.Municipality.Slug
	}
	stored := decodeStringList(application.SupportingDocuments)
	folder := benefitFolder(slug, application.ID)
	for _, file := range files {
		rel, err := saveUpload(c, file, folder)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments", "details": err.Error()})
			return
		}
		stored = append(stored, rel)
	}
	if err := db.Model(&application).Update("supporting_documents", encodeStringList(stored)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachments uploaded", "supporting_documents": stored})
}
