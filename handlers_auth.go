package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"munlink/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

func registerHandler(c *gin.Context) {
	var req struct {
		Username       string `json:"username" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Password       string `json:"password" binding:"required"`
		FirstName      string `json:"first_name" binding:"required"`
		MiddleName     string `json:"middle_name"`
		LastName       string `json:"last_name" binding:"required"`
		Phone          string `json:"phone"`
		DateOfBirth    string `json:"date_of_birth"`
		MunicipalityID uint   `json:"municipality_id" binding:"required"`
		BarangayID     *uint  `json:"barangay_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short", "details": "Passwords must be at least 8 characters."})
		return
	}

	var muni models.Municipality
	if err := db.First(&muni, req.MunicipalityID).Error; err != nil || !muni.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid municipality_id"})
		return
	}
	if req.BarangayID != nil {
		var brgy models.Barangay
		if err := db.First(&brgy, *req.BarangayID).Error; err != nil || brgy.MunicipalityID != muni.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barangay_id"})
			return
		}
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		t, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date_of_birth", "details": "Use YYYY-MM-DD."})
			return
		}
		dob = &t
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register", "details": err.Error()})
		return
	}

	muniID := muni.ID
	user := models.User{
		Username:           normalizeUsername(req.Username),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       hash,
		FirstName:          req.FirstName,
		MiddleName:         req.MiddleName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		DateOfBirth:        dob,
		Role:               models.RoleResident,
		MunicipalityID:     &muniID,
		BarangayID:         req.BarangayID,
		VerificationStatus: models.VerificationUnsubmitted,
		IsActive:           true,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Submit your verification documents to unlock municipal services.",
		"user":    user,
	})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errAccountDeactivated) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been deactivated. Contact your municipal office."})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, err := issueAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create refresh token"})
		return
	}

	now := time.Now()
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("last_login", now)
	user.LastLogin = &now

	db.Preload("Municipality").Preload("Barangay").First(&user, user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token.
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil || !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	accessToken, err := issueAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": newRT})
}

// logoutHandler revokes the presented refresh token.
func logoutHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	db.Preload("Municipality").Preload("Barangay").First(user, user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// updateMeHandler edits the mutable profile fields. Verification flags, role
// and municipality are never touched here; municipality moves go through the
// transfer workflow.
func updateMeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		FirstName  *string `json:"first_name"`
		MiddleName *string `json:"middle_name"`
		LastName   *string `json:"last_name"`
		Phone      *string `json:"phone"`
		BarangayID *uint   `json:"barangay_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.MiddleName != nil {
		updates["middle_name"] = *req.MiddleName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.BarangayID != nil {
		var brgy models.Barangay
		if err := db.First(&brgy, *req.BarangayID).Error; err != nil ||
			user.MunicipalityID == nil || brgy.MunicipalityID != *user.MunicipalityID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barangay_id", "details": "Barangay must belong to your municipality."})
			return
		}
		updates["barangay_id"] = *req.BarangayID
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "details": err.Error()})
		return
	}
	db.Preload("Municipality").Preload("Barangay").First(user, user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

// submitVerificationHandler stores the four identity images and queues the
// account for admin review.
func submitVerificationHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	fields := []string{"valid_id_front", "valid_id_back", "selfie_with_id", "proof_of_residency"}
	stored := map[string]string{}
	for _, field := range fields {
		file, err := c.FormFile(field)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required attachments", "details": fmt.Sprintf("%s is required", field)})
			return
		}
		rel, err := saveUpload(c, file, fmt.Sprintf("verification/%s", user.Username))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachments", "details": err.Error()})
			return
		}
		stored[field] = rel
	}

	updates := map[string]interface{}{
		"valid_id_front":      stored["valid_id_front"],
		"valid_id_back":       stored["valid_id_back"],
		"selfie_with_id":      stored["selfie_with_id"],
		"proof_of_residency":  stored["proof_of_residency"],
		"verification_status": models.VerificationPending,
		"rejection_reason":    nil,
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit verification", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification documents submitted for review"})
}

func changePasswordHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short", "details": "Passwords must be at least 8 characters."})
		return
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password", "details": err.Error()})
		return
	}
	if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// forgotPasswordHandler starts the reset flow. The response is identical
// whether or not the submitted details matched, so account existence is not
// leaked; a token is only minted when email, username, and birth date all
// agree.
func forgotPasswordHandler(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Username    string `json:"username" binding:"required"`
		DateOfBirth string `json:"date_of_birth" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok := gin.H{"message": "If the details match an account, a reset link has been sent."}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusOK, ok)
		return
	}
	var user models.User
	if err := db.Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, ok)
		return
	}
	if user.Username != normalizeUsername(req.Username) ||
		user.DateOfBirth == nil || !sameDate(*user.DateOfBirth, dob) || !user.IsActive {
		c.JSON(http.StatusOK, ok)
		return
	}

	token, err := newResetToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "details": err.Error()})
		return
	}
	row := models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: time.Now().Add(resetTokenTTL),
		LastIP:    c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if err := db.Create(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request", "details": err.Error()})
		return
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", cfg.WebURL, token)
	if err := sendPasswordResetEmail(cfg, user.Email, link, user.FirstName); err != nil {
		logger.Sugar().Warnf("password reset mail to %s failed: %v", user.Email, err)
	}
	c.JSON(http.StatusOK, ok)
}

func verifyResetTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var row models.PasswordResetToken
	err := db.Where("token_hash = ?", hashResetToken(req.Token)).First(&row).Error
	valid := err == nil && row.Valid(time.Now())
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

func resetPasswordHandler(c *gin.Context) {
	var req struct {
		Token           string `json:"token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}
	if len(req.NewPassword) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password too short", "details": "Passwords must be at least 8 characters."})
		return
	}

	var row models.PasswordResetToken
	if err := db.Where("token_hash = ?", hashResetToken(req.Token)).First(&row).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if !row.Valid(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "details": err.Error()})
		return
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", row.UserID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		if err := tx.Model(&row).Update("used_at", now).Error; err != nil {
			return err
		}
		// Force re-login everywhere after a reset.
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", row.UserID).Update("revoked", true).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// createTransferHandler opens a municipality transfer request. Only one
// pending transfer may exist at a time.
func createTransferHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		ToMunicipalityID uint   `json:"to_municipality_id" binding:"required"`
		Notes            string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if user.MunicipalityID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your account has no registered municipality"})
		return
	}
	if *user.MunicipalityID == req.ToMunicipalityID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already registered in this municipality"})
		return
	}
	var target models.Municipality
	if err := db.First(&target, req.ToMunicipalityID).Error; err != nil || !target.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to_municipality_id"})
		return
	}

	var pending int64
	db.Model(&models.TransferRequest{}).Where("user_id = ? AND status = ?", user.ID, models.StatusPending).Count(&pending)
	if pending > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You already have an active transfer request"})
		return
	}

	transfer := models.TransferRequest{
		UserID:             user.ID,
		FromMunicipalityID: *user.MunicipalityID,
		ToMunicipalityID:   req.ToMunicipalityID,
		Notes:              req.Notes,
		Status:             models.StatusPending,
	}
	if err := db.Create(&transfer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transfer request", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Transfer request submitted", "transfer": transfer})
}

func listMyTransfersHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var transfers []models.TransferRequest
	if err := db.Where("user_id = ?", user.ID).
		Preload("FromMunicipality").Preload("ToMunicipality").
		Order("created_at desc").Find(&transfers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get transfer requests", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers, "count": len(transfers)})
}

// newResetToken mints a url-safe random token.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
