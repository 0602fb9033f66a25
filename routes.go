package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
)

// setupRouter wires middleware and every route group onto a fresh engine.
func setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.WebURL, cfg.AdminURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":  "MunLink Zambales API",
			"province": "Zambales",
			"status":   "ok",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/uploads/*filepath", serveUploadedFile)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", registerHandler)
		auth.POST("/login", loginHandler)
		auth.POST("/refresh", refreshHandler)
		auth.POST("/logout", logoutHandler)
		auth.POST("/forgot-password", forgotPasswordHandler)
		auth.POST("/forgot-password/verify", verifyResetTokenHandler)
		auth.POST("/reset-password", resetPasswordHandler)

		authed := auth.Group("", jwtAuthMiddleware())
		authed.GET("/me", meHandler)
		authed.PUT("/me", updateMeHandler)
		authed.POST("/verification", submitVerificationHandler)
		authed.POST("/change-password", changePasswordHandler)
		authed.POST("/transfer", createTransferHandler)
		authed.GET("/transfer", listMyTransfersHandler)
	}

	municipalities := api.Group("/municipalities")
	{
		municipalities.GET("", listMunicipalitiesHandler)
		municipalities.GET("/:id", getMunicipalityHandler)
		municipalities.GET("/:id/barangays", listBarangaysHandler)
	}

	announcements := api.Group("/announcements")
	{
		announcements.GET("", listAnnouncementsHandler)
		announcements.GET("/:id", getAnnouncementHandler)
	}

	documents := api.Group("/documents")
	{
		documents.GET("/types", listDocumentTypesHandler)
		documents.GET("/verify/:request_number", verifyDocumentHandler)

		authed := documents.Group("", jwtAuthMiddleware())
		authed.GET("/my-requests", listMyDocumentRequestsHandler)
		authed.GET("/requests/:id", getDocumentRequestHandler)
		authed.GET("/requests/:id/claim-ticket", claimTicketHandler)

		verified := documents.Group("", jwtAuthMiddleware(), fullyVerifiedRequired())
		verified.POST("/requests", createDocumentRequestHandler)
		verified.POST("/requests/:id/upload", uploadDocumentRequestFilesHandler)
	}

	benefits := api.Group("/benefits")
	{
		benefits.GET("/programs", listBenefitProgramsHandler)
		benefits.GET("/programs/:id", getBenefitProgramHandler)

		authed := benefits.Group("", jwtAuthMiddleware())
		authed.GET("/my-applications", listMyBenefitApplicationsHandler)
		authed.GET("/my-history", benefitHistoryHandler)

		verified := benefits.Group("", jwtAuthMiddleware(), fullyVerifiedRequired())
		verified.POST("/applications", createBenefitApplicationHandler)
		verified.POST("/applications/:id/upload", uploadBenefitApplicationFilesHandler)
	}

	marketplace := api.Group("/marketplace")
	{
		marketplace.GET("/items", listItemsHandler)
		marketplace.GET("/items/:id", getItemHandler)

		verified := marketplace.Group("", jwtAuthMiddleware(), fullyVerifiedRequired())
		verified.POST("/items", createItemHandler)
		verified.PUT("/items/:id", updateItemHandler)
		verified.DELETE("/items/:id", deleteItemHandler)
		verified.POST("/items/:id/images", uploadItemImagesHandler)
		verified.POST("/transactions", createTransactionHandler)
		verified.GET("/transactions", listMyTransactionsHandler)
		verified.POST("/transactions/:id/complete", completeTransactionHandler)
		verified.POST("/transactions/:id/cancel", cancelTransactionHandler)
	}

	issues := api.Group("/issues")
	{
		issues.GET("/categories", listIssueCategoriesHandler)

		authed := issues.Group("", jwtAuthMiddleware())
		authed.GET("/my-issues", listMyIssuesHandler)
		authed.GET("/:id", getIssueHandler)

		verified := issues.Group("", jwtAuthMiddleware(), fullyVerifiedRequired())
		verified.POST("", createIssueHandler)
	}

	admin := api.Group("/admin", jwtAuthMiddleware(), adminRequired())
	{
		admin.GET("/users", adminListUsersHandler)
		admin.GET("/users/:id", adminGetUserHandler)
		admin.POST("/users/:id/approve", adminApproveUserHandler)
		admin.POST("/users/:id/reject", adminRejectUserHandler)

		admin.GET("/documents/requests", adminListDocumentRequestsHandler)
		admin.POST("/documents/requests/:id/approve", adminApproveDocumentRequestHandler)
		admin.POST("/documents/requests/:id/reject", adminRejectDocumentRequestHandler)
		admin.POST("/documents/requests/:id/generate-pdf", adminGeneratePDFHandler)
		admin.POST("/documents/requests/:id/ready", adminReadyDocumentRequestHandler)
		admin.POST("/documents/requests/:id/complete", adminCompleteDocumentRequestHandler)

		admin.POST("/benefits/programs", adminCreateBenefitProgramHandler)
		admin.PUT("/benefits/programs/:id", adminUpdateBenefitProgramHandler)
		admin.DELETE("/benefits/programs/:id", adminDeleteBenefitProgramHandler)
		admin.GET("/benefits/applications", adminListBenefitApplicationsHandler)
		admin.POST("/benefits/applications/:id/approve", adminApproveBenefitApplicationHandler)
		admin.POST("/benefits/applications/:id/reject", adminRejectBenefitApplicationHandler)
		admin.POST("/benefits/applications/:id/complete", adminCompleteBenefitApplicationHandler)

		admin.GET("/transfers", adminListTransfersHandler)
		admin.POST("/transfers/:id/approve", adminApproveTransferHandler)
		admin.POST("/transfers/:id/reject", adminRejectTransferHandler)

		admin.GET("/issues", adminListIssuesHandler)
		admin.POST("/issues/:id/status", adminUpdateIssueStatusHandler)

		admin.POST("/announcements", adminCreateAnnouncementHandler)
		admin.PUT("/announcements/:id", adminUpdateAnnouncementHandler)
		admin.DELETE("/announcements/:id", adminDeleteAnnouncementHandler)

		admin.POST("/exports/users.pdf", adminExportUsersHandler("pdf"))
		admin.POST("/exports/users.xlsx", adminExportUsersHandler("xlsx"))
		admin.POST("/exports/documents.pdf", adminExportDocumentsHandler("pdf"))
		admin.POST("/exports/documents.xlsx", adminExportDocumentsHandler("xlsx"))

		admin.GET("/audit-logs", adminListAuditLogsHandler)
	}

	return r
}
