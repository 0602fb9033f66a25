package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"munlink/models"
	"munlink/pkg/report"

	"github.com/gin-gonic/gin"
)

// exportRange resolves a date-range preset to a cutoff; the zero time means
// no cutoff.
func exportRange(preset string, now time.Time) (time.Time, error) {
	switch preset {
	case "", "all":
		return time.Time{}, nil
	case "last_7_days":
		return now.AddDate(0, 0, -7), nil
	case "last_30_days":
		return now.AddDate(0, 0, -30), nil
	}
	return time.Time{}, fmt.Errorf("unknown range %q", preset)
}

func exportPath(name, ext string, now time.Time) string {
	return fmt.Sprintf("exports/%s-%s.%s", name, now.Format("20060102-150405"), ext)
}

// writeExport renders the table at rel and answers with the artifact URL.
// It reports whether the artifact was written.
func writeExport(c *gin.Context, t report.Table, rel, format string) bool {
	full := filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))
	var err error
	if format == "xlsx" {
		err = report.WriteXLSX(t, full)
	} else {
		err = report.WritePDF(t, full)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export", "details": err.Error()})
		return false
	}
	c.JSON(http.StatusOK, gin.H{"url": uploadURL(rel), "summary": gin.H{"rows": len(t.Rows)}})
	return true
}

func adminExportUsersHandler(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, muniID := adminFromContext(c)
		var req struct {
			Range string `json:"range"`
		}
		_ = c.ShouldBindJSON(&req)

		now := time.Now()
		since, err := exportRange(req.Range, now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid range", "details": err.Error()})
			return
		}

		q := db.Where("municipality_id = ? AND role = ?", muniID, models.RoleResident)
		if !since.IsZero() {
			q = q.Where("created_at >= ?", since)
		}
		var users []models.User
		if err := q.Preload("Barangay").Order("created_at desc").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export", "details": err.Error()})
			return
		}

		t := report.Table{
			Title:       "Registered Residents",
			GeneratedAt: now,
			Columns:     []string{"Username", "Name", "Email", "Barangay", "Verification", "Registered"},
		}
		for _, u := range users {
			barangay := ""
			if u.Barangay != nil {
				barangay = u.Barangay.Name
			}
			t.Rows = append(t.Rows, []string{
				u.Username,
				fmt.Sprintf("%s %s", u.FirstName, u.LastName),
				u.Email,
				barangay,
				u.VerificationStatus,
				u.CreatedAt.Format("2006-01-02"),
			})
		}

		rel := exportPath("residents", format, now)
		if writeExport(c, t, rel, format) {
			recordAudit(admin, muniID, "export", 0, "export_users", rel, nil,
				map[string]interface{}{"rows": len(t.Rows), "range": req.Range})
		}
	}
}

func adminExportDocumentsHandler(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, muniID := adminFromContext(c)
		var req struct {
			Range  string `json:"range"`
			Status string `json:"status"`
		}
		_ = c.ShouldBindJSON(&req)

		now := time.Now()
		since, err := exportRange(req.Range, now)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid range", "details": err.Error()})
			return
		}

		q := db.Where("municipality_id = ?", muniID)
		if !since.IsZero() {
			q = q.Where("created_at >= ?", since)
		}
		if req.Status != "" {
			q = q.Where("status = ?", req.Status)
		}
		var requests []models.DocumentRequest
		if err := q.Preload("DocumentType").Preload("User").
			Order("created_at desc").Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export", "details": err.Error()})
			return
		}

		t := report.Table{
			Title:       "Document Requests",
			GeneratedAt: now,
			Columns:     []string{"Request No.", "Document", "Resident", "Delivery", "Status", "Filed"},
		}
		for _, r := range requests {
			document := ""
			if r.DocumentType != nil {
				document = r.DocumentType.Name
			}
			resident := ""
			if r.User != nil {
				resident = fmt.Sprintf("%s %s", r.User.FirstName, r.User.LastName)
			}
			t.Rows = append(t.Rows, []string{
				r.RequestNumber,
				document,
				resident,
				r.DeliveryMethod,
				r.Status,
				r.CreatedAt.Format("2006-01-02"),
			})
		}

		rel := exportPath("document-requests", format, now)
		if writeExport(c, t, rel, format) {
			recordAudit(admin, muniID, "export", 0, "export_documents", rel, nil,
				map[string]interface{}{"rows": len(t.Rows), "range": req.Range})
		}
	}
}
