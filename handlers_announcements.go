package main

import (
	"net/http"

	"munlink/models"

	"github.com/gin-gonic/gin"
)

// listAnnouncementsHandler is public. Province-wide announcements
// (municipality_id NULL) are always included alongside the filtered
// municipality's own.
func listAnnouncementsHandler(c *gin.Context) {
	q := db.Model(&models.Announcement{}).Where("is_published = ?", true)
	if muniID := c.Query("municipality_id"); muniID != "" {
		q = q.Where("municipality_id = ? OR municipality_id IS NULL", muniID)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var announcements []models.Announcement
	if err := q.Preload("Municipality").Order("created_at desc").Find(&announcements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get announcements", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": announcements, "count": len(announcements)})
}

func getAnnouncementHandler(c *gin.Context) {
	var ann models.Announcement
	if err := db.Preload("Municipality").Where("is_published = ?", true).
		First(&ann, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcement": ann})
}
