package main

import (
	"net/http"
	"strconv"
	"strings"

	"munlink/models"

	"github.com/gin-gonic/gin"
)

func listIssueCategoriesHandler(c *gin.Context) {
	var categories []models.IssueCategory
	if err := db.Where("is_active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get issue categories", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "count": len(categories)})
}

// createIssueHandler files an issue report, JSON or multipart with photos.
// The category label is stamped from the catalog row at report time.
func createIssueHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if user.MunicipalityID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your account has no registered municipality"})
		return
	}

	var title, description, location string
	var categoryID uint
	var photoFiles []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		title = c.PostForm("title")
		description = c.PostForm("description")
		location = c.PostForm("location")
		id, _ := strconv.ParseUint(c.PostForm("category_id"), 10, 32)
		categoryID = uint(id)

		for _, file := range form.File["photos"] {
			rel, err := saveUpload(c, file, "issues")
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photos", "details": err.Error()})
				return
			}
			photoFiles = append(photoFiles, rel)
		}
	} else {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Location    string `json:"location"`
			CategoryID  uint   `json:"category_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		title, description, location, categoryID = req.Title, req.Description, req.Location, req.CategoryID
	}

	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": "title and description are required."})
		return
	}

	issue := models.Issue{
		UserID:         user.ID,
		MunicipalityID: *user.MunicipalityID,
		Title:          title,
		Description:    description,
		Location:       location,
		Status:         models.IssueOpen,
	}
	if categoryID != 0 {
		var category models.IssueCategory
		if err := db.First(&category, categoryID).Error; err != nil || !category.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		issue.CategoryID = &category.ID
		issue.CategoryLabel = category.Name
	}
	if len(photoFiles) > 0 {
		issue.Photos = encodeStringList(photoFiles)
	}

	if err := db.Create(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to report issue", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Issue reported", "issue": issue})
}

func listMyIssuesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var issues []models.Issue
	if err := q.Preload("Category").Preload("Municipality").
		Order("created_at desc").Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get issues", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "count": len(issues)})
}

func getIssueHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var issue models.Issue
	if err := db.Preload("Category").Preload("Municipality").
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&issue).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}
