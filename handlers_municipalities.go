package main

import (
	"net/http"

	"munlink/models"

	"github.com/gin-gonic/gin"
)

func listMunicipalitiesHandler(c *gin.Context) {
	var munis []models.Municipality
	if err := db.Where("is_active = ?", true).Order("name asc").Find(&munis).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get municipalities", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"municipalities": munis, "count": len(munis)})
}

func getMunicipalityHandler(c *gin.Context) {
	var muni models.Municipality
	if err := db.First(&muni, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Municipality not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"municipality": muni})
}

func listBarangaysHandler(c *gin.Context) {
	var muni models.Municipality
	if err := db.First(&muni, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Municipality not found"})
		return
	}
	var barangays []models.Barangay
	if err := db.Where("municipality_id = ?", muni.ID).Order("name asc").Find(&barangays).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get barangays", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"barangays": barangays, "count": len(barangays)})
}
