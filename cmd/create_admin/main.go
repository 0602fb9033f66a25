// Command create_admin provisions a municipal admin account for an existing
// municipality.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"munlink/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Println("usage: go run ./cmd/create_admin <municipality-slug> <username> <email> <password>")
		os.Exit(2)
	}
	slug, username, email, password := os.Args[1], os.Args[2], os.Args[3], os.Args[4]

	var dialector gorm.Dialector
	dsn := os.Getenv("DB_DSN")
	if os.Getenv("DB_DRIVER") == "sqlite" {
		if dsn == "" {
			dsn = "munlink.db"
		}
		dialector = sqlite.Open(dsn)
	} else {
		if strings.TrimSpace(dsn) == "" {
			log.Fatal("DB_DSN not set in environment")
		}
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	var muni models.Municipality
	if err := db.Where("slug = ?", slug).First(&muni).Error; err != nil {
		log.Fatalf("municipality %q not found; run ./cmd/seed_locations first", slug)
	}

	username = strings.ToLower(strings.TrimSpace(username))
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", username, existing.ID)
		os.Exit(0)
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	muniID := muni.ID
	admin := models.User{
		Username:            username,
		Email:               strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:        hpw,
		FirstName:           muni.Name,
		LastName:            "Administrator",
		Role:                models.RoleMunicipalAdmin,
		AdminMunicipalityID: &muniID,
		EmailVerified:       true,
		AdminVerified:       true,
		VerificationStatus:  models.VerificationVerified,
		IsActive:            true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	fmt.Printf("created admin %s id=%d for %s\n", admin.Username, admin.ID, muni.Name)
}
