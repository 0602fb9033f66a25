// Command seed_locations loads the Zambales municipalities and their
// barangays, and provisions one municipal admin account per municipality.
// It is idempotent; existing rows are matched by slug/username and skipped.
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

type muniSeed struct {
	Name      string
	PSGCCode  string
	Barangays []string
}

var municipalities = []muniSeed{
	{"Botolan", "037101000", []string{"Bangan", "Batonlapoc", "Beneg", "Capayawan", "Carael", "Poblacion", "Paco", "Panan"}},
	{"Cabangan", "037102000", []string{"Anonang", "Apo-apo", "Arew", "Banuambayo", "Cadmang-Reserva", "Camiling", "Dolores", "Poblacion"}},
	{"Candelaria", "037103000", []string{"Babancal", "Binabalian", "Catol", "Dampay", "Lauis", "Libertador", "Poblacion", "Sinabacan"}},
	{"Castillejos", "037104000", []string{"Balaybay", "Buenavista", "Del Pilar", "Looc", "Magsaysay", "Nagbayan", "San Agustin", "San Jose"}},
	{"Iba", "037105000", []string{"Amungan", "Bangantalinga", "Dirita-Baloguen", "Lipay-Dingin-Panibuatan", "Palanginan", "San Agustin", "Santa Barbara", "Zone 1 Poblacion"}},
	{"Masinloc", "037106000", []string{"Baloganon", "Bamban", "Bani", "Collat", "Inhobol", "North Poblacion", "San Salvador", "Taltal"}},
	{"Palauig", "037107000", []string{"Alwa", "Bato", "Bulawen", "Cauyan", "East Poblacion", "Garreta", "Libaba", "Pangolingan"}},
	{"San Antonio", "037108000", []string{"Angeles", "Antipolo", "Burgos", "East Dirita", "Luna", "Pundaquit", "San Esteban", "San Miguel"}},
	{"San Felipe", "037109000", []string{"Amagna", "Apostol", "Balincaguing", "Farañal", "Feria", "Maloma", "Manglicmot", "Rosete"}},
	{"San Marcelino", "037110000", []string{"Aglao", "Buhawen", "Burgos", "Central", "Consuelo Norte", "La Paz", "Linasin", "Lucero"}},
	{"San Narciso", "037111000", []string{"Alusiis", "Beddeng", "Candelaria", "Dallipawen", "Grullo", "La Paz", "Libertad", "Namatacan"}},
	{"Santa Cruz", "037112000", []string{"Babuyan", "Bayto", "Biay", "Bolitoc", "Bulawon", "Canaynayan", "Gutob", "Poblacion North"}},
	{"Subic", "037113000", []string{"Aningway Sacatihan", "Asinan Poblacion", "Baraca-Camachile", "Batiawan", "Calapacuan", "Calapandayan", "Ilwas", "Mangan-Vaca"}},
}

func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "ñ", "n")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}

func main() {
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

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD not set in environment")
	}
	hpw, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}

	for _, seed := range municipalities {
		slug := slugify(seed.Name)

		var muni models.Municipality
		if err := db.Where("slug = ?", slug).First(&muni).Error; err != nil {
			muni = models.Municipality{
				Name:     seed.Name,
				Slug:     slug,
				PSGCCode: seed.PSGCCode,
				IsActive: true,
			}
			if err := db.Create(&muni).Error; err != nil {
				log.Fatalf("failed to create municipality %s: %v", seed.Name, err)
			}
			fmt.Printf("created municipality %s id=%d\n", muni.Name, muni.ID)
		}

		for _, name := range seed.Barangays {
			bslug := slugify(name)
			var cnt int64
			db.Model(&models.Barangay{}).Where("municipality_id = ? AND slug = ?", muni.ID, bslug).Count(&cnt)
			if cnt > 0 {
				continue
			}
			brgy := models.Barangay{MunicipalityID: muni.ID, Name: name, Slug: bslug}
			if err := db.Create(&brgy).Error; err != nil {
				log.Printf("warning: failed to create barangay %s/%s: %v", seed.Name, name, err)
			}
		}

		username := "admin." + slug
		var existing models.User
		if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
			continue
		}
		muniID := muni.ID
		admin := models.User{
			Username:            username,
			Email:               fmt.Sprintf("%s@munlink.zambales.gov.ph", username),
			PasswordHash:        hpw,
			FirstName:           seed.Name,
			LastName:            "Administrator",
			Role:                models.RoleMunicipalAdmin,
			AdminMunicipalityID: &muniID,
			EmailVerified:       true,
			AdminVerified:       true,
			VerificationStatus:  models.VerificationVerified,
			IsActive:            true,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("failed to create admin for %s: %v", seed.Name, err)
		}
		fmt.Printf("created admin %s id=%d\n", admin.Username, admin.ID)
	}
}
