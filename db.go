package main

import (
	"encoding/json"
	"os"

	"munlink/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB(cfg *Config) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = "munlink.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		if cfg.DBDSN == "" {
			logger.Fatal("DB_DSN is not set; a Postgres DSN is required unless DB_DRIVER=sqlite")
		}
		dialector = postgres.Open(cfg.DBDSN)
	}

	var err error
	db, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Sugar().Fatalf("failed to connect %s database: %v", cfg.DBDriver, err)
	}

	if cfg.DBAutoMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		for _, m := range []interface{}{
			&models.Municipality{},
			&models.Barangay{},
			&models.User{},
			&models.RefreshToken{},
			&models.PasswordResetToken{},
			&models.DocumentType{},
			&models.DocumentRequest{},
			&models.BenefitProgram{},
			&models.BenefitApplication{},
			&models.Item{},
			&models.Transaction{},
			&models.IssueCategory{},
			&models.Issue{},
			&models.Announcement{},
			&models.TransferRequest{},
			&models.AuditLog{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				logger.Sugar().Warnf("migration warning (%T): %v", m, err)
			}
		}
	}

	seedDB()
	ensureUploadBase()
}

// seedDB inserts the baseline catalogs when missing. It is idempotent:
// existing rows are matched by their unique codes and left alone.
func seedDB() {
	seedDocumentTypes()
	seedIssueCategories()
}

func seedDocumentTypes() {
	types := []models.DocumentType{
		{
			Code: "BRGY-CLEARANCE", Name: "Barangay Clearance",
			Description:    "Certification from the barangay attesting to good standing and absence of pending cases.",
			AuthorityLevel: models.AuthorityBarangay,
			Requirements: jsonList(
				"Valid government-issued ID",
				"Proof of residency (utility bill or barangay ID)",
				"Community Tax Certificate (Cedula)",
			),
			Fee: decimal.NewFromInt(80), ProcessingDays: 2,
			SupportsPhysical: true, SupportsDigital: false, IsActive: true,
		},
		{
			Code: "BRGY-RESIDENCY", Name: "Certificate of Residency",
			Description:    "Proof from the barangay confirming residency for at least six (6) months.",
			AuthorityLevel: models.AuthorityBarangay,
			Requirements: jsonList(
				"Valid government-issued ID",
				"Barangay family profile sheet (if available)",
			),
			Fee: decimal.Zero, ProcessingDays: 2,
			SupportsPhysical: true, SupportsDigital: true, IsActive: true,
		},
		{
			Code: "BRGY-INDIGENCY", Name: "Certificate of Indigency",
			Description:    "Certification required for medical, burial, or educational assistance requests.",
			AuthorityLevel: models.AuthorityBarangay,
			Requirements: jsonList(
				"Valid ID of applicant",
				"Barangay household profile",
				"Supporting document stating the purpose of request",
			),
			Fee: decimal.Zero, ProcessingDays: 2,
			SupportsPhysical: true, SupportsDigital: true, IsActive: true,
		},
		{
			Code: "MUN-MAYOR-PERMIT", Name: "Mayor's Permit",
			Description:    "Local business permit issued annually by the municipal mayor's office.",
			AuthorityLevel: models.AuthorityMunicipal,
			Requirements: jsonList(
				"Barangay Business Clearance",
				"DTI/SEC/CDA registration",
				"Lease contract or tax declaration of business site",
			),
			Fee: decimal.NewFromInt(500), ProcessingDays: 5,
			SupportsPhysical: true, SupportsDigital: false, IsActive: true,
		},
		{
			Code: "MUN-CEDULA", Name: "Community Tax Certificate (Cedula)",
			Description:    "Community tax certificate required for various government transactions.",
			AuthorityLevel: models.AuthorityMunicipal,
			Requirements: jsonList(
				"Valid ID",
				"Previous cedula (if renewal)",
				"Income declaration",
			),
			Fee: decimal.NewFromInt(100), ProcessingDays: 1,
			SupportsPhysical: true, SupportsDigital: false, IsActive: true,
		},
		{
			Code: "MUN-SCHOLAR-ENDORSE", Name: "Scholarship Endorsement Certificate",
			Description:    "Certification from the municipal mayor supporting scholarship applications.",
			AuthorityLevel: models.AuthorityMunicipal,
			Requirements: jsonList(
				"Barangay certificate of residency",
				"Latest report card or TOR",
				"Letter of intent",
			),
			Fee: decimal.Zero, ProcessingDays: 3,
			SupportsPhysical: true, SupportsDigital: true, IsActive: true,
		},
	}
	for _, dt := range types {
		var cnt int64
		db.Model(&models.DocumentType{}).Where("code = ?", dt.Code).Count(&cnt)
		if cnt == 0 {
			if err := db.Create(&dt).Error; err != nil {
				logger.Sugar().Warnf("seed document type %s: %v", dt.Code, err)
			}
		}
	}
}

func seedIssueCategories() {
	categories := []models.IssueCategory{
		{Name: "Roads and Bridges", Description: "Potholes, collapsed shoulders, impassable roads", IsActive: true},
		{Name: "Drainage and Flooding", Description: "Clogged canals, flooded streets", IsActive: true},
		{Name: "Streetlights", Description: "Broken or missing street lighting", IsActive: true},
		{Name: "Garbage Collection", Description: "Missed pickups, illegal dumping", IsActive: true},
		{Name: "Water Supply", Description: "Interruptions and leaks", IsActive: true},
		{Name: "Peace and Order", Description: "Noise, curfew, public disturbance", IsActive: true},
	}
	for _, cat := range categories {
		var cnt int64
		db.Model(&models.IssueCategory{}).Where("name = ?", cat.Name).Count(&cnt)
		if cnt == 0 {
			if err := db.Create(&cat).Error; err != nil {
				logger.Sugar().Warnf("seed issue category %s: %v", cat.Name, err)
			}
		}
	}
}

// jsonList marshals strings into a datatypes.JSON array for seed rows.
func jsonList(items ...string) datatypes.JSON {
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0o755); err != nil {
		logger.Sugar().Warnf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for local uploads (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
