// Package docgen renders the certificate PDFs issued for digitally delivered
// document requests.
package docgen

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Certificate carries everything printed on an issued document.
type Certificate struct {
	RequestNumber    string
	DocumentName     string
	ResidentName     string
	MunicipalityName string
	BarangayName     string
	Purpose          string
	IssuedAt         time.Time
	SignatoryName    string
	SignatoryTitle   string
	VerifyURL        string
}

// Write renders the certificate to path (directories are created as needed).
func Write(cert Certificate, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	pdf.SetFont("Times", "", 11)
	pdf.CellFormat(0, 6, "Republic of the Philippines", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Municipality of %s", cert.MunicipalityName), "", 1, "C", false, 0, "")
	if cert.BarangayName != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Barangay %s", cert.BarangayName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Times", "B", 18)
	pdf.CellFormat(0, 10, cert.DocumentName, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Times", "", 12)
	body := fmt.Sprintf(
		"This is to certify that %s is a bona fide resident of %s. "+
			"This certification is issued upon the request of the above-named person for the purpose of %s.",
		cert.ResidentName, cert.MunicipalityName, cert.Purpose,
	)
	pdf.MultiCell(0, 7, body, "", "L", false)
	pdf.Ln(6)

	pdf.MultiCell(0, 7, fmt.Sprintf("Issued on %s.", cert.IssuedAt.Format("2 January 2006")), "", "L", false)
	pdf.Ln(18)

	if cert.SignatoryName != "" {
		pdf.SetFont("Times", "B", 12)
		pdf.CellFormat(0, 6, cert.SignatoryName, "", 1, "R", false, 0, "")
		pdf.SetFont("Times", "", 10)
		pdf.CellFormat(0, 5, cert.SignatoryTitle, "", 1, "R", false, 0, "")
	}

	pdf.SetY(-40)
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(0, 4, fmt.Sprintf("Control No. %s", cert.RequestNumber), "", 1, "L", false, 0, "")
	if cert.VerifyURL != "" {
		pdf.CellFormat(0, 4, fmt.Sprintf("Verify at %s", cert.VerifyURL), "", 1, "L", false, 0, "")
	}

	return pdf.OutputFileAndClose(path)
}
