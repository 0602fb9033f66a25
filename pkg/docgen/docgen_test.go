package docgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProducesPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "generated_docs", "cert.pdf")

	err := Write(Certificate{
		RequestNumber:    "REQ-iba-a1b2c3d4",
		DocumentName:     "Certificate of Residency",
		ResidentName:     "Juan Dela Cruz",
		MunicipalityName: "Iba",
		BarangayName:     "Zone 1",
		Purpose:          "scholarship application",
		IssuedAt:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		SignatoryName:    "Hon. Maria Santos",
		SignatoryTitle:   "Municipal Mayor",
		VerifyURL:        "https://munlink.test/api/documents/verify/REQ-iba-a1b2c3d4",
	}, out)
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, len(raw) > 4 && string(raw[:4]) == "%PDF", "output should be a PDF")
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b", "c", "cert.pdf")
	err := Write(Certificate{
		RequestNumber:    "REQ-x",
		DocumentName:     "Certificate of Indigency",
		ResidentName:     "Test Resident",
		MunicipalityName: "Masinloc",
		Purpose:          "medical assistance",
		IssuedAt:         time.Now(),
	}, out)
	require.NoError(t, err)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}
