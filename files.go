package main

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 * 1024 * 1024 // 5MB per file

var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".pdf": true,
}

// Public upload prefixes. Anything outside this allowlist is never served.
var servablePrefixes = []string{
	"marketplace/",
	"announcements/",
	"profiles/",
	"verification/",
	"document_requests/",
	"benefits/",
	"issues/",
	"generated_docs/",
	"exports/",
}

// saveUpload stores a multipart file under uploads/<folder>/ with a uuid
// filename and returns the relative path. The extension must be on the
// allowlist and the file within the size cap.
func saveUpload(c *gin.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file too large (max 5MB): %s", file.Filename)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("file type not allowed: %s", file.Filename)
	}
	rel := path.Join(folder, uuid.NewString()+ext)
	full := filepath.Join(uploadBaseDir(), filepath.FromSlash(rel))
	if err := c.SaveUploadedFile(file, full); err != nil {
		return "", err
	}
	return rel, nil
}

// documentRequestFolder groups request attachments by municipality and request.
func documentRequestFolder(municipalitySlug string, requestID uint) string {
	return fmt.Sprintf("document_requests/%s/%d", municipalitySlug, requestID)
}

// benefitFolder groups benefit application attachments by municipality and application.
func benefitFolder(municipalitySlug string, applicationID uint) string {
	return fmt.Sprintf("benefits/%s/%d", municipalitySlug, applicationID)
}

// serveUploadedFile answers GET /uploads/*path through the public allowlist.
func serveUploadedFile(c *gin.Context) {
	raw := strings.TrimPrefix(c.Param("filepath"), "/")
	normalized := strings.ReplaceAll(raw, "\\", "/")

	// Reject traversal before the prefix check.
	cleaned := path.Clean(normalized)
	if cleaned != normalized || strings.HasPrefix(cleaned, "..") || path.IsAbs(cleaned) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	allowed := false
	for _, p := range servablePrefixes {
		if strings.HasPrefix(cleaned, p) {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	full := filepath.Join(uploadBaseDir(), filepath.FromSlash(cleaned))
	if !fileExists(full) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.File(full)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// uploadURL maps a stored relative path to its public URL.
func uploadURL(rel string) string {
	return "/uploads/" + strings.ReplaceAll(rel, "\\", "/")
}
