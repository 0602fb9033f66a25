package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// newRequestNumber builds a human-quotable unique reference like
// REQ-IBA-3F2A9C1D.
func newRequestNumber(prefix, municipalitySlug string) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, strings.ToUpper(municipalitySlug), short)
}

// decodeStringList reads a JSON array-of-strings column, dropping blank
// entries; invalid or empty payloads decode to nil.
func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := items[:0]
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func encodeStringList(items []string) datatypes.JSON {
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

func encodeJSONMap(m map[string]interface{}) datatypes.JSON {
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}

// requiredAttachmentCount caps the requirement checklist at five uploads.
func requiredAttachmentCount(requirements []string) int {
	if len(requirements) > 5 {
		return 5
	}
	return len(requirements)
}
