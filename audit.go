package main

import (
	"encoding/json"

	"munlink/models"

	"gorm.io/datatypes"
)

// recordAudit appends an audit row for an admin action. Failures are logged
// and never bubble up: auditing must not fail the workflow that triggered it.
func recordAudit(actor *models.User, municipalityID uint, entityType string, entityID uint, action, notes string, oldValues, newValues map[string]interface{}) {
	row := models.AuditLog{
		MunicipalityID: municipalityID,
		EntityType:     entityType,
		Action:         action,
		Notes:          notes,
	}
	if actor != nil {
		id := actor.ID
		row.UserID = &id
		row.ActorRole = actor.Role
	}
	if entityID != 0 {
		id := entityID
		row.EntityID = &id
	}
	if oldValues != nil {
		if b, err := json.Marshal(oldValues); err == nil {
			row.OldValues = datatypes.JSON(b)
		}
	}
	if newValues != nil {
		if b, err := json.Marshal(newValues); err == nil {
			row.NewValues = datatypes.JSON(b)
		}
	}
	if err := db.Create(&row).Error; err != nil {
		logger.Sugar().Warnf("audit write failed (%s %s): %v", entityType, action, err)
	}
}
