package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"appraisal-backend/internal/database"
	"appraisal-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// jsonb columns want the JSON literal "null", not an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}

	return nil
}

// UndoLog rolls one audit log entry back: deletes what a create made, restores the
// previous state of an update, recreates what a delete removed.
func UndoLog(logID uint, userID uint, userName string) error {
	var entry models.AuditLog
	if err := database.DB.First(&entry, "id = ?", logID).Error; err != nil {
		return fmt.Errorf("audit log not found: %w", err)
	}

	if entry.IsUndone {
		return fmt.Errorf("this change has already been undone")
	}

	switch entry.Action {
	case models.AuditActionCreate:
		if err := deleteEntity(entry.EntityType, entry.EntityID); err != nil {
			return fmt.Errorf("delete entity: %w", err)
		}

	case models.AuditActionUpdate:
		if err := restoreEntity(entry.EntityType, entry.EntityID, entry.BeforeData); err != nil {
			return fmt.Errorf("restore entity: %w", err)
		}

	case models.AuditActionDelete:
		if err := recreateEntity(entry.EntityType, entry.BeforeData); err != nil {
			return fmt.Errorf("recreate entity: %w", err)
		}

	default:
		return fmt.Errorf("action %q cannot be undone", entry.Action)
	}

	now := time.Now()
	entry.IsUndone = true
	entry.UndoneBy = &userID
	entry.UndoneAt = &now

	if err := database.DB.Save(&entry).Error; err != nil {
		return fmt.Errorf("mark audit log undone: %w", err)
	}

	undoEntry := models.AuditLog{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Action:      models.AuditActionUndo,
		Description: fmt.Sprintf("Undone: %s", entry.Description),
		BeforeData:  entry.AfterData,
		AfterData:   entry.BeforeData,
	}

	if err := database.DB.Create(&undoEntry).Error; err != nil {
		return fmt.Errorf("write undo log: %w", err)
	}

	return nil
}

func deleteEntity(entityType string, entityID uint) error {
	switch entityType {
	case "property":
		return database.DB.Delete(&models.Property{}, "id = ?", entityID).Error
	case "client":
		return database.DB.Delete(&models.Client{}, "id = ?", entityID).Error
	case "adjustment_coefficient":
		return database.DB.Delete(&models.AdjustmentCoefficient{}, "id = ?", entityID).Error
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func recreateEntity(entityType string, dataJSON string) error {
	switch entityType {
	case "property":
		var p models.Property
		if err := json.Unmarshal([]byte(dataJSON), &p); err != nil {
			return err
		}
		p.ID = 0
		return database.DB.Create(&p).Error

	case "client":
		var cl models.Client
		if err := json.Unmarshal([]byte(dataJSON), &cl); err != nil {
			return err
		}
		cl.ID = 0
		return database.DB.Create(&cl).Error

	case "adjustment_coefficient":
		var coeff models.AdjustmentCoefficient
		if err := json.Unmarshal([]byte(dataJSON), &coeff); err != nil {
			return err
		}
		coeff.ID = 0
		return database.DB.Create(&coeff).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func restoreEntity(entityType string, entityID uint, dataJSON string) error {
	switch entityType {
	case "property":
		var p models.Property
		if err := json.Unmarshal([]byte(dataJSON), &p); err != nil {
			return err
		}
		return database.DB.Model(&models.Property{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"address":           p.Address,
			"property_type":     p.PropertyType,
			"area":              p.Area,
			"floor_level":       p.FloorLevel,
			"total_floors":      p.TotalFloors,
			"condition":         p.Condition,
			"renovation_status": p.RenovationStatus,
			"lat":               p.Lat,
			"lng":               p.Lng,
			"price":             p.Price,
			"features":          p.Features,
		}).Error

	case "client":
		var cl models.Client
		if err := json.Unmarshal([]byte(dataJSON), &cl); err != nil {
			return err
		}
		return database.DB.Model(&models.Client{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"name":    cl.Name,
			"email":   cl.Email,
			"phone":   cl.Phone,
			"company": cl.Company,
			"notes":   cl.Notes,
		}).Error

	case "adjustment_coefficient":
		var coeff models.AdjustmentCoefficient
		if err := json.Unmarshal([]byte(dataJSON), &coeff); err != nil {
			return err
		}
		return database.DB.Model(&models.AdjustmentCoefficient{}).Where("id = ?", entityID).Updates(map[string]interface{}{
			"feature_name": coeff.FeatureName,
			"value":        coeff.Value,
			"description":  coeff.Description,
			"is_active":    coeff.IsActive,
		}).Error

	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}
