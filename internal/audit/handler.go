package audit

import (
	"encoding/json"
	"time"

	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID          uuid.UUID          `json:"id"`
	LocationID  *uuid.UUID         `json:"location_id,omitempty"`
	UserID      *uuid.UUID         `json:"user_id,omitempty"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    uuid.UUID          `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  json.RawMessage    `json:"before_data"`
	AfterData   json.RawMessage    `json:"after_data"`
	CreatedAt   time.Time          `json:"created_at"`
}

func toResponse(l *models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:          l.ID,
		LocationID:  l.LocationID,
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      l.Action,
		Description: l.Description,
		BeforeData:  rawJSON(l.BeforeData),
		AfterData:   rawJSON(l.AfterData),
		CreatedAt:   l.CreatedAt,
	}
}

func rawJSON(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}

// GET /api/audit-logs?entity_type=order&entity_id=...&user_id=...&limit=50
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID, err := request.QueryID(c, "entity_id")
		if err != nil {
			return err
		}
		userID, err := request.QueryID(c, "user_id")
		if err != nil {
			return err
		}

		logs, err := svc.List(c.UserContext(), Filter{
			LocationID: auth.LocationFrom(c),
			EntityType: c.Query("entity_type"),
			EntityID:   entityID,
			UserID:     userID,
			Limit:      c.QueryInt("limit", 100),
		})
		if err != nil {
			return err
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for i := range logs {
			res = append(res, toResponse(&logs[i]))
		}
		return response.List(c, res, len(res))
	}
}
