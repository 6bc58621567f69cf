package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/tasktracker/internal/apperrors"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/entities"
)

// AuditReader lists stored audit events.
type AuditReader interface {
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{
		reader: reader,
	}
}

// GetAuditEvents returns the caller's own audit events, newest first
// GET /audit/events?page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == 0 {
		// zero would select every user's events
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "authentication required",
			Code:  string(apperrors.KindUnauthenticated),
		})
		return
	}

	page, limit := parsePagination(c, 25, 100)
	offset := (page - 1) * limit

	events, total, err := ac.reader.GetEvents(userID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
