package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/tasktracker/internal/apperrors"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse = apperrors.ErrorResponse

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(apperrors.KindValidation)})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  string(apperrors.KindInternal),
	})
}

// respondDomainError maps a categorized service error to its HTTP status.
// Uncategorized errors go through respondInternalError.
func respondDomainError(c *gin.Context, err error, context string) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		respondInternalError(c, err, context)
		return
	}
	c.JSON(apperrors.Response(err))
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalBool reads an optional boolean query parameter.
// An absent parameter yields nil; an unparseable one responds with 400.
func parseOptionalBool(c *gin.Context, paramName string) (*bool, bool) {
	raw, present := c.GetQuery(paramName)
	if !present || raw == "" {
		return nil, true
	}
	switch raw {
	case "true", "false":
		v := raw == "true"
		return &v, true
	}
	respondBadRequest(c, "invalid "+paramName+": expected true or false")
	return nil, false
}

// parsePagination reads page/limit query parameters, clamping them to sane values.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}
