package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admissions-crm-api/internal/middleware"
	"github.com/noah-isme/admissions-crm-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return claims
}

// parseID reads a positive integer; anything else is zero.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// deleteID takes the id from ?id= or from a JSON body {"id": n}. Missing or malformed
// ids come back as zero so the service reports the required-field error.
func deleteID(c *gin.Context) int64 {
	if raw := c.Query("id"); raw != "" {
		return parseID(raw)
	}
	var req models.DeleteRequest
	if c.Request.Body == nil {
		return 0
	}
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		return 0
	}
	return req.ID
}
