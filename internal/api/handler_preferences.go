package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"nightlife-sync/internal/preferences"
	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/middleware"
	"nightlife-sync/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// PreferenceService is the subset of *preferences.Service the handlers use.
type PreferenceService interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserPreference, error)
	Merge(ctx context.Context, userID string, update models.PreferenceUpdate, opts ...preferences.MergeOption) (*models.UserPreference, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// PreferenceHandler serves /users/:id/preferences.
type PreferenceHandler struct {
	Service PreferenceService
	log     *logger.Logger
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(svc PreferenceService, log *logger.Logger) *PreferenceHandler {
	return &PreferenceHandler{Service: svc, log: log.With("component", "api.preferences")}
}

// GetPreferences godoc
// @Summary      Get user preferences
// @Description  Returns the user's preferences, creating defaults on first access
// @Tags         preferences
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  models.UserPreference
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/preferences [get]
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID := c.Param("id")

	p, err := h.Service.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// HeadPreferences godoc
// @Summary      Check whether preferences exist
// @Tags         preferences
// @Param        id   path  string  true  "User ID"
// @Success      200
// @Failure      404
// @Router       /users/{id}/preferences [head]
func (h *PreferenceHandler) HeadPreferences(c *gin.Context) {
	ok, err := h.Service.Exists(c.Request.Context(), c.Param("id"))
	switch {
	case err != nil:
		writeError(c, h.log, err)
	case ok:
		c.Status(http.StatusOK)
	default:
		c.Status(http.StatusNotFound)
	}
}

// PatchPreferences godoc
// @Summary      Update user preferences
// @Description  Overlays the fields present in the body onto the stored preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true   "User ID"
// @Param        create   query     bool                     false  "Create defaults first when missing"
// @Param        request  body      models.PreferenceUpdate  true   "Fields to change"
// @Success      200      {object}  models.UserPreference
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /users/{id}/preferences [patch]
func (h *PreferenceHandler) PatchPreferences(c *gin.Context) {
	userID := c.Param("id")
	correlationID := middleware.GetCorrelationID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var update models.PreferenceUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	var opts []preferences.MergeOption
	if create, _ := strconv.ParseBool(c.Query("create")); create {
		opts = append(opts, preferences.CreateIfMissing())
	}

	p, err := h.Service.Merge(c.Request.Context(), userID, update, opts...)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	h.log.Debug("Preferences patched", "user_id", userID, "correlation_id", correlationID)
	c.JSON(http.StatusOK, p)
}
