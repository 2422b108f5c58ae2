package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/tapfolio/widget-backend/internal/models"
	"github.com/tapfolio/widget-backend/internal/services"
	"github.com/tapfolio/widget-backend/internal/validation"
)

// WidgetConfigResponse is the envelope for single-config operations.
type WidgetConfigResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Config  *models.WidgetConfig `json:"config,omitempty"`
}

// WidgetConfigListResponse is the envelope for config listings.
type WidgetConfigListResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Configs []models.WidgetConfig `json:"configs"`
}

// CreateWidgetConfigHandler handles POST /api/widgets/config. The body is
// validated as an untyped map first; nothing reaches Postgres unless the
// canonical shape check passes.
func CreateWidgetConfigHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if _, present := body["id"]; !present {
		body["id"] = uuid.NewString()
	}
	if _, present := body["isActive"]; !present {
		body["isActive"] = true
	}

	cfg, ok := decodeValidConfig(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "Widget config failed validation"})
		return
	}

	if err := services.CreateWidgetConfig(cfg); err != nil {
		writeJSON(w, http.StatusInternalServerError, WidgetConfigResponse{Success: false, Message: "Failed to create widget config"})
		return
	}
	writeJSON(w, http.StatusCreated, WidgetConfigResponse{Success: true, Message: "Widget config created", Config: cfg})
}

// GetWidgetConfigHandler handles GET /api/widgets/config?id=<id>.
func GetWidgetConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "id is required"})
		return
	}

	cfg, err := services.GetWidgetConfig(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, WidgetConfigResponse{Success: false, Message: "Failed to load widget config"})
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusNotFound, WidgetConfigResponse{Success: false, Message: "Widget config not found"})
		return
	}
	writeJSON(w, http.StatusOK, WidgetConfigResponse{Success: true, Config: cfg})
}

// ListWidgetConfigsHandler handles GET /api/widgets/configs?card_index=<n>.
func ListWidgetConfigsHandler(w http.ResponseWriter, r *http.Request) {
	var cardIndex *int
	if raw := r.URL.Query().Get("card_index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, WidgetConfigListResponse{Success: false, Message: "card_index must be an integer", Configs: []models.WidgetConfig{}})
			return
		}
		cardIndex = &n
	}

	configs, err := services.ListWidgetConfigs(cardIndex)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, WidgetConfigListResponse{Success: false, Message: "Failed to list widget configs", Configs: []models.WidgetConfig{}})
		return
	}
	if configs == nil {
		configs = []models.WidgetConfig{}
	}
	writeJSON(w, http.StatusOK, WidgetConfigListResponse{Success: true, Configs: configs})
}

// UpdateWidgetConfigHandler handles PUT /api/widgets/config.
func UpdateWidgetConfigHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "Invalid request body"})
		return
	}

	cfg, ok := decodeValidConfig(body)
	if !ok {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "Widget config failed validation"})
		return
	}

	found, err := services.UpdateWidgetConfig(cfg)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, WidgetConfigResponse{Success: false, Message: "Failed to update widget config"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, WidgetConfigResponse{Success: false, Message: "Widget config not found"})
		return
	}
	writeJSON(w, http.StatusOK, WidgetConfigResponse{Success: true, Message: "Widget config updated", Config: cfg})
}

// DeleteWidgetConfigHandler handles DELETE /api/widgets/config?id=<id>.
func DeleteWidgetConfigHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, WidgetConfigResponse{Success: false, Message: "id is required"})
		return
	}
	if err := services.DeleteWidgetConfig(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, WidgetConfigResponse{Success: false, Message: "Failed to delete widget config"})
		return
	}
	writeJSON(w, http.StatusOK, WidgetConfigResponse{Success: true, Message: "Widget config deleted"})
}

// decodeValidConfig gates an untyped body through the canonical-shape check
// and only then decodes it into the typed config. The id must be a UUID:
// the widget_configs primary key is a UUID column, so a malformed id is the
// caller's error, not a storage fault.
func decodeValidConfig(body map[string]interface{}) (*models.WidgetConfig, bool) {
	if !validation.IsWidgetConfig(body) {
		return nil, false
	}
	id, _ := body["id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, false
	}
	var cfg models.WidgetConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, false
	}
	return &cfg, true
}
