package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tapfolio/widget-backend/internal/bridge"
	"github.com/tapfolio/widget-backend/internal/models"
)

var widgetBridge *bridge.Bridge

// InitWidgetBridge wires the bridge the widget handlers operate through.
// Called once from main after the store and notifier are composed.
func InitWidgetBridge(b *bridge.Bridge) {
	widgetBridge = b
}

// CreateWidgetRequest is the payload for pinning a new widget.
type CreateWidgetRequest struct {
	CardIndex *int                   `json:"cardIndex"`
	CardData  map[string]interface{} `json:"cardData"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

// CreateWidgetResponse carries the new widget id, or a structured error.
type CreateWidgetResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Code     string `json:"code,omitempty"`
	WidgetID string `json:"widgetId,omitempty"`
}

// UpdateWidgetRequest is the payload for persisting new data for a widget.
type UpdateWidgetRequest struct {
	WidgetID string                 `json:"widgetId"`
	Data     map[string]interface{} `json:"data"`
}

// WidgetActionResponse is the envelope for update/delete results.
type WidgetActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// GetActiveWidgetsResponse lists every persisted widget record.
type GetActiveWidgetsResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Code    string                `json:"code,omitempty"`
	Widgets []models.WidgetRecord `json:"widgets"`
}

// CreateWidget handles POST /api/widgets.
func CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req CreateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CreateWidgetResponse{
			Success: false,
			Code:    bridge.CodeInvalidData,
			Message: "Invalid request body",
		})
		return
	}
	if req.CardIndex == nil {
		writeJSON(w, http.StatusBadRequest, CreateWidgetResponse{
			Success: false,
			Code:    bridge.CodeInvalidData,
			Message: "cardIndex is required",
		})
		return
	}

	widgetID, err := widgetBridge.CreateWidget(r.Context(), *req.CardIndex, req.CardData, req.Config)
	if err != nil {
		code, message, status := bridgeErrorParts(err)
		writeJSON(w, status, CreateWidgetResponse{Success: false, Code: code, Message: message})
		return
	}

	writeJSON(w, http.StatusCreated, CreateWidgetResponse{
		Success:  true,
		Message:  "Widget created successfully",
		WidgetID: widgetID,
	})
}

// UpdateWidget handles PUT /api/widgets.
func UpdateWidget(w http.ResponseWriter, r *http.Request) {
	var req UpdateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, WidgetActionResponse{
			Success: false,
			Code:    bridge.CodeInvalidData,
			Message: "Invalid request body",
		})
		return
	}

	ok, err := widgetBridge.UpdateWidget(r.Context(), req.WidgetID, req.Data)
	if err != nil {
		code, message, status := bridgeErrorParts(err)
		writeJSON(w, status, WidgetActionResponse{Success: false, Code: code, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, WidgetActionResponse{Success: ok, Message: "Widget updated successfully"})
}

// DeleteWidget handles DELETE /api/widgets?id=<widgetId>.
func DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("id")

	ok, err := widgetBridge.DeleteWidget(r.Context(), widgetID)
	if err != nil {
		code, message, status := bridgeErrorParts(err)
		writeJSON(w, status, WidgetActionResponse{Success: false, Code: code, Message: message})
		return
	}

	writeJSON(w, http.StatusOK, WidgetActionResponse{Success: ok, Message: "Widget deleted successfully"})
}

// GetActiveWidgets handles GET /api/widgets.
func GetActiveWidgets(w http.ResponseWriter, r *http.Request) {
	records, err := widgetBridge.GetActiveWidgets(r.Context())
	if err != nil {
		code, message, status := bridgeErrorParts(err)
		writeJSON(w, status, GetActiveWidgetsResponse{Success: false, Code: code, Message: message, Widgets: []models.WidgetRecord{}})
		return
	}
	if records == nil {
		records = []models.WidgetRecord{}
	}
	writeJSON(w, http.StatusOK, GetActiveWidgetsResponse{Success: true, Widgets: records})
}

// bridgeErrorParts maps a bridge error onto the HTTP envelope. Validation
// failures are the caller's fault; everything else is a 500 with a generic
// message so no storage detail leaks.
func bridgeErrorParts(err error) (code, message string, status int) {
	var bridgeErr *bridge.Error
	if errors.As(err, &bridgeErr) {
		status = http.StatusInternalServerError
		if bridgeErr.Code == bridge.CodeInvalidData || bridgeErr.Code == bridge.CodeInvalidConfig {
			status = http.StatusBadRequest
		}
		return bridgeErr.Code, bridgeErr.Message, status
	}
	return bridge.CodeStorageFailure, "internal error", http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
