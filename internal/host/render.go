// Package host is the server-side glue for the widget-rendering process: it
// turns a stored record into the snapshot a connected host draws.
package host

import (
	"github.com/tapfolio/widget-backend/internal/models"
	"github.com/tapfolio/widget-backend/pkg/utils"
)

// Layout templates. Exactly two: "small" gets the compact template, every
// other size renders with the default large template.
const (
	LayoutSmall = "small"
	LayoutLarge = "large"
)

// RenderedWidget is what a host connection receives for one widget surface.
type RenderedWidget struct {
	WidgetID   string `json:"widget_id"`
	Layout     string `json:"layout"`
	Name       string `json:"name"`
	Surname    string `json:"surname,omitempty"`
	Company    string `json:"company"`
	Occupation string `json:"occupation"`
	Background string `json:"background"`
	ShowQRCode bool   `json:"show_qr_code"`
}

// Render builds the host snapshot for a record. A colorScheme that fails to
// parse falls back to the default color instead of failing the render.
func Render(rec models.WidgetRecord) RenderedWidget {
	layout := LayoutLarge
	if rec.Size == string(models.SizeSmall) {
		layout = LayoutSmall
	}
	return RenderedWidget{
		WidgetID:   rec.WidgetID,
		Layout:     layout,
		Name:       rec.Name,
		Surname:    rec.Surname,
		Company:    rec.Company,
		Occupation: rec.Occupation,
		Background: utils.NormalizeHexColor(rec.ColorScheme, models.DefaultColorScheme),
		ShowQRCode: rec.ShowQRCode,
	}
}
