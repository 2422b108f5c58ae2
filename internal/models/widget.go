package models

import "time"

// WidgetSize is the home-screen widget size bucket.
// Valid values: "small", "medium", "large", "xl".
type WidgetSize string

const (
	SizeSmall  WidgetSize = "small"
	SizeMedium WidgetSize = "medium"
	SizeLarge  WidgetSize = "large"
	SizeXL     WidgetSize = "xl"
)

// WidgetDisplayMode selects what the widget face shows.
type WidgetDisplayMode string

const (
	DisplayQRCode   WidgetDisplayMode = "qr_code"
	DisplayCardInfo WidgetDisplayMode = "card_info"
	DisplayHybrid   WidgetDisplayMode = "hybrid"
	DisplayMinimal  WidgetDisplayMode = "minimal"
)

// WidgetTheme is the widget color theme.
type WidgetTheme string

const (
	ThemeLight  WidgetTheme = "light"
	ThemeDark   WidgetTheme = "dark"
	ThemeAuto   WidgetTheme = "auto"
	ThemeCustom WidgetTheme = "custom"
)

// WidgetUpdateFrequency controls how often the host re-reads the store on its own.
type WidgetUpdateFrequency string

const (
	UpdateNever    WidgetUpdateFrequency = "never"
	UpdateHourly   WidgetUpdateFrequency = "hourly"
	UpdateDaily    WidgetUpdateFrequency = "daily"
	UpdateWeekly   WidgetUpdateFrequency = "weekly"
	UpdateOnChange WidgetUpdateFrequency = "on_change"
)

// Defaults applied when a create request leaves optional config fields unset.
const (
	DefaultSize        = string(SizeLarge)
	DefaultColorScheme = "#1B2B5B"
)

// ValidSize reports whether s is a member of the size enum.
func ValidSize(s string) bool {
	switch WidgetSize(s) {
	case SizeSmall, SizeMedium, SizeLarge, SizeXL:
		return true
	}
	return false
}

// WidgetRecord is the minimal persisted projection the renderer actually reads.
// It lives in the KV store under key widget_<id>; its id also appears in the
// card_widgets_<cardIndex> index bucket for its own CardIndex.
//
// Surname was added after initial release: older persisted records omit it and
// it decodes to "" rather than making the record unreadable.
type WidgetRecord struct {
	WidgetID  string `json:"widgetId"`
	CardIndex int    `json:"cardIndex"`

	Name       string `json:"name"`
	Surname    string `json:"surname,omitempty"`
	Company    string `json:"company"`
	Occupation string `json:"occupation"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`

	ColorScheme string `json:"colorScheme"`
	Size        string `json:"size"`

	ShowProfileImage bool `json:"showProfileImage"`
	ShowCompanyLogo  bool `json:"showCompanyLogo"`
	ShowQRCode       bool `json:"showQRCode"`
}

// WidgetConfig is the canonical, richer schema managed by the in-app widget
// manager and stored in PostgreSQL. WidgetRecord is the projection of this
// plus card contact data that actually reaches the renderer.
type WidgetConfig struct {
	ID              string                `json:"id"`
	CardIndex       int                   `json:"cardIndex"`
	Size            WidgetSize            `json:"size"`
	DisplayMode     WidgetDisplayMode     `json:"displayMode"`
	Theme           WidgetTheme           `json:"theme"`
	UpdateFrequency WidgetUpdateFrequency `json:"updateFrequency"`

	ShowProfileImage bool `json:"showProfileImage"`
	ShowCompanyLogo  bool `json:"showCompanyLogo"`
	ShowQRCode       bool `json:"showQRCode"`

	BorderRadius    int  `json:"borderRadius"`
	TapToShare      bool `json:"tapToShare"`
	LongPressToEdit bool `json:"longPressToEdit"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SharedSlotPayload is the legacy single-slot payload kept under the
// widgetData key of the shared container for hosts that predate the
// id-keyed store. Mirrors the most recently saved record.
type SharedSlotPayload struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Company     string `json:"company"`
	Occupation  string `json:"occupation"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ColorScheme string `json:"colorScheme"`
	QRCodeData  string `json:"qrCodeData"`
}
