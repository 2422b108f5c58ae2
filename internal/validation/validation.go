// Package validation guards the untyped boundary between caller-supplied
// payloads and the widget store. Every predicate is total: any input,
// including nil or a non-object, returns false rather than panicking.
package validation

import "encoding/json"

var (
	validSizes = map[string]bool{
		"small": true, "medium": true, "large": true, "xl": true,
	}
	validDisplayModes = map[string]bool{
		"qr_code": true, "card_info": true, "hybrid": true, "minimal": true,
	}
	validThemes = map[string]bool{
		"light": true, "dark": true, "auto": true, "custom": true,
	}
	validUpdateFrequencies = map[string]bool{
		"never": true, "hourly": true, "daily": true, "weekly": true, "on_change": true,
	}
)

// isString reports whether v is a string.
func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// isBool reports whether v is a bool.
func isBool(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

// isNumber reports whether v is a numeric value. JSON decoding yields float64
// (or json.Number with UseNumber); direct Go callers may pass int. A numeric
// string is NOT a number.
func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

// enumMember reports whether v is a string inside the given domain.
func enumMember(v interface{}, domain map[string]bool) bool {
	s, ok := v.(string)
	return ok && domain[s]
}

// IsWidgetConfig reports whether x is a structurally valid widget
// configuration: every required field present with the correct primitive
// type and every enum field inside its declared domain. createdAt/updatedAt
// are server-assigned and not required here.
func IsWidgetConfig(x interface{}) bool {
	m, ok := x.(map[string]interface{})
	if !ok {
		return false
	}

	if !isString(m["id"]) || !isNumber(m["cardIndex"]) {
		return false
	}
	if !enumMember(m["size"], validSizes) ||
		!enumMember(m["displayMode"], validDisplayModes) ||
		!enumMember(m["theme"], validThemes) ||
		!enumMember(m["updateFrequency"], validUpdateFrequencies) {
		return false
	}
	for _, key := range []string{
		"showProfileImage", "showCompanyLogo", "showQRCode",
		"tapToShare", "longPressToEdit", "isActive",
	} {
		if !isBool(m[key]) {
			return false
		}
	}
	return isNumber(m["borderRadius"])
}

// IsWidgetData reports whether x carries the contact/display fields a widget
// record is built from. cardIndex must be numeric, not a numeric string.
// surname and colorScheme are optional but must be strings when present.
func IsWidgetData(x interface{}) bool {
	m, ok := x.(map[string]interface{})
	if !ok {
		return false
	}

	if !isNumber(m["cardIndex"]) {
		return false
	}
	for _, key := range []string{"name", "company", "occupation", "email", "phone"} {
		if !isString(m[key]) {
			return false
		}
	}
	for _, key := range []string{"surname", "colorScheme", "size"} {
		if v, present := m[key]; present && !isString(v) {
			return false
		}
	}
	for _, key := range []string{"showProfileImage", "showCompanyLogo", "showQRCode"} {
		if v, present := m[key]; present && !isBool(v) {
			return false
		}
	}
	return true
}

// IsStoredWidget is the read-path defense applied to bytes coming back out of
// the store. Required fields are those present since initial release; fields
// added later (surname) stay optional so legacy records remain readable.
func IsStoredWidget(x interface{}) bool {
	m, ok := x.(map[string]interface{})
	if !ok {
		return false
	}

	id, ok := m["widgetId"].(string)
	if !ok || id == "" {
		return false
	}
	if !isNumber(m["cardIndex"]) {
		return false
	}
	for _, key := range []string{"name", "company", "occupation", "email", "phone", "colorScheme", "size"} {
		if !isString(m[key]) {
			return false
		}
	}
	if v, present := m["surname"]; present && !isString(v) {
		return false
	}
	for _, key := range []string{"showProfileImage", "showCompanyLogo", "showQRCode"} {
		if v, present := m[key]; present && !isBool(v) {
			return false
		}
	}
	return true
}
