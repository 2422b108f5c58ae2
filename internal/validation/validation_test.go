package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() map[string]interface{} {
	return map[string]interface{}{
		"id":               "w-1",
		"cardIndex":        float64(3),
		"size":             "medium",
		"displayMode":      "hybrid",
		"theme":            "dark",
		"updateFrequency":  "on_change",
		"showProfileImage": true,
		"showCompanyLogo":  false,
		"showQRCode":       true,
		"borderRadius":     float64(12),
		"tapToShare":       true,
		"longPressToEdit":  false,
		"isActive":         true,
	}
}

func validData() map[string]interface{} {
	return map[string]interface{}{
		"cardIndex":  float64(3),
		"name":       "Ana",
		"surname":    "Marin",
		"company":    "Tapfolio",
		"occupation": "Designer",
		"email":      "ana@example.com",
		"phone":      "+385911234567",
	}
}

func TestIsWidgetConfigAcceptsValid(t *testing.T) {
	assert.True(t, IsWidgetConfig(validConfig()))
}

func TestIsWidgetConfigTotality(t *testing.T) {
	assert.False(t, IsWidgetConfig(nil))
	assert.False(t, IsWidgetConfig("not an object"))
	assert.False(t, IsWidgetConfig(42))
	assert.False(t, IsWidgetConfig([]interface{}{"x"}))
	assert.False(t, IsWidgetConfig(map[string]interface{}{}))
}

func TestIsWidgetConfigMissingRequiredKey(t *testing.T) {
	for key := range validConfig() {
		cfg := validConfig()
		delete(cfg, key)
		assert.Falsef(t, IsWidgetConfig(cfg), "missing %q should fail", key)
	}
}

func TestIsWidgetConfigEnumDomains(t *testing.T) {
	cases := map[string]string{
		"size":            "gigantic",
		"displayMode":     "hologram",
		"theme":           "sepia",
		"updateFrequency": "sometimes",
	}
	for key, bad := range cases {
		cfg := validConfig()
		cfg[key] = bad
		assert.Falsef(t, IsWidgetConfig(cfg), "%s=%q should fail", key, bad)
	}
}

func TestIsWidgetConfigWrongTypes(t *testing.T) {
	cfg := validConfig()
	cfg["cardIndex"] = "3"
	assert.False(t, IsWidgetConfig(cfg))

	cfg = validConfig()
	cfg["showQRCode"] = "true"
	assert.False(t, IsWidgetConfig(cfg))

	cfg = validConfig()
	cfg["borderRadius"] = "12"
	assert.False(t, IsWidgetConfig(cfg))
}

func TestIsWidgetDataAcceptsValid(t *testing.T) {
	assert.True(t, IsWidgetData(validData()))

	// surname is optional
	d := validData()
	delete(d, "surname")
	assert.True(t, IsWidgetData(d))
}

func TestIsWidgetDataRejectsNumericStringCardIndex(t *testing.T) {
	d := validData()
	d["cardIndex"] = "3"
	assert.False(t, IsWidgetData(d))
}

func TestIsWidgetDataTotality(t *testing.T) {
	assert.False(t, IsWidgetData(nil))
	assert.False(t, IsWidgetData(7))
	assert.False(t, IsWidgetData(map[string]interface{}{"name": "Ana"}))
}

func TestIsWidgetDataOptionalFieldTypes(t *testing.T) {
	d := validData()
	d["colorScheme"] = 0x1B2B5B
	assert.False(t, IsWidgetData(d))

	d = validData()
	d["showQRCode"] = 1
	assert.False(t, IsWidgetData(d))
}

func TestIsWidgetDataFromDecodedJSON(t *testing.T) {
	raw := `{"cardIndex":3,"name":"Ana","company":"Tapfolio","occupation":"Designer","email":"a@b.c","phone":"123"}`
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	assert.True(t, IsWidgetData(v))
}

func TestIsStoredWidget(t *testing.T) {
	raw := `{"widgetId":"w-1","cardIndex":3,"name":"Ana","company":"Tapfolio","occupation":"Designer","email":"a@b.c","phone":"123","colorScheme":"#1B2B5B","size":"large"}`
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	assert.True(t, IsStoredWidget(v))

	assert.False(t, IsStoredWidget(nil))
	assert.False(t, IsStoredWidget(map[string]interface{}{"widgetId": ""}))

	var truncated interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"widgetId":"w-1","cardIndex":3}`), &truncated))
	assert.False(t, IsStoredWidget(truncated))
}
