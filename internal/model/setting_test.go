package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetting_Typed(t *testing.T) {
	assert.Equal(t, 5.5, Setting{Value: "5.5", Type: SettingNumber}.Typed())
	assert.Equal(t, float64(0), Setting{Value: "abc", Type: SettingNumber}.Typed())
	assert.Equal(t, true, Setting{Value: "1", Type: SettingBoolean}.Typed())
	assert.Equal(t, true, Setting{Value: "true", Type: SettingBoolean}.Typed())
	assert.Equal(t, false, Setting{Value: "0", Type: SettingBoolean}.Typed())
	assert.Equal(t, "SMM Panel", Setting{Value: "SMM Panel", Type: SettingString}.Typed())
}

func TestEncodeSetting(t *testing.T) {
	assert.Equal(t, Setting{Key: "maintenance_mode", Value: "1", Type: SettingBoolean}, EncodeSetting("maintenance_mode", true))
	assert.Equal(t, Setting{Key: "maintenance_mode", Value: "0", Type: SettingBoolean}, EncodeSetting("maintenance_mode", false))
	assert.Equal(t, Setting{Key: "min_deposit", Value: "7.5", Type: SettingNumber}, EncodeSetting("min_deposit", 7.5))
	assert.Equal(t, Setting{Key: "max_deposit", Value: "10000", Type: SettingNumber}, EncodeSetting("max_deposit", float64(10000)))
	assert.Equal(t, Setting{Key: "site_name", Value: "Panel", Type: SettingString}, EncodeSetting("site_name", "Panel"))
	assert.Equal(t, Setting{Key: "payment_methods", Value: `["card","crypto"]`, Type: SettingString},
		EncodeSetting("payment_methods", []any{"card", "crypto"}))
	assert.Equal(t, Setting{Key: "smtp", Value: `{"host":"x"}`, Type: SettingString},
		EncodeSetting("smtp", map[string]any{"host": "x"}))
}

func TestSetting_RoundTrip(t *testing.T) {
	for _, v := range []any{true, false, 12.25, "hello"} {
		assert.Equal(t, v, EncodeSetting("k", v).Typed())
	}
}
