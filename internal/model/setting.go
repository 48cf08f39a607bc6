package model

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// SettingType tells how setting_value is decoded.
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingBoolean SettingType = "boolean"
)

// Setting is one row of the settings table.
type Setting struct {
	Key   string
	Value string
	Type  SettingType
}

// Typed decodes the stored string: numbers become float64, booleans are
// true only for "1" or "true", everything else stays a string.
func (s Setting) Typed() any {
	switch s.Type {
	case SettingNumber:
		f, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case SettingBoolean:
		return s.Value == "1" || s.Value == "true"
	default:
		return s.Value
	}
}

// EncodeSetting infers the type of a JSON-decoded value and renders it
// for storage. Booleans are stored as "1" or "0"; arrays and objects keep
// their JSON encoding as a string setting.
func EncodeSetting(key string, v any) Setting {
	switch t := v.(type) {
	case bool:
		val := "0"
		if t {
			val = "1"
		}
		return Setting{Key: key, Value: val, Type: SettingBoolean}
	case float64:
		return Setting{Key: key, Value: strconv.FormatFloat(t, 'f', -1, 64), Type: SettingNumber}
	case int:
		return Setting{Key: key, Value: strconv.Itoa(t), Type: SettingNumber}
	case decimal.Decimal:
		return Setting{Key: key, Value: t.String(), Type: SettingNumber}
	case nil:
		return Setting{Key: key, Value: "", Type: SettingString}
	case string:
		return Setting{Key: key, Value: t, Type: SettingString}
	default:
		return Setting{Key: key, Value: toString(t), Type: SettingString}
	}
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
