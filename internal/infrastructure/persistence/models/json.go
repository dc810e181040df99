package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// toJSON encodes v for a JSON column; nil values are stored as SQL NULL
func toJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return datatypes.JSON(b)
}

// fromJSON decodes a JSON column into out; empty or invalid columns leave out untouched
func fromJSON(col datatypes.JSON, out any) {
	if len(col) == 0 {
		return
	}
	_ = json.Unmarshal(col, out)
}
