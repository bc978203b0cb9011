package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flag is a boolean that also accepts 0/1, since the server stores role
// flags as integers and returns them unconverted on some endpoints.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "false", "0":
		*f = false
		return nil
	case "true", "1":
		*f = true
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid boolean %s", b)
	}
	*f = n != 0
	return nil
}
