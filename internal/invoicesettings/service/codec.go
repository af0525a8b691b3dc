package service

import (
	"bytes"
	"encoding/json"

	"github.com/smallbiznis/pike/internal/invoicesettings/domain"
)

// encode pretty-prints settings with 4-space indentation and no HTML or slash escaping.
func encode(s domain.Settings) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decode parses a persisted document. Anything other than a JSON object is an error.
func decode(data []byte) (domain.Settings, error) {
	var s domain.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrInvalidSettings
	}
	return s, nil
}
