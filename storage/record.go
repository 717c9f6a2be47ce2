package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cleantech100-scraper/models"
)

// companyDocument encodes c as a JSON object for the data column
func companyDocument(c models.Company) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(c)); err != nil {
		return "", fmt.Errorf("encode %s: %w", c.URL(), err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
