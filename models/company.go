package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	KeyURL         = "cleantech_url"
	KeyCountry     = "company_country"
	KeyFunding     = "company_funding"
	KeySector      = "company_sector"
	KeyYearFounded = "company_year_founded"
	KeyRegion      = "company_region"
	KeyVideo       = "company_video"
	KeyName        = "company_name"
)

// ListHeader maps list table columns, by position, to record keys.
// The last two columns exist in the table but are not shown in its header.
var ListHeader = []string{
	KeyURL,         // COMPANY
	KeyCountry,     // GEOGRAPHY
	KeyFunding,     // FUNDING
	KeySector,      // SECTOR
	KeyYearFounded, // YEAR FOUNDED
	KeyRegion,
	KeyVideo,
}

// ListRow is one parsed row of the ranking table
type ListRow map[string]string

// DetailRecord is the normalized profile JSON from a company's detail page.
// Every key starts with "company_" or "x_".
type DetailRecord map[string]any

// Company is a ListRow merged with its DetailRecord
type Company map[string]any

// Merge returns the shallow union of row and detail; detail keys win
func Merge(row ListRow, detail DetailRecord) Company {
	c := make(Company, len(row)+len(detail))
	for k, v := range row {
		c[k] = v
	}
	for k, v := range detail {
		c[k] = v
	}
	return c
}

// Field renders the value under key, or "" when absent
func (c Company) Field(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// URL returns the company's detail page link
func (c Company) URL() string {
	return c.Field(KeyURL)
}

// Name returns the company name from its profile
func (c Company) Name() string {
	return c.Field(KeyName)
}

// FormatValue renders a decoded JSON value as a single CSV cell
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case map[string]any, []any:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return fmt.Sprint(val)
		}
		return strings.TrimSuffix(buf.String(), "\n")
	default:
		return fmt.Sprint(val)
	}
}

// Summary holds counts computed from the final dataset
type Summary struct {
	TotalCompanies int
	WithVideo      int
	ByRegion       map[string]int
	BySector       map[string]int
	ByCountry      map[string]int
}
