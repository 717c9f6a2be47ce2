package cleantech

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"cleantech100-scraper/models"
)

const (
	profileMarker = "profile data in json"
	scriptEnd     = "</script>"

	// The profile object sits between a JS assignment and trailing
	// syntax of fixed width.
	payloadPrefixLen = 10
	payloadSuffixLen = 6

	companyPrefix = "company_"
	extraPrefix   = "x_"
)

// companyKeys are lifted out of the nested "company" object
var companyKeys = []string{
	"address",
	"city",
	"name",
	"num_employees",
	"overview",
	"short_description",
	"state",
	"updated_at",
	"website",
	"company_type",
	"stage",
}

// droppedKeys are top-level profile keys that are never exported
var droppedKeys = []string{
	"edit_options",
	"options_for_primary_contacts",
	"follow",
	"notes_unstruct_q",
	"notes_struct_q",
	"company_editor_users",
	"primary_tag",
	"industry_group",
	"edit_company_tags",
	"recommendations",
	"row_counts",
	"po_contact_bodies",
	"updated_by_info",
}

// ParseDetail extracts and normalizes the profile JSON embedded in a
// company detail page.
func ParseDetail(body string) (models.DetailRecord, error) {
	payload, err := ExtractProfileJSON(body)
	if err != nil {
		return nil, err
	}

	profile, err := decodeProfile(payload)
	if err != nil {
		return nil, err
	}
	return normalizeProfile(profile)
}

// ExtractProfileJSON returns the raw JSON text that follows the
// "profile data in json" comment in the page's inline script.
func ExtractProfileJSON(body string) (string, error) {
	_, after, found := strings.Cut(body, profileMarker)
	if !found {
		return "", ErrMarkerNotFound
	}
	// the segment ends at whichever comes first
	end := strings.Index(after, scriptEnd)
	if i := strings.Index(after, profileMarker); i >= 0 && (end < 0 || i < end) {
		end = i
	}
	if end < 0 {
		return "", fmt.Errorf("%w: no %s after profile comment", ErrMarkerNotFound, scriptEnd)
	}
	segment := after[:end]

	runes := []rune(segment)
	if len(runes) <= payloadPrefixLen+payloadSuffixLen {
		return "", fmt.Errorf("profile script too short (%d chars)", len(runes))
	}
	return string(runes[payloadPrefixLen : len(runes)-payloadSuffixLen]), nil
}

func decodeProfile(payload string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode profile json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode profile json: trailing data after object")
	}

	profile, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode profile json: got %T, want object", v)
	}
	return profile, nil
}

func normalizeProfile(profile map[string]any) (models.DetailRecord, error) {
	company, ok := profile["company"].(map[string]any)
	if !ok {
		return nil, ErrNoCompany
	}

	rec := make(models.DetailRecord, len(profile)+len(companyKeys))
	for _, key := range companyKeys {
		if v, ok := company[key]; ok {
			rec[companyPrefix+key] = v
		}
	}

	for key, v := range profile {
		if slices.Contains(droppedKeys, key) {
			continue
		}
		if strings.HasPrefix(key, companyPrefix) {
			// values lifted from "company" take precedence
			if _, taken := rec[key]; !taken {
				rec[key] = v
			}
			continue
		}
		rec[extraPrefix+key] = v
	}
	return rec, nil
}
