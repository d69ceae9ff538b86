package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ponyclubs/clubsync/internal/model"
)

// Field-alias tables: each output field is resolved by trying the keys in
// priority order against the raw element; the first present, non-empty key
// wins. The aliases cover every naming scheme seen in historical PCA
// exports.
var (
	nameKeys    = []string{"Name", "club_name", "name"}
	logoKeys    = []string{"Image", "logo_url", "logoUrl", "imageUrl"}
	phoneKeys   = []string{"PhoneNumber", "phone", "phoneNumber"}
	emailKeys   = []string{"EmailAddress", "email", "contactEmail"}
	websiteKeys = []string{"Website", "website", "url"}
	contactKeys = []string{"ContactPerson", "contact_person", "contactName"}
	roleKeys    = []string{"ContactRole", "contact_role", "role"}

	addressPartKeys = [][]string{
		{"Address1", "address_1", "AddressLine1", "street"},
		{"Address2", "address_2", "AddressLine2"},
		{"Town", "town", "City", "city"},
		{"County", "county", "State", "state"},
		{"Country", "country"},
		{"Postcode", "postcode", "PostCode", "zip"},
	}

	altIDKeys     = []string{"Id", "id", "ClubId", "club_id", "pca_id"}
	coordObjKeys  = []string{"Coordinates", "coordinates", "Location", "location"}
	latitudeKeys  = []string{"Latitude", "latitude", "lat"}
	longitudeKeys = []string{"Longitude", "longitude", "lng", "lon"}
)

// Extract parses a loosely-typed payload into canonical records. The
// payload may carry leading/trailing noise (markdown fences and the like)
// around a JSON array; everything between the first '[' and the last ']'
// is treated as the array.
//
// Elements that are not objects, or whose resolved name normalizes to
// empty, are skipped and reported in the returned SkippedRow list rather
// than aborting the batch. Fatal payload problems return an error wrapping
// ErrExtraction.
func Extract(payload string) ([]model.ExtractedRecord, []model.SkippedRow, error) {
	start := strings.Index(payload, "[")
	if start < 0 {
		return nil, nil, eris.Wrap(ErrExtraction, "no array found")
	}
	end := strings.LastIndex(payload, "]")
	if end < start {
		return nil, nil, eris.Wrap(ErrExtraction, "array not closed")
	}

	var doc any
	if err := json.Unmarshal([]byte(payload[start:end+1]), &doc); err != nil {
		return nil, nil, eris.Wrapf(ErrExtraction, "parse array: %v", err)
	}
	elems, ok := doc.([]any)
	if !ok {
		return nil, nil, eris.Wrap(ErrExtraction, "not an array")
	}

	var (
		records []model.ExtractedRecord
		skipped []model.SkippedRow
	)
	for i, el := range elems {
		obj, ok := el.(map[string]any)
		if !ok {
			skipped = append(skipped, model.SkippedRow{Index: i, Reason: "element is not an object"})
			continue
		}
		rec := recordFromObject(obj)
		if rec.Name == "" {
			skipped = append(skipped, model.SkippedRow{Index: i, Reason: "empty name"})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func recordFromObject(obj map[string]any) model.ExtractedRecord {
	rec := model.ExtractedRecord{
		Name:          Normalize(firstString(obj, nameKeys)),
		Address:       synthesizeAddress(obj),
		Phone:         Normalize(firstString(obj, phoneKeys)),
		Email:         Normalize(firstString(obj, emailKeys)),
		Website:       Normalize(firstString(obj, websiteKeys)),
		LogoURL:       Normalize(firstString(obj, logoKeys)),
		ContactPerson: Normalize(firstString(obj, contactKeys)),
		ContactRole:   Normalize(firstString(obj, roleKeys)),
	}
	rec.AdditionalInfo = additionalInfo(obj)
	return rec
}

// synthesizeAddress joins the known address sub-fields with ", ",
// skipping empties, then normalizes the result.
func synthesizeAddress(obj map[string]any) string {
	var parts []string
	for _, keys := range addressPartKeys {
		if v := firstString(obj, keys); v != "" {
			parts = append(parts, v)
		}
	}
	return Normalize(strings.Join(parts, ", "))
}

// additionalInfo folds alternate identifiers and any nested coordinates
// into a single catch-all string. Coordinates are deliberately not
// first-class output fields.
func additionalInfo(obj map[string]any) string {
	var extras []string
	for _, k := range altIDKeys {
		if v, ok := obj[k]; ok {
			if s := stringify(v); s != "" {
				extras = append(extras, k+" "+s)
			}
		}
	}
	if coords, ok := firstObject(obj, coordObjKeys); ok {
		if lat, ok := firstFloat(coords, latitudeKeys); ok {
			extras = append(extras, fmt.Sprintf("lat %g", lat))
		}
		if lng, ok := firstFloat(coords, longitudeKeys); ok {
			extras = append(extras, fmt.Sprintf("lng %g", lng))
		}
	}
	return Normalize(strings.Join(extras, " "))
}

// firstString resolves the first present, non-empty key from the alias
// list. Numeric values (JSON numbers used for phone fields and ids) are
// rendered as strings.
func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func firstObject(obj map[string]any, keys []string) (map[string]any, bool) {
	for _, k := range keys {
		if nested, ok := obj[k].(map[string]any); ok {
			return nested, true
		}
	}
	return nil, false
}

func firstFloat(obj map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
