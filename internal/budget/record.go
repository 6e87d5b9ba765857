// Package budget parses the two resource types of a budget data tree: the
// directory.json listing of a folder and the YAML record file of a budget line.
package budget

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Resource naming conventions of the data tree.
const (
	ListingFile   = "directory.json"
	DataExtension = ".yaml"
	AmountKey     = "Betrag"
	FallbackLabel = "Unbenannt"
)

// LabelPriority lists the label keys from most to least specific.
//
//nolint:gochecknoglobals // Fixed lookup order.
var LabelPriority = []string{
	"Titelbezeichnung",
	"Gruppenbezeichnung",
	"Obergruppenbezeichnung",
	"Kapitelbezeichnung",
	"Einzelplanbezeichnung",
	"Bereichsbezeichnung",
}

// Parse errors.
var (
	ErrNotMapping    = errors.New("record is not a mapping")
	ErrMissingAmount = errors.New("record has no " + AmountKey)
	ErrInvalidAmount = errors.New("record " + AmountKey + " is not numeric")
)

// Listing is the content of a directory.json file.
type Listing struct {
	Files          []string `json:"files"`
	Subdirectories []string `json:"subdirectories,omitempty"`
}

// ParseListing decodes a directory.json body.
func ParseListing(data []byte) (*Listing, error) {
	var l Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ListingFile, err)
	}
	return &l, nil
}

// DataFiles returns the entries of Files that are record files, in listing order.
func (l *Listing) DataFiles() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.Files))
	for _, f := range l.Files {
		if IsDataFile(f) {
			out = append(out, f)
		}
	}
	return out
}

// HasDataFiles reports whether the listing names at least one record file.
func (l *Listing) HasDataFiles() bool {
	if l == nil {
		return false
	}
	for _, f := range l.Files {
		if IsDataFile(f) {
			return true
		}
	}
	return false
}

// IsDataFile reports whether name is a record file.
func IsDataFile(name string) bool {
	return strings.HasSuffix(name, DataExtension) && len(name) > len(DataExtension)
}

// FolderName strips the record extension: "0401.yaml" -> "0401".
func FolderName(file string) string {
	return strings.TrimSuffix(file, DataExtension)
}

// Record is a parsed YAML record file.
type Record map[string]any

// ParseRecord decodes a record file body. The document must be a mapping.
func ParseRecord(data []byte) (Record, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	switch m := raw.(type) {
	case map[string]any:
		return Record(m), nil
	case map[any]any:
		// Keys such as 2024 or true decode untyped; index them by their text.
		rec := make(Record, len(m))
		for k, v := range m {
			rec[fmt.Sprint(k)] = v
		}
		return rec, nil
	default:
		return nil, ErrNotMapping
	}
}

// Label returns the first non-empty label by LabelPriority, or FallbackLabel.
func (r Record) Label() string {
	for _, key := range LabelPriority {
		if s := scalarString(r[key]); s != "" {
			return s
		}
	}
	return FallbackLabel
}

// Amount parses the Betrag field. Integers, floats and strings holding a
// decimal number are accepted. NaN and infinite values are rejected.
func (r Record) Amount() (float64, error) {
	raw, ok := r[AmountKey]
	if !ok || raw == nil {
		return 0, ErrMissingAmount
	}

	var d decimal.Decimal
	switch v := raw.(type) {
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case uint64:
		d = decimal.RequireFromString(strconv.FormatUint(v, 10))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
		}
		d = decimal.NewFromFloat(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, ErrMissingAmount
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, v)
		}
		d = parsed
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidAmount, raw)
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v out of range", ErrInvalidAmount, raw)
	}
	return f, nil
}

// scalarString renders a scalar label value; mappings and lists yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
