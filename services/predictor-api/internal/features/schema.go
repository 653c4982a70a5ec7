package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nimeshabuddhika/credit-risk-api/pkg"
)

type Kind int

const (
	Float Kind = iota
	Integer
)

func (k Kind) String() string {
	if k == Integer {
		return "integer"
	}
	return "float"
}

// Constraint declares one model input column and its accepted range (inclusive).
type Constraint struct {
	Name string
	Kind Kind
	Min  float64
	Max  float64
}

// Schema is an ordered list of constraints. The order is the model's column order.
type Schema []Constraint

const (
	ExtSource3             = "EXT_SOURCE_3"
	ExtSource2             = "EXT_SOURCE_2"
	FlagPhone              = "FLAG_PHONE"
	RegCityNotWorkCity     = "REG_CITY_NOT_WORK_CITY"
	RegionRatingClient     = "REGION_RATING_CLIENT"
	AmtReqCreditBureauYear = "AMT_REQ_CREDIT_BUREAU_YEAR"
)

const (
	msgFieldRequired        = "field required"
	msgNotANumber           = "must be a number"
	msgNotAnInteger         = "must be a valid integer"
	msgGreaterThanOrEqualTo = "must be greater than or equal to %s"
	msgLessThanOrEqualTo    = "must be less than or equal to %s"
)

// CreditRisk is the input schema of the credit default model.
var CreditRisk = Schema{
	{Name: ExtSource3, Kind: Float, Min: 0, Max: 1},
	{Name: ExtSource2, Kind: Float, Min: 0, Max: 1},
	{Name: FlagPhone, Kind: Integer, Min: 0, Max: 1},
	{Name: RegCityNotWorkCity, Kind: Integer, Min: 0, Max: 1},
	{Name: RegionRatingClient, Kind: Integer, Min: 1, Max: 3},
	{Name: AmtReqCreditBureauYear, Kind: Float, Min: 0, Max: math.Inf(1)},
}

// Names returns the column names in model order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Vector validates record against every constraint and returns the feature vector in schema order.
// All violations are collected into a single pkg.ValidationError. Keys not in the schema are ignored.
func (s Schema) Vector(record map[string]any) ([]float64, error) {
	x := make([]float64, len(s))
	var violations []pkg.FieldError
	for i, c := range s {
		v, msg := c.check(record)
		if msg != "" {
			violations = append(violations, pkg.FieldError{Field: c.Name, Message: msg})
			continue
		}
		x[i] = v
	}
	if len(violations) > 0 {
		return nil, pkg.ValidationError{Fields: violations}
	}
	return x, nil
}

func (c Constraint) check(record map[string]any) (float64, string) {
	raw, ok := record[c.Name]
	if !ok {
		return 0, msgFieldRequired
	}
	v, ok := toFloat(raw)
	if !ok {
		return 0, msgNotANumber
	}
	if c.Kind == Integer && v != math.Trunc(v) {
		return 0, msgNotAnInteger
	}
	if v < c.Min {
		return 0, fmt.Sprintf(msgGreaterThanOrEqualTo, formatBound(c.Min))
	}
	if v > c.Max {
		return 0, fmt.Sprintf(msgLessThanOrEqualTo, formatBound(c.Max))
	}
	return v, ""
}

// toFloat accepts JSON numbers decoded either as json.Number or float64, numeric strings such as "0.5",
// and booleans as 0/1. JSON null, arrays, objects and non-numeric strings are rejected.
func toFloat(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case float64:
		v = n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		v = f
	case bool:
		if n {
			v = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
