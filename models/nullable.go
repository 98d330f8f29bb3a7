package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 that may be missing. The zero value is missing, so a
// Listing field that was never populated reads as "no value" rather than 0.
type Float struct {
	Float64 float64
	Valid   bool
}

// NewFloat wraps v. NaN and the infinities are never valid values and
// yield a missing Float.
func NewFloat(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Float64: v, Valid: true}
}

// Or returns the value, or def when missing.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Float64
}

// String formats the value in shortest round-trip form without an exponent.
// Missing values format as the empty string.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// MarshalText is used by the CSV encoder.
func (f Float) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid || math.IsInf(f.Float64, 0) || math.IsNaN(f.Float64) {
		return []byte("null"), nil
	}
	return json.Marshal(f.Float64)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = NewFloat(v)
	return nil
}

// Value implements driver.Valuer; missing values are stored as NULL.
func (f Float) Value() (driver.Value, error) {
	if !f.Valid {
		return nil, nil
	}
	return f.Float64, nil
}

// Int is an int64 that may be missing. The zero value is missing.
type Int struct {
	Int64 int64
	Valid bool
}

func NewInt(v int64) Int {
	return Int{Int64: v, Valid: true}
}

func (i Int) String() string {
	if !i.Valid {
		return ""
	}
	return strconv.FormatInt(i.Int64, 10)
}

func (i Int) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(i.Int64, 10)), nil
}

func (i *Int) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*i = Int{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = NewInt(v)
	return nil
}

func (i Int) Value() (driver.Value, error) {
	if !i.Valid {
		return nil, nil
	}
	return i.Int64, nil
}
