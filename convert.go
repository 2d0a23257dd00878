package excelextract

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

/* =========================================================
 *  Type Conversion
 * ========================================================= */

var (
	timeType            = reflect.TypeOf(time.Time{})
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

	errNotInteger = errors.New("not an integer")
)

// parseBool converts various common boolean strings into bool.
func parseBool(raw string) (bool, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool: %q", raw)
}

// excelSerialToTime converts an Excel serial date (1900 date system) to time.Time (UTC).
// Note: This uses the common "1899-12-30" base to match Excel's 1900 system behavior.
func excelSerialToTime(serial float64) (time.Time, error) {
	if serial <= 0 {
		return time.Time{}, fmt.Errorf("invalid excel serial: %f", serial)
	}
	const secondsInDay = 24 * 60 * 60

	days := int64(serial)
	frac := serial - float64(days)

	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	t := base.AddDate(0, 0, int(days))

	sec := int64(frac*secondsInDay + 0.5)
	t = t.Add(time.Duration(sec) * time.Second)

	return t, nil
}

var timeLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"02/01/2006 15:04",
	"2006-01-02 15:04",
	"02-01-2006 15:04",
}

// parseTime attempts to parse a time value from the cell text.
// It tries in this order:
//  1. Custom layout (from the `fmt` tag)
//  2. RFC3339
//  3. Several common date/time layouts
//  4. Excel serial number
func parseTime(raw, layout string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err2 := excelSerialToTime(f); err2 == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %q", raw)
}

// rawString renders a typed cell value back to text.
func rawString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprint(raw)
}

func isBlankValue(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, errNotInteger
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return toInt64(f)
	}
	return 0, fmt.Errorf("unsupported value type %T", raw)
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported value type %T", raw)
}

func toTime(raw any, layout string) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case float64:
		return excelSerialToTime(v)
	case string:
		return parseTime(v, layout)
	}
	return time.Time{}, fmt.Errorf("unsupported value type %T", raw)
}

// convertValue converts a typed cell value into V.
// Blank values produce the zero value of V.
func convertValue[V any](raw any, layout string) (V, error) {
	var v V
	if raw == nil {
		return v, nil
	}
	if direct, ok := raw.(V); ok {
		return direct, nil
	}
	err := assignValue(reflect.ValueOf(&v).Elem(), raw, layout)
	return v, err
}

// assignValue performs conversion for the underlying concrete kind of dst.
func assignValue(dst reflect.Value, raw any, layout string) error {
	t := dst.Type()

	if t.Kind() == reflect.Interface {
		if raw == nil {
			dst.SetZero()
			return nil
		}
		rv := reflect.ValueOf(raw)
		if !rv.Type().AssignableTo(t) {
			return fmt.Errorf("%T does not implement %s", raw, t)
		}
		dst.Set(rv)
		return nil
	}

	// Pointer types: blank keeps nil; otherwise allocate and set.
	if t.Kind() == reflect.Ptr {
		if isBlankValue(raw) {
			dst.SetZero()
			return nil
		}
		elem := reflect.New(t.Elem())
		if err := assignValue(elem.Elem(), raw, layout); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if raw == nil {
		dst.SetZero()
		return nil
	}
	if rv := reflect.ValueOf(raw); rv.Type().AssignableTo(t) {
		dst.Set(rv)
		return nil
	}

	if t == timeType {
		if isBlankValue(raw) {
			dst.SetZero()
			return nil
		}
		tm, err := toTime(raw, layout)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(tm))
		return nil
	}

	if dst.CanAddr() && dst.Addr().Type().Implements(textUnmarshalerType) {
		u := dst.Addr().Interface().(encoding.TextUnmarshaler)
		return u.UnmarshalText([]byte(rawString(raw)))
	}

	if t.Kind() == reflect.String {
		dst.SetString(rawString(raw))
		return nil
	}

	if isBlankValue(raw) {
		dst.SetZero()
		return nil
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(raw)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return strconv.ErrRange
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(raw)
		if err != nil {
			return err
		}
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return strconv.ErrRange
		}
		dst.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(raw)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return strconv.ErrRange
		}
		dst.SetFloat(f)
		return nil

	case reflect.Bool:
		switch v := raw.(type) {
		case float64:
			dst.SetBool(v != 0)
			return nil
		case string:
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			dst.SetBool(b)
			return nil
		}
	}

	return fmt.Errorf("unsupported kind %s for value %v", t.Kind(), raw)
}
