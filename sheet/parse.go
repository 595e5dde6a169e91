package sheet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/folio"
)

// text reads a string cell. Numbers are rendered back as text, missing cells are empty.
func text(rec any, paths ...string) string {
	jval, ok := lookup(rec, paths...)
	if !ok {
		return ""
	}
	switch v := jval.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// decimalText returns the cell as a decimal literal, "" for a missing or blank cell.
func decimalText(rec any, paths ...string) (string, error) {
	jval, ok := lookup(rec, paths...)
	if !ok {
		return "", nil
	}
	return decimalOf(jval)
}

func decimalOf(jval any) (string, error) {
	switch v := jval.(type) {
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		// spreadsheets like to format numbers: "1,234.50", " 12 "
		s := strings.ReplaceAll(v, ",", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.TrimSuffix(s, "%")
		return s, nil
	default:
		return "", fmt.Errorf("not a number: %v", v)
	}
}

func amount(rec any, paths ...string) (folio.Money, error) {
	s, err := decimalText(rec, paths...)
	if err != nil || s == "" {
		return folio.M(0), err
	}
	return folio.ParseMoney(s)
}

func quantity(rec any, paths ...string) (folio.Quantity, error) {
	s, err := decimalText(rec, paths...)
	if err != nil || s == "" {
		return folio.Q(0), err
	}
	return folio.ParseQuantity(s)
}

func number(rec any, paths ...string) (float64, error) {
	s, err := decimalText(rec, paths...)
	if err != nil || s == "" {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// series reads a list of numbers, nil when absent.
func series(rec any, path string) ([]float64, error) {
	var values []float64
	for i, cell := range list(rec, path) {
		s, err := decimalOf(cell)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
