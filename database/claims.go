package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var currencyCleaner = regexp.MustCompile(`[$,\s]`)

// ParseCurrency разбирает денежную строку, убирая символы валюты
// и разделители тысяч: "$1,234,567.89" -> 1234567.89
func ParseCurrency(raw string) (float64, error) {
	cleaned := currencyCleaner.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty currency value")
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid currency value %q: %w", raw, err)
	}
	return value, nil
}

// ClaimAmount денежная сумма убытков в staging-записи. Гибкая схема
// принимает и число, и денежную строку ("$1,234,567.89"); строка
// нормализуется через ParseCurrency при приеме. Наружу сериализуется
// обычным числом.
type ClaimAmount float64

// Float64 возвращает сумму как обычное число
func (a ClaimAmount) Float64() float64 {
	return float64(a)
}

func (a *ClaimAmount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		value, err := ParseCurrency(raw)
		if err != nil {
			return err
		}
		*a = ClaimAmount(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*a = ClaimAmount(value)
	return nil
}
