package output

import "encoding/json"

// FormatJSONValue renders any result as indented JSON.
func FormatJSONValue(value any) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render formats value per the requested format, using the table renderer
// supplied by the caller for the table case.
func Render(format Format, value any, tableFn func() string) (string, error) {
	if format == FormatJSON {
		return FormatJSONValue(value)
	}
	return tableFn(), nil
}
