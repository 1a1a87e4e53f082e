package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
)

// ParseQueryInt reads a numeric query parameter with range enforcement.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Query parameter %q must be numeric", key))
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Query parameter %q must be between %d and %d", key, min, max))
	}
	return value, nil
}

// ParseQueryBool reads an optional boolean query parameter. The pointer is nil
// when the parameter is absent.
func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Query parameter %q must be true or false", key))
	}
	return &value, nil
}

// ParseQueryString reads an optional trimmed string query parameter.
func ParseQueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
