package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/pagination"
)

// ParseQueryUUID reads an optional UUID query parameter. A missing value
// returns nil without error.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a uuid").
			WithDetails(map[string]any{"field": key})
	}
	return &parsed, nil
}

// ParseQueryInt64 reads an optional integer query parameter.
func ParseQueryInt64(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParsePagination reads limit and cursor query parameters into pagination
// params. The limit is clamped later by the service.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	limit, err := ParseQueryInt64(r, "limit")
	if err != nil {
		return params, err
	}
	if limit != nil {
		params.Limit = int(*limit)
	}
	return params, nil
}
