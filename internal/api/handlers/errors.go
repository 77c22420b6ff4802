// Package handlers implements the Huma operations and probes served by the
// vehicle deal checker.
package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/vehicle-deal-checker/internal/store"
	domain "github.com/donaldgifford/vehicle-deal-checker/pkg/types"
)

// apiError maps the domain error taxonomy onto HTTP status codes.
func apiError(msg string, err error) error {
	text := msg + ": " + err.Error()
	switch {
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(text)
	case errors.Is(err, domain.ErrNoData), errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound(text)
	case errors.Is(err, domain.ErrConfig):
		return huma.Error503ServiceUnavailable(text)
	case errors.Is(err, domain.ErrProvider):
		return huma.Error502BadGateway(text)
	default:
		return huma.Error500InternalServerError(text)
	}
}
