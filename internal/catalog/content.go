package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/models"
)

// GetContent loads a movie or show by id
func (c *Client) GetContent(ctx context.Context, kind models.Kind, id int64) (*models.Record, error) {
	endpoint, err := detailsEndpoint(kind, id)
	if err != nil {
		return nil, err
	}

	raw, err := c.doRaw(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	rec, err := models.DecodeRecord(kind, raw)
	if err != nil {
		return nil, errors.ParseError("Invalid response format", err)
	}
	if rec.ID != id {
		return nil, errors.MalformedDataError(fmt.Sprintf("catalog returned %s %d for id %d", kind, rec.ID, id))
	}
	return rec, nil
}

// UpdateContent replaces all mutable fields of a record
func (c *Client) UpdateContent(ctx context.Context, rec *models.Record) (Result, error) {
	if err := rec.Validate(); err != nil {
		return Result{}, errors.ValidationError(err.Error())
	}

	var endpoint string
	switch rec.Kind {
	case models.KindMovie:
		endpoint = fmt.Sprintf("/api/v1/updateMovie/%d", rec.ID)
	case models.KindShow:
		endpoint = fmt.Sprintf("/api/v1/updateShow/%d", rec.ID)
	}

	var result Result
	err := c.do(ctx, http.MethodPut, endpoint, rec.Payload(), &result)
	return result, err
}

func detailsEndpoint(kind models.Kind, id int64) (string, error) {
	switch kind {
	case models.KindMovie:
		return fmt.Sprintf("/api/v1/getMovieDetails/%d", id), nil
	case models.KindShow:
		return fmt.Sprintf("/api/v1/getShowDetails/%d", id), nil
	}
	return "", errors.ValidationError(fmt.Sprintf("unknown content kind %q", kind))
}
