package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/models"
)

// Trending loads the configured trending list
func (c *Client) Trending(ctx context.Context) (models.TrendingSelection, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/v1/trending", nil)
	if err != nil {
		return models.TrendingSelection{}, err
	}
	return DecodeTrending(raw)
}

// UpdateTrending replaces the trending list with the selection
func (c *Client) UpdateTrending(ctx context.Context, sel models.TrendingSelection) (Result, error) {
	var result Result
	err := c.do(ctx, http.MethodPost, "/api/v1/update_trending", sel.Update(), &result)
	return result, err
}

// Search finds titles of a kind for the trending picker
func (c *Client) Search(ctx context.Context, kind models.Kind, query string) ([]models.TrendingItem, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/api/v1/search/%s?query=%s", kind, url.QueryEscape(query)), nil)
	if err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

// DecodeTrending accepts a flat list tagged with media_type or an object
// keyed by kind
func DecodeTrending(raw []byte) (models.TrendingSelection, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '[' {
		items, err := decodeItems(raw)
		if err != nil {
			return models.TrendingSelection{}, err
		}
		return models.SplitTrending(items), nil
	}

	var grouped struct {
		Movie []models.TrendingItem `json:"movie"`
		Show  []models.TrendingItem `json:"show"`
	}
	if err := json.Unmarshal(raw, &grouped); err != nil {
		return models.TrendingSelection{}, errors.MalformedDataError("Invalid response format")
	}

	var sel models.TrendingSelection
	for _, item := range grouped.Movie {
		sel.Add(models.KindMovie, item)
	}
	for _, item := range grouped.Show {
		sel.Add(models.KindShow, item)
	}
	return sel, nil
}

func decodeItems(raw []byte) ([]models.TrendingItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var envelope struct {
			Results []models.TrendingItem `json:"results"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.MalformedDataError("Invalid response format")
		}
		return envelope.Results, nil
	}

	var items []models.TrendingItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.MalformedDataError("Invalid response format")
	}
	return items, nil
}
