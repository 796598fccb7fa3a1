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

// ListUsers loads up to the configured number of users
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, fmt.Sprintf("/api/v1/users?limit=%d", c.userLimit), nil)
	if err != nil {
		return nil, err
	}
	return DecodeUsers(raw)
}

// SearchUsers returns the users matching a query
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/v1/users/search?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	return DecodeUsers(raw)
}

// UpdateUser replaces the editable fields of a user
func (c *Client) UpdateUser(ctx context.Context, id int64, update models.UserUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", id), update, nil)
}

// DeleteUser removes a user account
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", id), nil, nil)
}

// DecodeUsers accepts either {"users": [...]} or a bare array
func DecodeUsers(raw []byte) ([]models.User, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) > 0 && raw[0] == '[' {
		var users []models.User
		if err := json.Unmarshal(raw, &users); err != nil {
			return nil, errors.ParseError("Invalid response format", err)
		}
		return users, nil
	}

	var envelope struct {
		Users *[]models.User `json:"users"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Users == nil {
		return nil, errors.MalformedDataError("Invalid response format")
	}
	return *envelope.Users, nil
}
