package mediasvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcahill/reeldeck/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Reeldeck/1.0"
	apiPrefix      = "/api/v1"
)

// Client implements domain.MediaClient against the hosted media service.
//
// Every call except the two informational ones (curated media, generic
// listing) attaches a freshly fetched bearer token; tokens are never
// cached across calls.
type Client struct {
	baseURL    string
	tokens     domain.TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a media service client.
func NewClient(baseURL string, tokens domain.TokenProvider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs an HTTP request and maps status codes to sentinel
// errors. payload, when non-nil, is sent as a JSON body. authed requests
// carry a fresh bearer token.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any, authed bool) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s%s", c.baseURL, apiPrefix, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("media service request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.logger.Error("media service request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrAuthFailed
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("media service request error", "status", resp.StatusCode, "body", string(data))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return data, nil
}

func (c *Client) parseMedia(data []byte) ([]domain.MediaItem, error) {
	var resp mediaResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(data))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapItems(resp.Media), nil
}

func (c *Client) parseSearchMedia(data []byte) ([]domain.MediaItem, error) {
	var resp mediaSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(data))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return mapSearchItems(resp.Media), nil
}

// HasRatingHistory reports whether the client has rating history; the
// service answers with 404 when it does not.
func (c *Client) HasRatingHistory(ctx context.Context, clientID string) (bool, error) {
	path := fmt.Sprintf("/users/%s/rating-history", url.PathEscape(clientID))
	_, err := c.doRequest(ctx, http.MethodGet, path, nil, nil, true)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CuratedMedia returns the curated/startup set. This endpoint is
// informational and requires no credential.
func (c *Client) CuratedMedia(ctx context.Context) ([]domain.MediaItem, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/media/startup", nil, nil, false)
	if err != nil {
		return nil, err
	}
	return c.parseMedia(data)
}

// Recommendations returns one page of personalized recommendations; 404
// maps to ErrNoRecommendations.
func (c *Client) Recommendations(ctx context.Context, clientID string, cursor, limit int, refresh bool) ([]domain.MediaItem, error) {
	payload := recommendationsRequest{
		ClientID: clientID,
		Cursor:   cursor,
		Limit:    limit,
		Refresh:  refresh,
	}
	data, err := c.doRequest(ctx, http.MethodPost, "/recommendations", nil, payload, true)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoRecommendations
	}
	if err != nil {
		return nil, err
	}
	return c.parseMedia(data)
}

// MediaPage returns one page of the generic media listing. Informational,
// no credential required.
func (c *Client) MediaPage(ctx context.Context, page, size int) ([]domain.MediaItem, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(size))
	data, err := c.doRequest(ctx, http.MethodGet, "/media", query, nil, false)
	if err != nil {
		return nil, err
	}
	return c.parseMedia(data)
}

// Search runs a filtered search; results are enriched with the server's
// view of the user's interaction state.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) ([]domain.MediaItem, error) {
	payload := searchRequest{
		Filters:   make([]searchFilter, len(req.Filters)),
		SortField: req.SortField,
		SortOrder: string(req.SortOrder),
		Limit:     req.Limit,
		Offset:    req.Offset,
		ClientID:  req.ClientID,
	}
	for i, f := range req.Filters {
		payload.Filters[i] = searchFilter{Field: f.Field, Value: f.Value}
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/media/search", nil, payload, true)
	if err != nil {
		return nil, err
	}
	return c.parseSearchMedia(data)
}

// SetRating submits rating scores. The service echoes the submitted
// ratings; the echo is not consumed.
func (c *Client) SetRating(ctx context.Context, clientID string, ratings []domain.RatingEntry) error {
	payload := setRatingRequest{
		ClientID: clientID,
		Ratings:  make([]ratingEntry, len(ratings)),
	}
	for i, r := range ratings {
		payload.Ratings[i] = ratingEntry{MediaID: r.MediaID, Score: r.Score}
	}

	_, err := c.doRequest(ctx, http.MethodPost, "/ratings", nil, payload, true)
	return err
}

// DeleteRating removes the client's rating for one item.
func (c *Client) DeleteRating(ctx context.Context, clientID, mediaID string) error {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("media_id", mediaID)
	_, err := c.doRequest(ctx, http.MethodDelete, "/ratings", query, nil, true)
	return err
}

// AddWatchLater adds items to the watch-later list.
func (c *Client) AddWatchLater(ctx context.Context, clientID string, mediaIDs []string) error {
	payload := watchLaterRequest{ClientID: clientID, MediaIDs: mediaIDs}
	_, err := c.doRequest(ctx, http.MethodPost, "/watch-later", nil, payload, true)
	return err
}

// RemoveWatchLater removes one item from the watch-later list.
func (c *Client) RemoveWatchLater(ctx context.Context, clientID, mediaID string) error {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("media_id", mediaID)
	_, err := c.doRequest(ctx, http.MethodDelete, "/watch-later", query, nil, true)
	return err
}

// WatchLater returns one page of the watch-later list, enriched with
// interaction state.
func (c *Client) WatchLater(ctx context.Context, clientID string, page, size int) ([]domain.MediaItem, error) {
	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(size))
	data, err := c.doRequest(ctx, http.MethodGet, "/watch-later", query, nil, true)
	if err != nil {
		return nil, err
	}
	return c.parseSearchMedia(data)
}
