// Package geocoding resolves free-text locations into points through the
// Mapbox forward geocoding API.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"course-market/internal/domain"
)

// DefaultBaseURL is the public Mapbox API host.
const DefaultBaseURL = "https://api.mapbox.com"

// ErrNoMatch is returned when the provider finds nothing for the query.
var ErrNoMatch = errors.New("no geocoding match")

// Geocoder resolves a location to the best matching point.
type Geocoder interface {
	Forward(ctx context.Context, query string) (domain.Geometry, error)
}

// Config describes how to reach the provider.
type Config struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *logrus.Logger
}

type mapboxClient struct {
	token   string
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewMapbox returns a Mapbox backed Geocoder.
func NewMapbox(cfg Config) (Geocoder, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("mapbox access token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &mapboxClient{
		token:   cfg.AccessToken,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
		logger:  cfg.Logger,
	}, nil
}

type forwardResponse struct {
	Features []struct {
		PlaceName string          `json:"place_name"`
		Geometry  domain.Geometry `json:"geometry"`
	} `json:"features"`
}

// Forward asks for the single best match of query.
func (c *mapboxClient) Forward(ctx context.Context, query string) (domain.Geometry, error) {
	errb := oops.Code("GEOCODE_REQUEST_FAILED").With("query", query)

	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Geometry{}, errb.Wrapf(err, "build geocoding request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Geometry{}, errb.Wrapf(err, "call geocoding api")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Geometry{}, errb.With("status", resp.StatusCode).
			Errorf("geocoding api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload forwardResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Geometry{}, oops.Code("GEOCODE_DECODE_FAILED").With("query", query).Wrap(err)
	}
	if len(payload.Features) == 0 {
		return domain.Geometry{}, ErrNoMatch
	}

	best := payload.Features[0]
	c.logger.WithFields(logrus.Fields{
		"query": query,
		"place": best.PlaceName,
	}).Debug("geocoded location")
	return best.Geometry, nil
}
