package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/community-cli/internal/resilience"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// searchFieldMask lists the fields requested from places:searchText.
const searchFieldMask = "places.id,places.displayName,places.rating,places.userRatingCount,places.formattedAddress,places.location"

// detailsFieldMask lists the fields requested from the place details endpoint.
const detailsFieldMask = "id,displayName,formattedAddress,rating,userRatingCount,primaryType,types,location,generativeSummary"

// Client performs Google Places API operations.
type Client interface {
	SearchText(ctx context.Context, req SearchTextRequest) (*SearchTextResponse, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// SearchTextRequest is the request body for places:searchText.
type SearchTextRequest struct {
	TextQuery      string        `json:"textQuery"`
	MaxResultCount int           `json:"maxResultCount,omitempty"`
	LocationBias   *LocationBias `json:"locationBias,omitempty"`
}

// LocationBias biases results toward a circle.
type LocationBias struct {
	Circle Circle `json:"circle"`
}

// Circle is a center point plus radius in meters.
type Circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchTextResponse is the response from places:searchText.
type SearchTextResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by text search.
type Place struct {
	ID               string      `json:"id"`
	DisplayName      DisplayName `json:"displayName"`
	Rating           float64     `json:"rating"`
	UserRatingCount  int         `json:"userRatingCount"`
	FormattedAddress string      `json:"formattedAddress"`
	Location         *LatLng     `json:"location,omitempty"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// PlaceDetails is the response from GET /places/{id}.
type PlaceDetails struct {
	ID                string             `json:"id"`
	DisplayName       DisplayName        `json:"displayName"`
	FormattedAddress  string             `json:"formattedAddress"`
	Rating            float64            `json:"rating"`
	UserRatingCount   int                `json:"userRatingCount"`
	PrimaryType       string             `json:"primaryType"`
	Types             []string           `json:"types"`
	Location          *LatLng            `json:"location,omitempty"`
	GenerativeSummary *GenerativeSummary `json:"generativeSummary,omitempty"`
}

// GenerativeSummary holds the AI-generated overview of a place.
type GenerativeSummary struct {
	Overview LocalizedText `json:"overview"`
}

// LocalizedText is a text value with its language code.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// SummaryText returns the generative overview text, or "".
func (d *PlaceDetails) SummaryText() string {
	if d == nil || d.GenerativeSummary == nil {
		return ""
	}
	return d.GenerativeSummary.Overview.Text
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchText(ctx context.Context, req SearchTextRequest) (*SearchTextResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-FieldMask", searchFieldMask)

	var result SearchTextResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, eris.New("google: place id is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/"+url.PathEscape(placeID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	httpReq.Header.Set("X-Goog-FieldMask", detailsFieldMask)

	var result PlaceDetails
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends the request and decodes a 200 response into out. Retryable
// statuses come back as *resilience.TransientError.
func (c *httpClient) do(req *http.Request, out any) error {
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, truncate(respBody, 512))
		return resilience.HTTPError(statusErr, resp.StatusCode, resp.Header)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "google: unmarshal response")
	}
	return nil
}

// truncate bounds an error body so provider HTML pages stay out of logs.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
