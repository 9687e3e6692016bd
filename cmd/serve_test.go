package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/geo"
	"github.com/sells-group/community-cli/internal/orchestrator"
)

type stubProvider struct {
	data *community.Data
	err  error
	last community.Request
}

func (s *stubProvider) Name() string { return "places" }

func (s *stubProvider) ByZip(_ context.Context, req community.Request) (*community.Data, error) {
	s.last = req
	return s.data, s.err
}

func newTestRouter(t *testing.T, p *stubProvider) http.Handler {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	reg, err := orchestrator.NewRegistry("places", p, nil)
	require.NoError(t, err)
	return newRouter(orchestrator.New(reg, cat, geo.NewResolver(geo.SampleLoader())))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServe_Health(t *testing.T) {
	w := get(t, newTestRouter(t, &stubProvider{}), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServe_Community(t *testing.T) {
	data := community.NewData()
	data.Categories["dining"] = "- Franklin Barbecue"
	p := &stubProvider{data: data}
	h := newTestRouter(t, p)

	w := get(t, h, "/v1/community/78701?audience=growing_families&categories=dining,%20parks_outdoors&service_area=Round+Rock,TX&force=true")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got community.Data
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "- Franklin Barbecue", got.Categories["dining"])

	assert.Equal(t, "78701", p.last.Zip)
	assert.Equal(t, "growing_families", p.last.Audience)
	assert.Equal(t, []string{"Round Rock,TX"}, p.last.ServiceAreas)
	assert.Equal(t, []string{"dining", "parks_outdoors"}, p.last.Options.Categories)
	assert.True(t, p.last.Options.ForceRefresh)
}

func TestServe_CommunityStatuses(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		p      *stubProvider
		status int
	}{
		{"invalid zip", "/v1/community/7870A", &stubProvider{}, http.StatusBadRequest},
		{"short zip", "/v1/community/787", &stubProvider{}, http.StatusBadRequest},
		{"no content", "/v1/community/99999", &stubProvider{err: community.ErrNoContent}, http.StatusNotFound},
		{"nil result", "/v1/community/78701", &stubProvider{}, http.StatusNotFound},
		{"provider error", "/v1/community/78701", &stubProvider{err: errors.New("quota")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, newTestRouter(t, tt.p), tt.path)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestServe_Context(t *testing.T) {
	data := community.NewData()
	data.Categories["dining"] = "- Franklin Barbecue"
	data.SeasonalSections["pumpkin patches"] = "- Sweet Berry Farm"
	h := newTestRouter(t, &stubProvider{data: data})

	w := get(t, h, "/v1/community/78701/context?user=u1&categories=dining,parks_outdoors")
	require.Equal(t, http.StatusOK, w.Code)

	var got orchestrator.ContentContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"dining", "parks_outdoors"}, got.CommunityCategoryKeys)
	require.NotNil(t, got.CommunityData)
	assert.Equal(t, "- Franklin Barbecue", got.CommunityData.Categories["dining"])
	assert.Equal(t, community.NoneFound, got.CommunityData.Categories["parks_outdoors"])
	assert.Equal(t, "- Sweet Berry Farm", got.SeasonalExtraSections["pumpkin patches"])
	assert.Empty(t, got.CityDescription)
}

func TestServe_ContextProviderFailureStillRenders(t *testing.T) {
	h := newTestRouter(t, &stubProvider{err: errors.New("quota")})

	w := get(t, h, "/v1/community/78701/context?categories=dining")
	require.Equal(t, http.StatusOK, w.Code)

	var got orchestrator.ContentContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, community.NoneFound, got.CommunityData.Categories["dining"])
}

func TestServe_CORS(t *testing.T) {
	h := newTestRouter(t, &stubProvider{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSplitParam(t *testing.T) {
	assert.Nil(t, splitParam(""))
	assert.Equal(t, []string{"a", "b"}, splitParam(" a, ,b "))
}

func TestValidZip(t *testing.T) {
	assert.True(t, validZip("78701"))
	assert.False(t, validZip("7870"))
	assert.False(t, validZip("787011"))
	assert.False(t, validZip("7870x"))
}
