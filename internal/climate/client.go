package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dylanlt/poverty-explorer/internal/cell"
)

// CellClimate is the upstream service's per-cell climate summary.
type CellClimate struct {
	CellID  string              `json:"cell_id"`
	Profile cell.ClimateProfile `json:"profile"`
}

// CellContext is the upstream service's per-cell socioeconomic summary.
type CellContext struct {
	CellID  string              `json:"cell_id"`
	Factors cell.ContextFactors `json:"factors"`
}

// CellSeries is the raw reanalysis payload for one cell, served by
// upstreams that do not precompute profiles: daily mean temperatures over
// the reference year plus annual precipitation and humidity.
type CellSeries struct {
	CellID        string    `json:"cell_id"`
	DailyMeans    []float64 `json:"daily_mean_temps"`
	Precipitation float64   `json:"annual_precipitation"`
	Humidity      float64   `json:"avg_humidity"`
}

type Client interface {
	GetCellClimate(ctx context.Context, cellID string) (*CellClimate, error)
	GetCellContext(ctx context.Context, cellID string) (*CellContext, error)
	GetCellSeries(ctx context.Context, cellID string) (*CellSeries, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("climate %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

func (c *HTTPClient) GetCellClimate(ctx context.Context, cellID string) (*CellClimate, error) {
	data, err := c.doReq(ctx, "GET", "/v1/cells/"+cellID+"/climate")
	if err != nil {
		return nil, err
	}
	var cc CellClimate
	if err := json.Unmarshal(data, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *HTTPClient) GetCellContext(ctx context.Context, cellID string) (*CellContext, error) {
	data, err := c.doReq(ctx, "GET", "/v1/cells/"+cellID+"/context")
	if err != nil {
		return nil, err
	}
	var cc CellContext
	if err := json.Unmarshal(data, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *HTTPClient) GetCellSeries(ctx context.Context, cellID string) (*CellSeries, error) {
	data, err := c.doReq(ctx, "GET", "/v1/cells/"+cellID+"/series")
	if err != nil {
		return nil, err
	}
	var cs CellSeries
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}
