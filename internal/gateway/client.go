// Package gateway is the HTTP client for the remote linear referencing
// REST service: the LRS extension operations plus generic layer queries.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-lrs/internal/lrs"
)

// Client talks to one LRS-enabled map service. lrsURL is the LRS server
// extension resource; mapURL is the map service the network and event
// layers live under, used for generic layer queries.
type Client struct {
	lrsURL string
	mapURL string
	http   *http.Client
	log    *slog.Logger
}

// New creates a client. httpClient may be nil to use a default client;
// logger may be nil to use the default logger.
func New(lrsURL, mapURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		lrsURL: strings.TrimRight(lrsURL, "/"),
		mapURL: strings.TrimRight(mapURL, "/"),
		http:   httpClient,
		log:    logger,
	}
}

// ServiceError is the structured error envelope the service returns.
type ServiceError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg += "\n" + strings.Join(e.Details, "\n")
	}
	return msg
}

// ServiceConfig fetches the network and event layer metadata for the
// whole service in one call.
func (c *Client) ServiceConfig(ctx context.Context) (*lrs.ServiceConfig, error) {
	var cfg lrs.ServiceConfig
	if err := c.do(ctx, c.lrsURL+"/layers", nil, &cfg); err != nil {
		return nil, fmt.Errorf("fetch service config: %w", err)
	}
	return &cfg, nil
}

// MeasureToGeometry converts route/measure locations to geometry. The
// response envelope's spatial reference is applied to each nested
// geometry, which the server does not repeat per location.
func (c *Client) MeasureToGeometry(ctx context.Context, networkID int, params MeasureToGeometryParams) (*MeasureToGeometryResponse, error) {
	form := url.Values{}
	if err := setJSON(form, "locations", params.Locations); err != nil {
		return nil, err
	}
	if params.OutSR != nil {
		if err := setJSON(form, "outSR", params.OutSR); err != nil {
			return nil, err
		}
	}

	var resp MeasureToGeometryResponse
	if err := c.do(ctx, c.networkURL(networkID, "measureToGeometry"), form, &resp); err != nil {
		return nil, fmt.Errorf("measure to geometry: %w", err)
	}
	for i := range resp.Locations {
		if g := resp.Locations[i].Geometry; g != nil {
			g.SpatialReference = resp.SpatialReference
		}
	}
	return &resp, nil
}

// GeometryToMeasure converts map points to route/measure candidates.
// Nested result geometries inherit the envelope spatial reference.
func (c *Client) GeometryToMeasure(ctx context.Context, networkID int, params GeometryToMeasureParams) (*GeometryToMeasureResponse, error) {
	form := url.Values{}
	if err := setJSON(form, "locations", params.Locations); err != nil {
		return nil, err
	}
	if params.Tolerance > 0 {
		form.Set("tolerance", strconv.FormatFloat(params.Tolerance, 'f', -1, 64))
	}
	if params.InSR != nil {
		if err := setJSON(form, "inSR", params.InSR); err != nil {
			return nil, err
		}
	}

	var resp GeometryToMeasureResponse
	if err := c.do(ctx, c.networkURL(networkID, "geometryToMeasure"), form, &resp); err != nil {
		return nil, fmt.Errorf("geometry to measure: %w", err)
	}
	for i := range resp.Locations {
		for j := range resp.Locations[i].Results {
			if g := resp.Locations[i].Results[j].Geometry; g != nil {
				g.SpatialReference = resp.SpatialReference
			}
		}
	}
	return &resp, nil
}

// QueryAttributeSet runs the multi-layer attribute query for a location.
// Feature geometries inherit the envelope spatial reference.
func (c *Client) QueryAttributeSet(ctx context.Context, networkID int, params QueryAttributeSetParams) (*FeatureSet, error) {
	form := url.Values{}
	if err := setJSON(form, "locations", params.Locations); err != nil {
		return nil, err
	}
	if err := setJSON(form, "attributeSet", params.AttributeSet); err != nil {
		return nil, err
	}
	if params.OutSR != nil {
		if err := setJSON(form, "outSR", params.OutSR); err != nil {
			return nil, err
		}
	}

	var fs FeatureSet
	if err := c.do(ctx, c.networkURL(networkID, "queryAttributeSet"), form, &fs); err != nil {
		return nil, fmt.Errorf("query attribute set: %w", err)
	}
	for i := range fs.Features {
		if g := fs.Features[i].Geometry; g != nil {
			g.SpatialReference = fs.SpatialReference
		}
	}
	return &fs, nil
}

// Query runs a generic query against one layer of the map service.
func (c *Client) Query(ctx context.Context, layerID int, q Query) (*FeatureSet, error) {
	form := url.Values{}
	if q.Where != "" {
		form.Set("where", q.Where)
	}
	if q.Geometry != nil {
		if err := setJSON(form, "geometry", q.Geometry); err != nil {
			return nil, err
		}
		form.Set("geometryType", lrs.GeometryEnvelope)
		form.Set("spatialRel", "esriSpatialRelIntersects")
	}
	if len(q.OutFields) > 0 {
		form.Set("outFields", strings.Join(q.OutFields, ","))
	}
	form.Set("returnGeometry", strconv.FormatBool(q.ReturnGeometry))
	if q.ReturnM {
		form.Set("returnM", "true")
	}
	if q.ReturnDistinctValues {
		form.Set("returnDistinctValues", "true")
	}
	if len(q.OrderByFields) > 0 {
		form.Set("orderByFields", strings.Join(q.OrderByFields, ","))
	}
	if q.OutSR != nil {
		if err := setJSON(form, "outSR", q.OutSR); err != nil {
			return nil, err
		}
	}
	if q.MaxAllowableOffset != nil {
		form.Set("maxAllowableOffset", strconv.FormatFloat(*q.MaxAllowableOffset, 'f', -1, 64))
	}

	var fs FeatureSet
	endpoint := fmt.Sprintf("%s/%d/query", c.mapURL, layerID)
	if err := c.do(ctx, endpoint, form, &fs); err != nil {
		return nil, fmt.Errorf("query layer %d: %w", layerID, err)
	}
	return &fs, nil
}

func (c *Client) networkURL(networkID int, operation string) string {
	return fmt.Sprintf("%s/networkLayers/%d/%s", c.lrsURL, networkID, operation)
}

// do posts a form to the service and decodes the JSON response. The
// service reports failures inside a 200 response as an error envelope,
// which is decoded into a ServiceError. Single attempt, no retries.
func (c *Client) do(ctx context.Context, rawURL string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("f", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("service request failed", "url", rawURL, "status", resp.StatusCode)
		return fmt.Errorf("service returned HTTP %d", resp.StatusCode)
	}

	var envelope struct {
		Error *ServiceError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		c.log.Error("service error", "url", rawURL,
			"code", envelope.Error.Code, "message", envelope.Error.Message)
		return envelope.Error
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func setJSON(form url.Values, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	form.Set(key, string(b))
	return nil
}
