// Package logiops provides a client for the LogiOps business and ML inference API.
package logiops

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://127.0.0.1:8000"
	defaultUserAgent = "logiops-cli"

	// DefaultDelayLimit is the server's default page size for the delay list.
	DefaultDelayLimit = 40
	// DefaultAnomalyLimit is the server's default page size for the anomaly list.
	DefaultAnomalyLimit = 30
	// DefaultShipmentIDLimit is the default number of shipment ids listed for ETA.
	DefaultShipmentIDLimit = 200
)

// Client exposes one method per API capability. Every call takes the bearer
// token of the current session; an empty token sends no Authorization header.
type Client interface {
	// PredictETA runs the ETA model on feature vectors.
	PredictETA(ctx context.Context, token string, items []ETAFeatures) (*ETAPredictResponse, error)
	// PredictETAByID runs the ETA model on a stored shipment.
	PredictETAByID(ctx context.Context, token, shipmentID string) (*ETAByIDResponse, error)
	// ETADistincts lists categorical values for the ETA form.
	ETADistincts(ctx context.Context, token string) (*ETADistincts, error)
	// ETAShipmentIDs lists recent shipment ids, newest first.
	ETAShipmentIDs(ctx context.Context, token string, limit int) (*ShipmentIDsResponse, error)
	// CarrierDistincts lists lane values for the carrier form.
	CarrierDistincts(ctx context.Context, token string) (*CarrierDistincts, error)
	// RecommendCarrier scores carriers for a lane.
	RecommendCarrier(ctx context.Context, token string, req RecommendRequest) (*RecommendResponse, error)
	// DelayList lists recent shipments with their delay band.
	DelayList(ctx context.Context, token string, limit int) (*DelayListResponse, error)
	// DelayDetail fetches one shipment's feature row and prediction.
	DelayDetail(ctx context.Context, token, shipmentID string) (DelayDetail, error)
	// AnomalyList lists recent P90 anomalous events.
	AnomalyList(ctx context.Context, token string, limit int) (*AnomalyListResponse, error)
	// AnomalyDetail fetches one anomalous event and its shipment's phases.
	AnomalyDetail(ctx context.Context, token, shipmentID string, eventID int64) (*AnomalyDetail, error)
	// KPICounters fetches the server-side dashboard counters.
	KPICounters(ctx context.Context, token string) (*KPICounters, error)
	// Login authenticates and returns a session token.
	Login(ctx context.Context, creds Credentials) (*AuthResponse, error)
	// Signup creates an account and returns a session token.
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
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

// WithRateLimit makes every request wait for a token from a limiter with the
// given rate and burst. Requests are never retried.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) {
		if r > 0 {
			c.limiter = rate.NewLimiter(r, burst)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a LogiOps API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) PredictETA(ctx context.Context, token string, items []ETAFeatures) (*ETAPredictResponse, error) {
	var out ETAPredictResponse
	if err := c.do(ctx, "eta predict", http.MethodPost, "/api/ml/eta/predict", nil, token, ETAPredictRequest{Items: items}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) PredictETAByID(ctx context.Context, token, shipmentID string) (*ETAByIDResponse, error) {
	q := url.Values{"shipment_id": {shipmentID}}
	var out ETAByIDResponse
	if err := c.do(ctx, "eta predict by id", http.MethodGet, "/api/ml/eta/predict-by-id", q, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ETADistincts(ctx context.Context, token string) (*ETADistincts, error) {
	var out ETADistincts
	if err := c.do(ctx, "eta distincts", http.MethodGet, "/api/ml/eta/distincts", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ETAShipmentIDs(ctx context.Context, token string, limit int) (*ShipmentIDsResponse, error) {
	if limit <= 0 {
		limit = DefaultShipmentIDLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out ShipmentIDsResponse
	if err := c.do(ctx, "eta shipments", http.MethodGet, "/api/ml/eta/shipments", q, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) CarrierDistincts(ctx context.Context, token string) (*CarrierDistincts, error) {
	var out CarrierDistincts
	if err := c.do(ctx, "carrier distincts", http.MethodGet, "/api/ml/reco-simple/distincts", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) RecommendCarrier(ctx context.Context, token string, req RecommendRequest) (*RecommendResponse, error) {
	var out RecommendResponse
	if err := c.do(ctx, "carrier recommend", http.MethodPost, "/api/ml/reco-simple/recommend", nil, token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) DelayList(ctx context.Context, token string, limit int) (*DelayListResponse, error) {
	if limit <= 0 {
		limit = DefaultDelayLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out DelayListResponse
	if err := c.do(ctx, "delay list", http.MethodGet, "/api/ml/delay/list", q, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) DelayDetail(ctx context.Context, token, shipmentID string) (DelayDetail, error) {
	q := url.Values{"shipment_id": {shipmentID}}
	out := DelayDetail{}
	if err := c.do(ctx, "delay detail", http.MethodGet, "/api/ml/delay/detail", q, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) AnomalyList(ctx context.Context, token string, limit int) (*AnomalyListResponse, error) {
	if limit <= 0 {
		limit = DefaultAnomalyLimit
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out AnomalyListResponse
	if err := c.do(ctx, "anomaly list", http.MethodGet, "/api/ml/anom/list", q, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) AnomalyDetail(ctx context.Context, token, shipmentID string, eventID int64) (*AnomalyDetail, error) {
	q := url.Values{
		"shipment_id": {shipmentID},
		"event_id":    {strconv.FormatInt(eventID, 10)},
	}
	var out AnomalyDetail
	if err := c.do(ctx, "anomaly detail", http.MethodGet, "/api/ml/anom/detail", q, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) KPICounters(ctx context.Context, token string) (*KPICounters, error) {
	var out KPICounters
	if err := c.do(ctx, "kpi counters", http.MethodGet, "/api/kpi/counters", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", nil, "", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", nil, "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request and decodes the body into out. The body is parsed
// as JSON whatever the status; a non-JSON body on success leaves out as is.
func (c *httpClient) do(ctx context.Context, op, method, path string, query url.Values, token string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrapf(err, "logiops: %s: rate limit wait", op)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return eris.Wrapf(err, "logiops: %s: marshal request", op)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return eris.Wrapf(err, "logiops: %s: create request", op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "logiops: %s: send request", op)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "logiops: %s: read response", op)
	}

	return decodeResponse(op, resp.StatusCode, respBody, out)
}

func decodeResponse(op string, status int, body []byte, out any) error {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 {
		if !ok {
			return &APIError{Op: op, Status: status, Structured: true}
		}
		return nil
	}

	if !json.Valid(trimmed) {
		if !ok {
			return &APIError{Op: op, Status: status, Excerpt: excerpt(string(body))}
		}
		return nil
	}

	if !ok {
		var msg struct {
			Message any `json:"message"`
		}
		_ = json.Unmarshal(trimmed, &msg)
		s, _ := msg.Message.(string)
		return &APIError{Op: op, Status: status, Message: s, Structured: true}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return eris.Wrapf(err, "logiops: %s: unmarshal response", op)
	}
	return nil
}
