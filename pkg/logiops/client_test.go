package logiops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestDelayList(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/ml/delay/list", r.URL.Path)
		assert.Equal(t, "60", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"items": [
			{"shipment_id": "SH1", "carrier": "DHL", "distance_km": "480,5", "eta_pred_h": 30.2,
			 "sla_hours": null, "delta_h": 2.5, "risk": "retard", "ship_dt": "2024-03-01T10:15:00"},
			{"shipment_id": "SH2", "risk": "mystery"}
		]}`))
	})

	resp, err := c.DelayList(context.Background(), "tok", 60)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	first := resp.Items[0]
	assert.Equal(t, "SH1", first.ShipmentID)
	assert.Equal(t, RiskLate, first.Risk)
	assert.Equal(t, 480.5, first.DistanceKm.OrZero())
	_, ok := first.SLAHours.Float()
	assert.False(t, ok)
	assert.Equal(t, "2024-03-01 10:15", first.ShipTime())

	assert.Equal(t, RiskUnknown, resp.Items[1].Risk)
}

func TestDelayList_DefaultLimitAndNoToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40", r.URL.Query().Get("limit"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"items": []}`))
	})

	resp, err := c.DelayList(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestAnomalyDetail_Query(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ml/anom/detail", r.URL.Path)
		assert.Equal(t, "SH1", r.URL.Query().Get("shipment_id"))
		assert.Equal(t, "17", r.URL.Query().Get("event_id"))
		_, _ = w.Write([]byte(`{"shipment_id": "SH1", "carrier": "UPS", "severity": "haute",
			"phases": [{"event_id": 17, "phase": "picking", "duration_h": "5", "p90_duration_h": 3, "is_anom_p90": 0}]}`))
	})

	d, err := c.AnomalyDetail(context.Background(), "tok", "SH1", 17)
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, d.Severity)
	require.Len(t, d.Phases, 1)
	assert.Equal(t, 5.0, d.Phases[0].DurationH.OrZero())
}

func TestPredictETA_Body(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ETAPredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "PARIS", req.Items[0].Origin)
		assert.Equal(t, 480.0, req.Items[0].DistanceKm)

		_, _ = w.Write([]byte(`{"eta_hours": [31.5], "n": 1, "model_version": "v3"}`))
	})

	resp, err := c.PredictETA(context.Background(), "tok", []ETAFeatures{{Origin: "PARIS", DistanceKm: 480}})
	require.NoError(t, err)
	assert.Equal(t, []float64{31.5}, resp.EtaHours)
	assert.Equal(t, "v3", resp.ModelVersion)
}

func TestLogin_NoAuthHeader(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "transport", creds.TypeProfil)
		_, _ = w.Write([]byte(`{"token": "jwt", "id": "u1", "nom": "Ana", "email": "a@x.fr", "type_profil": "transport"}`))
	})

	resp, err := c.Login(context.Background(), Credentials{Email: "a@x.fr", Password: "pw", TypeProfil: "transport"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, "Ana", resp.Nom)
}

func TestErrors(t *testing.T) {
	longHTML := "<!doctype html><html>" + strings.Repeat("x", 500) + "</html>"

	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "structured_message",
			status:  http.StatusNotFound,
			body:    `{"message": "shipment_id introuvable"}`,
			wantMsg: "shipment_id introuvable",
		},
		{
			name:    "structured_without_message",
			status:  http.StatusBadRequest,
			body:    `{"error": "boom"}`,
			wantMsg: "HTTP 400",
		},
		{
			name:    "empty_body",
			status:  http.StatusBadGateway,
			body:    "",
			wantMsg: "HTTP 502",
		},
		{
			name:    "html_error_page",
			status:  http.StatusInternalServerError,
			body:    longHTML,
			wantMsg: "HTTP 500 • " + longHTML[:200] + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.DelayDetail(context.Background(), "tok", "SH1")
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, IsStatus(err, tt.status))
			assert.Equal(t, tt.wantMsg, UserMessage(err))
		})
	}
}

func TestSuccessWithoutJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	resp, err := c.KPICounters(context.Background(), "tok")
	require.NoError(t, err)
	_, ok := resp.InProgress.Float()
	assert.False(t, ok)
}

func TestMalformedSuccessShape(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[1, 2]`))
	})

	_, err := c.DelayList(context.Background(), "tok", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestContextCancellation(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.KPICounters(ctx, "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient(WithRateLimit(5, 1))
	hc := c.(*httpClient)
	require.NotNil(t, hc.limiter)
	assert.Equal(t, 1, hc.limiter.Burst())

	c = NewClient(WithRateLimit(0, 1))
	assert.Nil(t, c.(*httpClient).limiter)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	hc := NewClient().(*httpClient)
	assert.Equal(t, defaultBaseURL, hc.baseURL)
	assert.Equal(t, defaultUserAgent, hc.userAgent)
	assert.NotNil(t, hc.http)

	custom := &http.Client{}
	hc = NewClient(WithHTTPClient(custom), WithUserAgent("ua")).(*httpClient)
	assert.Equal(t, custom, hc.http)
	assert.Equal(t, "ua", hc.userAgent)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "request canceled", UserMessage(context.Canceled))
	assert.Equal(t, "network error: the API could not be reached", UserMessage(assert.AnError))
}

func TestExcerpt_Runes(t *testing.T) {
	s := strings.Repeat("é", 250)
	got := excerpt(s)
	assert.Equal(t, 200, len([]rune(got)))
	assert.Equal(t, "short", excerpt("short"))
}

func TestDelayDetail_Accessors(t *testing.T) {
	d := DelayDetail{"shipment_id": "SH1", "sla_h": "20,5", "risk": "limite", "carrier": "GLS"}
	assert.Equal(t, "SH1", d.ShipmentID())
	assert.Equal(t, "GLS", d.Carrier())
	assert.Equal(t, RiskBorderline, d.Risk())
	assert.Equal(t, 20.5, d.SLAHours().OrZero())

	_, ok := DelayDetail{}.SLAHours().Float()
	assert.False(t, ok)
	assert.Equal(t, RiskUnknown, DelayDetail{"risk": 3}.Risk())
}

func TestCarrierCandidate_Reliability(t *testing.T) {
	var resp RecommendResponse
	require.NoError(t, json.Unmarshal([]byte(`{"best": {"carrier": "DHL", "risk": 0.12, "score": "0,4"}}`), &resp))
	require.NotNil(t, resp.Best)
	rel, ok := resp.Best.Reliability()
	require.True(t, ok)
	assert.InDelta(t, 0.88, rel, 1e-9)
}
