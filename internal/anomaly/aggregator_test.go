package anomaly

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/pkg/logiops"
	"github.com/logiops360/logiops-cli/pkg/logiops/mocks"
)

func sampleEvents() []logiops.AnomalyEvent {
	return []logiops.AnomalyEvent{
		event("S1", 11, logiops.SeverityHigh, 5.0, 4.0),
		event("S1", 12, logiops.SeverityHigh, 6.0, 4.0),
		event("S1", 13, logiops.SeverityLow, 4.5, 4.0),
		event("S2", 21, logiops.SeverityLow, 3.0, 2.0),
		event("S3", 31, logiops.SeverityMedium, 3.0, 2.0),
	}
}

func recorder(b *bus.Bus) *[]model.AnomalySummary {
	var got []model.AnomalySummary
	b.Subscribe(model.ChannelAnomalyList, func(p any) {
		got = append(got, p.(model.AnomalySummary))
	})
	return &got
}

func newLoaded(t *testing.T, b bus.Publisher) (*Aggregator, *mocks.MockClient) {
	t.Helper()
	client := mocks.NewMockClient(t)
	client.On("AnomalyList", mock.Anything, "tok", 30).
		Return(&logiops.AnomalyListResponse{Items: sampleEvents()}, nil).Once()
	a := New(client, b, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))
	return a, client
}

func TestLoad_Broadcast(t *testing.T) {
	b := bus.New()
	got := recorder(b)
	a, _ := newLoaded(t, b)

	assert.Equal(t, model.StateIdle, a.State())
	require.Len(t, *got, 1)
	s := (*got)[0]
	assert.Equal(t, 3, s.Shipments.Total)
	assert.Equal(t, 5, s.Events.Total)
	assert.Equal(t, map[string]int{"1": 2, "2": 0, "3": 1, "4": 0, "5+": 0}, s.Shipments.ByCount)
}

func TestSetSeverity_RegroupsAndBroadcasts(t *testing.T) {
	b := bus.New()
	got := recorder(b)
	a, _ := newLoaded(t, b)

	require.NoError(t, a.SetSeverity(SeverityFilter(logiops.SeverityHigh)))
	groups := a.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)

	require.Len(t, *got, 2)
	assert.Equal(t, 1, (*got)[1].Shipments.Total)
	assert.Equal(t, 2, (*got)[1].Events.Total)

	// Unchanged severity does not rebroadcast.
	require.NoError(t, a.SetSeverity(SeverityFilter(logiops.SeverityHigh)))
	assert.Len(t, *got, 2)

	assert.Error(t, a.SetSeverity("extreme"))
}

func TestSetCountBucket_DoesNotAffectBroadcast(t *testing.T) {
	b := bus.New()
	got := recorder(b)
	a, _ := newLoaded(t, b)

	require.NoError(t, a.SetCountBucket(model.Bucket1))
	visible := a.Visible()
	require.Len(t, visible, 2)
	for _, g := range visible {
		assert.Equal(t, 1, g.Count)
	}

	assert.Len(t, *got, 1)
	assert.Equal(t, 3, a.Summary().Shipments.Total)
	assert.Len(t, a.View().Groups, 2)
	assert.Equal(t, 5, a.View().Loaded)
}

func TestLoad_Failure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("AnomalyList", mock.Anything, "tok", 30).
		Return(nil, &logiops.APIError{Status: 502, Excerpt: "<html>", Structured: false}).Once()

	a := New(client, nil, WithToken("tok"))
	require.Error(t, a.Load(context.Background()))
	assert.Equal(t, model.StateFailed, a.State())
	assert.Equal(t, "HTTP 502 • <html>…", a.Err())
	assert.Empty(t, a.Events())
}

func TestExpand(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("AnomalyList", mock.Anything, "tok", 50).
		Return(&logiops.AnomalyListResponse{}, nil).Once()

	a := New(client, nil, WithToken("tok"))
	require.NoError(t, a.Expand(context.Background()))
	assert.Equal(t, 50, a.PageSize())
}

func TestDetail_UsesFirstEvent(t *testing.T) {
	a, client := newLoaded(t, nil)
	client.On("AnomalyDetail", mock.Anything, "tok", "S1", int64(11)).
		Return(sh1Detail(), nil).Once()

	d, err := a.DetailFor(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, int64(11), d.SelectedEventID)
	assert.Equal(t, 2, d.AnomalousCount)
	assert.Same(t, d, a.LastDetail())
}

func TestDetail_Errors(t *testing.T) {
	a, client := newLoaded(t, nil)

	_, err := a.DetailFor(context.Background(), "nope")
	assert.True(t, eris.Is(err, ErrUnknownShipment))

	client.On("AnomalyDetail", mock.Anything, "tok", "S2", int64(21)).
		Return(nil, &logiops.APIError{Status: 404, Message: "introuvable", Structured: true}).Once()
	_, err = a.DetailFor(context.Background(), "S2")
	require.Error(t, err)
	assert.Equal(t, "introuvable", a.DetailErr())
	assert.Empty(t, a.Err())
	assert.Len(t, a.Events(), 5)
}
