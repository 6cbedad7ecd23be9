package delay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/logiops360/logiops-cli/internal/bus"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
	"github.com/logiops360/logiops-cli/pkg/logiops/mocks"
)

// fortyItems returns 5 critical, 3 late, 12 borderline and 20 on-time records.
func fortyItems() []logiops.DelayRecord {
	var items []logiops.DelayRecord
	add := func(n int, r logiops.Risk) {
		for i := 0; i < n; i++ {
			items = append(items, logiops.DelayRecord{
				ShipmentID: fmt.Sprintf("%s-%d", r, i),
				Risk:       r,
			})
		}
	}
	add(5, logiops.RiskCritical)
	add(3, logiops.RiskLate)
	add(12, logiops.RiskBorderline)
	add(20, logiops.RiskOnTime)
	return items
}

func recorder(b *bus.Bus) *[]model.DelaySummary {
	var got []model.DelaySummary
	b.Subscribe(model.ChannelDelayList, func(p any) {
		got = append(got, p.(model.DelaySummary))
	})
	return &got
}

func TestLoad_CountsAndBroadcast(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{Items: fortyItems()}, nil).Once()

	b := bus.New()
	got := recorder(b)
	a := New(client, b, WithToken("tok"))

	require.NoError(t, a.Load(context.Background()))

	assert.Equal(t, model.StateIdle, a.State())
	assert.Empty(t, a.Err())
	assert.Equal(t, map[logiops.Risk]int{
		logiops.RiskOnTime:     20,
		logiops.RiskBorderline: 12,
		logiops.RiskLate:       3,
		logiops.RiskCritical:   5,
		logiops.RiskUnknown:    0,
	}, a.Counts())
	assert.Equal(t, []model.DelaySummary{{Total: 40, Late: 8}}, *got)
}

func TestSetFilter_BroadcastsVisibleList(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{Items: fortyItems()}, nil).Once()

	b := bus.New()
	got := recorder(b)
	a := New(client, b, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))

	require.NoError(t, a.SetFilter(Filter(logiops.RiskLate)))
	assert.Len(t, a.Filtered(), 3)
	assert.Equal(t, 40, len(a.Items()))

	// Same filter again does not rebroadcast.
	require.NoError(t, a.SetFilter(Filter(logiops.RiskLate)))
	require.NoError(t, a.SetFilter(FilterAll))

	assert.Equal(t, []model.DelaySummary{
		{Total: 40, Late: 8},
		{Total: 3, Late: 3},
		{Total: 40, Late: 8},
	}, *got)
	assert.Equal(t, 5, a.Counts()[logiops.RiskCritical])
}

func TestSetFilter_RejectsUnknown(t *testing.T) {
	a := New(mocks.NewMockClient(t), nil)
	err := a.SetFilter("bogus")
	require.Error(t, err)
	assert.Equal(t, FilterAll, a.Filter())
}

func TestLoad_NoTokenSkipsFetch(t *testing.T) {
	client := mocks.NewMockClient(t)
	a := New(client, nil)

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, model.StateIdle, a.State())
	client.AssertNotCalled(t, "DelayList", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoad_FailureKeepsPreviousList(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{Items: fortyItems()[:2]}, nil).Once()
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(nil, &logiops.APIError{Status: 500, Message: "model offline", Structured: true}).Once()

	b := bus.New()
	got := recorder(b)
	a := New(client, b, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))

	err := a.Refresh(context.Background())
	require.Error(t, err)
	var apiErr *logiops.APIError
	assert.True(t, errors.As(err, &apiErr))

	assert.Equal(t, model.StateFailed, a.State())
	assert.Equal(t, "model offline", a.Err())
	assert.Len(t, a.Items(), 2)
	assert.Len(t, *got, 1)
}

func TestExpand_GrowsPageSize(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{}, nil).Once()
	client.On("DelayList", mock.Anything, "tok", 60).
		Return(&logiops.DelayListResponse{}, nil).Once()

	a := New(client, nil, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))
	require.NoError(t, a.Expand(context.Background()))
	assert.Equal(t, 60, a.PageSize())
}

func TestSetToken_Reloads(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "new", 40).
		Return(&logiops.DelayListResponse{Items: fortyItems()[:1]}, nil).Once()

	a := New(client, nil)
	require.NoError(t, a.SetToken(context.Background(), "new"))
	// Unchanged token is a no-op.
	require.NoError(t, a.SetToken(context.Background(), "new"))
	// Clearing the token does not fetch.
	require.NoError(t, a.SetToken(context.Background(), ""))

	assert.Len(t, a.Items(), 1)
}

func TestLoad_SupersededResponseDiscarded(t *testing.T) {
	client := mocks.NewMockClient(t)
	release := make(chan struct{})
	started := make(chan struct{})

	client.On("DelayList", mock.Anything, "tok", 40).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&logiops.DelayListResponse{Items: fortyItems()[:1]}, nil).Once()
	client.On("DelayList", mock.Anything, "tok", 60).
		Return(&logiops.DelayListResponse{Items: fortyItems()[:3]}, nil).Once()

	a := New(client, nil, WithToken("tok"))

	done := make(chan error, 1)
	go func() { done <- a.Load(context.Background()) }()
	<-started

	require.NoError(t, a.Expand(context.Background()))
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first load did not return")
	}

	assert.Len(t, a.Items(), 3)
	assert.Equal(t, model.StateIdle, a.State())
}

func TestLoad_ListenerSeesLoadedState(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{}, nil).Once()

	b := bus.New()
	a := New(client, b, WithToken("tok"))
	var during model.ViewState
	b.Subscribe(model.ChannelDelayList, func(any) { during = a.State() })

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, model.StateLoaded, during)
	assert.Equal(t, model.StateIdle, a.State())
}

func TestDetail_FailureIsolated(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{Items: fortyItems()[:4]}, nil).Once()
	client.On("DelayDetail", mock.Anything, "tok", "S1").
		Return(nil, &logiops.APIError{Status: 404, Message: "not found", Structured: true}).Once()
	client.On("DelayDetail", mock.Anything, "tok", "S2").
		Return(logiops.DelayDetail{"shipment_id": "S2", "delta_h": 1.5}, nil).Once()

	a := New(client, nil, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))

	_, err := a.Detail(context.Background(), "S1")
	require.Error(t, err)
	assert.Equal(t, "not found", a.DetailErr())
	assert.Empty(t, a.Err())
	assert.Len(t, a.Items(), 4)

	d, err := a.Detail(context.Background(), "S2")
	require.NoError(t, err)
	assert.Equal(t, "S2", d.ShipmentID())
	assert.Empty(t, a.DetailErr())
}

func TestView(t *testing.T) {
	client := mocks.NewMockClient(t)
	items := []logiops.DelayRecord{
		{ShipmentID: "A", Risk: logiops.RiskLate, DeltaH: numconv.Of(2.5)},
		{ShipmentID: "B", Risk: logiops.RiskOnTime, EtaPredH: numconv.Of(10.0), SLAHours: numconv.Of(12.0)},
		{ShipmentID: "C", Risk: logiops.RiskUnknown},
	}
	client.On("DelayList", mock.Anything, "tok", 40).
		Return(&logiops.DelayListResponse{Items: items}, nil).Once()

	a := New(client, nil, WithToken("tok"))
	require.NoError(t, a.Load(context.Background()))

	v := a.View()
	require.Len(t, v.Tiles, 3)
	assert.Equal(t, "2.50 h", v.Tiles[0].DelayText)
	assert.Equal(t, "0.00 h", v.Tiles[1].DelayText)
	assert.Equal(t, "—", v.Tiles[2].DelayText)
	assert.Nil(t, v.Tiles[2].DelayH)
	assert.Equal(t, model.DelaySummary{Total: 3, Late: 1}, v.Summary)
	assert.Equal(t, 3, v.Loaded)
}
