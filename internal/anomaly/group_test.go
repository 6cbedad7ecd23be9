package anomaly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

func event(ship string, id int64, sev logiops.Severity, dur, p90 any) logiops.AnomalyEvent {
	return logiops.AnomalyEvent{
		ShipmentID:   ship,
		EventID:      id,
		Severity:     sev,
		DurationH:    numconv.Of(dur),
		P90DurationH: numconv.Of(p90),
	}
}

func groupsWithCounts(counts ...int) []Group {
	out := make([]Group, 0, len(counts))
	for i, c := range counts {
		out = append(out, Group{ShipmentID: string(rune('A' + i)), Count: c})
	}
	return out
}

func TestGroupByShipment(t *testing.T) {
	events := []logiops.AnomalyEvent{
		event("S2", 10, logiops.SeverityLow, 3.0, 2.0),
		event("S1", 11, logiops.SeverityHigh, 5.0, 4.0),
		event("S1", 12, logiops.SeverityHigh, "9,5", 4.0),
		event("S1", 13, logiops.SeverityMedium, nil, 4.0),
	}

	groups := GroupByShipment(events)

	require.Len(t, groups, 2)
	assert.Equal(t, "S1", groups[0].ShipmentID)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, int64(11), groups[0].FirstEventID)
	assert.InDelta(t, 5.5, groups[0].MaxRetardH, 1e-9)
	assert.Equal(t, "S2", groups[1].ShipmentID)
	assert.Equal(t, 1, groups[1].Count)
	assert.Equal(t, "Anomalies sur 3 phases", groups[0].Title())
	assert.Equal(t, "Anomalies sur 1 phase", groups[1].Title())
}

func TestGroupByShipment_TieBrokenByRetard(t *testing.T) {
	groups := GroupByShipment([]logiops.AnomalyEvent{
		event("A", 1, logiops.SeverityLow, 1.0, 2.0),
		event("B", 2, logiops.SeverityLow, 6.0, 2.0),
		event("C", 3, logiops.SeverityLow, 3.0, 2.0),
	})
	ids := []string{groups[0].ShipmentID, groups[1].ShipmentID, groups[2].ShipmentID}
	assert.Equal(t, []string{"B", "C", "A"}, ids)
	assert.Zero(t, groups[2].MaxRetardH)
}

func TestFilterCount(t *testing.T) {
	groups := groupsWithCounts(1, 2, 5, 7)

	tests := []struct {
		bucket string
		want   []int
	}{
		{bucket: model.Bucket5Up, want: []int{5, 7}},
		{bucket: model.Bucket2, want: []int{2}},
		{bucket: model.Bucket4, want: []int{}},
		{bucket: model.BucketsAll, want: []int{1, 2, 5, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			got := []int{}
			for _, g := range FilterCount(groups, tt.bucket) {
				got = append(got, g.Count)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram(groupsWithCounts(1, 1, 3, 5, 9))
	assert.Equal(t, map[string]int{"1": 2, "2": 0, "3": 1, "4": 0, "5+": 2}, h)
}

func TestFilterSeverity(t *testing.T) {
	events := []logiops.AnomalyEvent{
		event("A", 1, logiops.SeverityHigh, 1, 1),
		event("B", 2, logiops.SeverityLow, 1, 1),
		event("C", 3, logiops.SeverityUnknown, 1, 1),
	}
	assert.Len(t, FilterSeverity(events, SeverityAll), 3)
	got := FilterSeverity(events, SeverityFilter(logiops.SeverityHigh))
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ShipmentID)

	assert.Equal(t, map[logiops.Severity]int{
		logiops.SeverityHigh:   1,
		logiops.SeverityMedium: 0,
		logiops.SeverityLow:    1,
	}, SeverityCounts(events))
}

func TestParseFilters(t *testing.T) {
	s, err := ParseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, SeverityAll, s)
	_, err = ParseSeverity("inconnu")
	assert.Error(t, err)

	b, err := ParseBucket("5+")
	require.NoError(t, err)
	assert.Equal(t, model.Bucket5Up, b)
	_, err = ParseBucket("6")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	filtered := []logiops.AnomalyEvent{
		event("S1", 1, logiops.SeverityHigh, 1, 1),
		event("S1", 2, logiops.SeverityHigh, 1, 1),
		event("S2", 3, logiops.SeverityHigh, 1, 1),
	}
	s := Summarize(filtered, GroupByShipment(filtered))
	require.NotNil(t, s.Shipments)
	require.NotNil(t, s.Events)
	assert.Equal(t, 2, s.Shipments.Total)
	assert.Equal(t, 3, s.Events.Total)
	assert.Equal(t, 1, s.Shipments.ByCount["2"])
	assert.Nil(t, s.Total)
}
