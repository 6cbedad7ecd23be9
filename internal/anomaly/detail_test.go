package anomaly

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logiops360/logiops-cli/internal/numconv"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

func sh1Detail() *logiops.AnomalyDetail {
	phase := func(id int64, name string, dur, p90, flag any) logiops.PhaseRecord {
		return logiops.PhaseRecord{
			EventID:      id,
			Phase:        name,
			DurationH:    numconv.Of(dur),
			P90DurationH: numconv.Of(p90),
			ServerFlag:   numconv.Of(flag),
		}
	}
	return &logiops.AnomalyDetail{
		ShipmentID:      "SH1",
		Carrier:         "DHL",
		Origin:          "PARIS",
		DestinationZone: "EU-WEST",
		Phases: []logiops.PhaseRecord{
			phase(1, "pick", 5.0, 4.0, 0),
			phase(2, "pack", 1.0, 2.0, 1),
			phase(3, "ship", "12,5", 10.0, 0),
			phase(4, "deliver", nil, 3.0, 1),
		},
	}
}

func TestNewDetail_RecomputesFlags(t *testing.T) {
	d := NewDetail(sh1Detail(), 3)

	require.Len(t, d.Phases, 4)
	assert.Equal(t, 2, d.AnomalousCount)
	assert.True(t, d.Phases[0].Anomalous)
	assert.False(t, d.Phases[1].Anomalous)
	assert.True(t, d.Phases[2].Anomalous)
	assert.False(t, d.Phases[3].Anomalous)
	assert.Nil(t, d.Phases[3].DurationH)

	assert.True(t, d.Phases[2].Selected)
	assert.False(t, d.Phases[0].Selected)
	assert.Equal(t, int64(3), d.SelectedEventID)
	assert.Equal(t, "SH1", d.Raw().ShipmentID)
}

func TestCarrierEmail(t *testing.T) {
	e := CarrierEmail(sh1Detail())

	assert.Equal(t, "Anomalie phases - Shipment SH1 - DHL", e.Subject)
	lines := strings.Split(e.Body, "\n")
	assert.Equal(t, "Bonjour DHL,", lines[0])
	assert.Contains(t, lines, "Origine: PARIS  =>  Destination: EU-WEST")
	assert.Contains(t, lines, "- #1 | pick | 5.00 | 4.00")
	assert.Contains(t, lines, "- #3 | ship | 12.50 | 10.00")
	assert.Contains(t, lines, "- #4 | deliver | 0.00 | 3.00")
	assert.Equal(t, "LogiOps360", lines[len(lines)-1])

	u, err := url.Parse(e.MailtoURL())
	require.NoError(t, err)
	assert.Equal(t, "mailto", u.Scheme)
	q, err := url.ParseQuery(u.RawQuery)
	require.NoError(t, err)
	assert.Equal(t, e.Subject, q.Get("subject"))
	assert.Equal(t, e.Body, q.Get("body"))
	assert.NotContains(t, e.MailtoURL(), "+")
}

func TestCarrierEmail_NoCarrier(t *testing.T) {
	e := CarrierEmail(&logiops.AnomalyDetail{ShipmentID: "X"})
	assert.True(t, strings.HasPrefix(e.Body, "Bonjour Transporteur,"))
}
