// Package model holds the types shared between dashboard components.
package model

// Broadcast channel names.
const (
	ChannelDelayList   = "delay:list-updated"
	ChannelAnomalyList = "anom:list-updated"
)

// DelaySummary is broadcast on ChannelDelayList whenever the delay card's
// visible list changes.
type DelaySummary struct {
	Total int `json:"total"`
	Late  int `json:"late"`
}

// Count buckets used by the anomaly histogram and filter.
const (
	Bucket1    = "1"
	Bucket2    = "2"
	Bucket3    = "3"
	Bucket4    = "4"
	Bucket5Up  = "5+"
	BucketsAll = "all"
)

// Buckets lists the histogram buckets in display order.
var Buckets = []string{Bucket1, Bucket2, Bucket3, Bucket4, Bucket5Up}

// ShipmentStats counts shipment groups.
type ShipmentStats struct {
	Total   int            `json:"total"`
	ByCount map[string]int `json:"byCount"`
}

// EventStats counts raw anomalous events.
type EventStats struct {
	Total int `json:"total"`
}

// AnomalySummary is broadcast on ChannelAnomalyList. Older publishers only
// set the flat Total; consumers fall back through Shipments, Events, Total.
type AnomalySummary struct {
	Shipments *ShipmentStats `json:"shipments,omitempty"`
	Events    *EventStats    `json:"events,omitempty"`
	Total     *int           `json:"total,omitempty"`
}
