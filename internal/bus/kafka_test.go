package bus

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logiops360/logiops-cli/internal/model"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
	err    error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaForwarder(t *testing.T) {
	b := New()
	fw := &fakeWriter{}
	f := NewKafkaForwarder(fw)
	f.Attach(b, model.ChannelDelayList, model.ChannelAnomalyList)

	b.Publish(model.ChannelDelayList, model.DelaySummary{Total: 40, Late: 8})

	require.Len(t, fw.msgs, 1)
	assert.Equal(t, model.ChannelDelayList, string(fw.msgs[0].Key))

	var got model.DelaySummary
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, model.DelaySummary{Total: 40, Late: 8}, got)

	require.NoError(t, f.Close())
	assert.True(t, fw.closed)
	assert.Equal(t, 0, b.Len(model.ChannelDelayList))

	b.Publish(model.ChannelDelayList, model.DelaySummary{})
	assert.Len(t, fw.msgs, 1)
}

func TestKafkaForwarder_WriteErrorIsSwallowed(t *testing.T) {
	b := New()
	fw := &fakeWriter{err: assert.AnError}
	f := NewKafkaForwarder(fw)
	f.Attach(b, model.ChannelAnomalyList)

	assert.NotPanics(t, func() {
		b.Publish(model.ChannelAnomalyList, model.AnomalySummary{})
	})
	assert.Empty(t, fw.msgs)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "logiops.summaries")
	assert.Equal(t, "logiops.summaries", w.Topic)
	assert.True(t, w.Async)
	assert.NotNil(t, w.Completion)
}
