package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/pkg/contracts/events"
)

type MockStats struct{ mock.Mock }

func (m *MockStats) RecomputeStats(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// fakeReader entrega as mensagens em ordem e cancela o contexto no fim
type fakeReader struct {
	msgs   []kafka.Message
	cancel context.CancelFunc
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func message(t *testing.T, ev events.BetEvent) kafka.Message {
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(ev.BetID), Value: b}
}

func TestProcessor_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := new(MockStats)
	stats.On("RecomputeStats", mock.Anything, "u-1").Return(nil).Twice()
	stats.On("RecomputeStats", mock.Anything, "u-2").Return(errors.New("db down")).Once()
	stats.On("RecomputeStats", mock.Anything, "u-3").Return(nil).Once()

	reader := &fakeReader{cancel: cancel, msgs: []kafka.Message{
		message(t, events.BetEvent{Type: events.BetResolved, BetID: "b-1", ActorID: "u-1", UserIDs: []string{"u-1", "u-2", "u-3"}}),
		{Value: []byte("not json")},
		message(t, events.BetEvent{Type: events.BetPlaced, BetID: "b-2", ActorID: "u-1"}),
	}}

	var consumed, recomputed int
	stages := map[string]int{}
	p := &Processor{
		Log:          zap.NewNop(),
		Reader:       reader,
		Stats:        stats,
		OnConsumed:   func() { consumed++ },
		OnRecomputed: func() { recomputed++ },
		OnError:      func(s string) { stages[s]++ },
	}

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, consumed)
	assert.Equal(t, 3, recomputed)
	assert.Equal(t, map[string]int{"decode": 1, "recompute": 1}, stages)
	stats.AssertExpectations(t)
}

func TestAffectedUsers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, affectedUsers(events.BetEvent{ActorID: "a", UserIDs: []string{"a", "b"}}))
	assert.Equal(t, []string{"a"}, affectedUsers(events.BetEvent{ActorID: "a"}))
	assert.Empty(t, affectedUsers(events.BetEvent{Type: events.BetClosed}))
}
