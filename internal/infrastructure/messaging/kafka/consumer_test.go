package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "order_backend/internal/domain/order"
	"order_backend/internal/infrastructure/encoding/avro"
)

// fakeReader serves queued messages, then blocks until ctx is cancelled.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafkago.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafkago.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	if len(r.queue) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type recordingHandler struct {
	mu       sync.Mutex
	events   []domain.Event
	failures int
}

func (h *recordingHandler) HandleOrderEvent(_ context.Context, e domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failures > 0 {
		h.failures--
		return errors.New("db unavailable")
	}
	h.events = append(h.events, e)
	return nil
}

func encodedEvent(t *testing.T, id string, offset int64) kafkago.Message {
	t.Helper()
	codec, err := avro.NewOrderEventCodec()
	require.NoError(t, err)
	e := sampleEvent()
	e.ID = id
	payload, err := codec.Encode(e)
	require.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: payload}
}

func runConsumer(t *testing.T, reader *fakeReader, handler EventHandler) {
	t.Helper()
	consumer, err := newOrderEventConsumer(reader, handler, nil)
	require.NoError(t, err)
	consumer.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestOrderEventConsumer_HandlesAndCommits(t *testing.T) {
	reader := newFakeReader(encodedEvent(t, "a", 1), encodedEvent(t, "b", 2))
	handler := &recordingHandler{}

	runConsumer(t, reader, handler)

	require.Len(t, handler.events, 2)
	assert.Equal(t, "a", handler.events[0].ID)
	assert.Equal(t, "b", handler.events[1].ID)
	assert.Equal(t, []int64{1, 2}, reader.Committed())
}

func TestOrderEventConsumer_SkipsPoisonMessage(t *testing.T) {
	reader := newFakeReader(kafkago.Message{Offset: 1, Value: []byte{0xff}}, encodedEvent(t, "ok", 2))
	handler := &recordingHandler{}

	runConsumer(t, reader, handler)

	require.Len(t, handler.events, 1)
	assert.Equal(t, "ok", handler.events[0].ID)
	assert.Equal(t, []int64{1, 2}, reader.Committed())
}

func TestOrderEventConsumer_RetriesHandlerFailure(t *testing.T) {
	reader := newFakeReader(encodedEvent(t, "a", 5))
	handler := &recordingHandler{failures: 2}

	runConsumer(t, reader, handler)

	require.Len(t, handler.events, 1)
	assert.Equal(t, []int64{5}, reader.Committed())
}
