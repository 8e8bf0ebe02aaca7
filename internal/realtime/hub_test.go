package realtime

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSubscriber struct {
	err       error
	cancelled bool
}

func (s *fakeSubscriber) SubscribeForm(uuid.UUID, func(event string, payload []byte)) (func(), error) {
	if s.err != nil {
		return nil, s.err
	}
	return func() { s.cancelled = true }, nil
}

func newTestClient(formID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.NewString(),
		FormID: formID,
		UserID: uuid.New(),
		send:   make(chan WSMessage, 8),
	}
}

func TestBroadcastReachesEveryWatcher(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	formID := uuid.New()

	a, b := newTestClient(formID), newTestClient(formID)
	other := newTestClient(uuid.New())
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)
	assert.Equal(t, 2, hub.ViewerCount(formID))

	hub.BroadcastToForm(formID, "response_submitted", map[string]string{"id": "r1"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "response_submitted", msg.Event)
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	assert.Empty(t, other.send, "clients on other forms must not receive the event")
}

func TestBroadcastDuringRegisterChurn(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	formID := uuid.New()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				hub.BroadcastToForm(formID, "response_submitted", map[string]int{"n": 1})
			}
		}
	}()

	for i := 0; i < 200; i++ {
		c := newTestClient(formID)
		hub.Register(c)
		hub.Unregister(c)
	}
	close(done)
	wg.Wait()

	assert.Equal(t, 0, hub.ViewerCount(formID))
}

func TestUnregisterLastWatcherCancelsSubscription(t *testing.T) {
	sub := &fakeSubscriber{}
	hub := NewHub(zap.NewNop(), nil, sub)
	formID := uuid.New()

	a, b := newTestClient(formID), newTestClient(formID)
	hub.Register(a)
	hub.Register(b)

	hub.Unregister(a)
	assert.False(t, sub.cancelled)
	hub.Unregister(b)
	assert.True(t, sub.cancelled)
}

func TestSubscribeFailureIsLoggedAndLocalBroadcastStillWorks(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sub := &fakeSubscriber{err: errors.New("redis down")}
	hub := NewHub(zap.New(core), nil, sub)
	formID := uuid.New()

	c := newTestClient(formID)
	hub.Register(c)

	entries := logs.FilterMessage("form event subscription failed, local broadcast only").All()
	require.Len(t, entries, 1)

	hub.BroadcastToForm(formID, "response_submitted", map[string]string{"id": "r1"})
	select {
	case msg := <-c.send:
		assert.Equal(t, "response_submitted", msg.Event)
	default:
		t.Fatal("local broadcast lost after subscription failure")
	}
}
