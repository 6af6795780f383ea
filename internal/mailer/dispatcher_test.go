package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qamaits/identity-server/internal/domain"
)

type fakeTransport struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
}

// Send fails the first `failures` attempts with err, then succeeds.
func (f *fakeTransport) Send(_ context.Context, _ string, _ *domain.ProviderLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

type fakeDeadLetter struct {
	mu      sync.Mutex
	entries []DeadLetterEntry
}

func (f *fakeDeadLetter) Push(_ context.Context, entry DeadLetterEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func testLink() domain.ProviderLink {
	return domain.ProviderLink{
		Name:         "gmail",
		AccessToken:  "provider-access",
		SendEndpoint: "https://mail.example.com/send",
	}
}

func testMessage() Message {
	return VerificationMessage("no-reply@example.com", "marcus@example.com", "Marcus", "A1b2C3")
}

func TestDispatcherDelivers(t *testing.T) {
	transport := &fakeTransport{}
	sink := &fakeDeadLetter{}
	d := NewDispatcher(transport, sink, zap.NewNop(), 2, 8)
	defer d.Close()

	require.NoError(t, <-d.Send(testMessage(), testLink()))
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, sink.entries)
}

func TestDispatcherRetriesTransientFailure(t *testing.T) {
	transport := &fakeTransport{failures: 2, err: errors.New("temporarily unavailable")}
	sink := &fakeDeadLetter{}
	d := NewDispatcher(transport, sink, zap.NewNop(), 1, 8)
	d.baseDelay = time.Millisecond
	defer d.Close()

	require.NoError(t, <-d.Send(testMessage(), testLink()))
	assert.Equal(t, 3, transport.calls)
	assert.Empty(t, sink.entries)
}

func TestDispatcherExhaustedSendGoesToDeadLetter(t *testing.T) {
	transport := &fakeTransport{failures: 100, err: errors.New("provider down")}
	sink := &fakeDeadLetter{}
	d := NewDispatcher(transport, sink, zap.NewNop(), 1, 8)
	d.baseDelay = time.Millisecond
	defer d.Close()

	err := <-d.Send(testMessage(), testLink())
	require.Error(t, err)
	assert.Equal(t, defaultMaxAttempts, transport.calls)

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, "marcus@example.com", entry.To)
	assert.Equal(t, "gmail", entry.Provider)
	assert.Equal(t, defaultMaxAttempts, entry.Attempts)
	assert.Contains(t, entry.Error, "provider down")
}

func TestDispatcherSendAfterClose(t *testing.T) {
	transport := &fakeTransport{}
	sink := &fakeDeadLetter{}
	d := NewDispatcher(transport, sink, zap.NewNop(), 1, 8)
	d.Close()

	// A late submission reports the closed dispatcher instead of
	// panicking on the closed channel.
	err := <-d.Send(testMessage(), testLink())
	assert.ErrorIs(t, err, ErrDispatcherClosed)
	assert.Equal(t, 0, transport.calls)
	assert.Empty(t, sink.entries)
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&fakeTransport{}, &fakeDeadLetter{}, zap.NewNop(), 1, 8)
	d.Close()
	d.Close()
}

func TestDispatcherQueueFull(t *testing.T) {
	transport := &fakeTransport{}
	sink := &fakeDeadLetter{}

	// No workers, so the single queue slot never drains.
	d := NewDispatcher(transport, sink, zap.NewNop(), 0, 1)
	defer d.Close()

	first := d.Send(testMessage(), testLink())
	second := d.Send(testMessage(), testLink())

	select {
	case err := <-second:
		assert.ErrorIs(t, err, ErrQueueFull)
	default:
		t.Fatal("expected immediate queue-full result")
	}

	select {
	case <-first:
		t.Fatal("queued message should not have a result without workers")
	default:
	}
}
