package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diantamela/satgas-ppk/api/testhelpers"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/repository"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent map[string][]*models.Notification
}

func (p *recordingPublisher) Publish(recipientID string, n *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string][]*models.Notification{}
	}
	p.sent[recipientID] = append(p.sent[recipientID], n)
}

func TestDispatcherNotify(t *testing.T) {
	store := testhelpers.NewStore(t)
	pub := &recordingPublisher{}
	d := notification.NewDispatcher(store.Notifications(), pub)
	ctx := context.Background()

	n := d.Notify(ctx, "reporter-1", models.NotifyCaseVerified, "Report verified", "Your report LPN-250001 has been verified.",
		&models.RelatedEntity{ID: "case-1", Type: "case"})
	require.NotNil(t, n)
	assert.Equal(t, "case-1", n.RelatedEntityID)
	assert.Equal(t, "case", n.RelatedEntityType)
	assert.False(t, n.Read)
	require.Len(t, pub.sent["reporter-1"], 1)

	list, err := d.ListForRecipient(ctx, "reporter-1", true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)

	read, err := d.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	time.Sleep(2 * time.Millisecond)
	again, err := d.MarkRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, firstRead.Equal(*again.ReadAt), "read time moved")

	list, err = d.ListForRecipient(ctx, "reporter-1", true)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = d.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

type failingRepo struct {
	repository.NotificationRepository
}

func (failingRepo) Insert(context.Context, *models.Notification) error {
	return errors.New("database is locked")
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	pub := &recordingPublisher{}
	d := notification.NewDispatcher(failingRepo{}, pub)

	n := d.Notify(context.Background(), "reporter-1", models.NotifyCaseReceived, "Report received", "", nil)
	assert.Nil(t, n)
	assert.Empty(t, pub.sent)
}

type fakeConn struct {
	mu     sync.Mutex
	frames []notification.Message
	err    error
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, v.(notification.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) snapshot() ([]notification.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notification.Message(nil), c.frames...), c.closed
}

// stalledConn never completes a write until it is closed
type stalledConn struct {
	once    sync.Once
	release chan struct{}
}

func newStalledConn() *stalledConn {
	return &stalledConn{release: make(chan struct{})}
}

func (c *stalledConn) WriteJSON(interface{}) error {
	<-c.release
	return errors.New("use of closed connection")
}

func (c *stalledConn) Close() error {
	c.once.Do(func() { close(c.release) })
	return nil
}

func (c *stalledConn) isClosed() bool {
	select {
	case <-c.release:
		return true
	default:
		return false
	}
}

func TestHubPublish(t *testing.T) {
	h := notification.NewHub()
	good := &fakeConn{}
	broken := &fakeConn{err: errors.New("broken pipe")}
	other := &fakeConn{}
	h.Register("reporter-1", good)
	h.Register("reporter-1", broken)
	h.Register("satgas-1", other)
	require.Equal(t, 2, h.Connected("reporter-1"))

	n := &models.Notification{ID: "n1", RecipientID: "reporter-1"}
	h.Publish("reporter-1", n)

	require.Eventually(t, func() bool {
		frames, _ := good.snapshot()
		return len(frames) == 1
	}, time.Second, 5*time.Millisecond)
	frames, _ := good.snapshot()
	assert.Equal(t, "new_notification", frames[0].Event)
	assert.Equal(t, "n1", frames[0].Data.ID)

	require.Eventually(t, func() bool {
		_, closed := broken.snapshot()
		return closed && h.Connected("reporter-1") == 1
	}, time.Second, 5*time.Millisecond)
	otherFrames, _ := other.snapshot()
	assert.Empty(t, otherFrames)

	h.Unregister("reporter-1", good)
	assert.Zero(t, h.Connected("reporter-1"))
	assert.Eventually(t, func() bool {
		_, closed := good.snapshot()
		return closed
	}, time.Second, 5*time.Millisecond)
	h.Publish("reporter-1", n)
	frames, _ = good.snapshot()
	assert.Len(t, frames, 1)
}

func TestHubConcurrentPublish(t *testing.T) {
	h := notification.NewHub()
	conn := &fakeConn{}
	h.Register("reporter-1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Publish("reporter-1", &models.Notification{ID: "n"})
		}()
	}
	wg.Wait()
	assert.Eventually(t, func() bool {
		frames, _ := conn.snapshot()
		return len(frames) == 20
	}, time.Second, 5*time.Millisecond)
}

func TestHubStalledSubscriber(t *testing.T) {
	h := notification.NewHub()
	stalled := newStalledConn()
	fast := &fakeConn{}
	h.Register("reporter-1", stalled)
	h.Register("satgas-1", fast)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < notification.QueueSize+2; i++ {
			h.Publish("reporter-1", &models.Notification{ID: "n"})
		}
		h.Publish("satgas-1", &models.Notification{ID: "n2"})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish waited on a stalled connection")
	}

	assert.Zero(t, h.Connected("reporter-1"))
	assert.True(t, stalled.isClosed())
	assert.Eventually(t, func() bool {
		frames, _ := fast.snapshot()
		return len(frames) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatcherDoesNotWaitForSubscribers(t *testing.T) {
	store := testhelpers.NewStore(t)
	h := notification.NewHub()
	h.Register("reporter-1", newStalledConn())
	d := notification.NewDispatcher(store.Notifications(), h)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < notification.QueueSize+2; i++ {
			d.Notify(context.Background(), "reporter-1", models.NotifyCaseReceived, "Report received", "", nil)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notify waited on a stalled connection")
	}
	list, err := d.ListForRecipient(context.Background(), "reporter-1", false)
	require.NoError(t, err)
	assert.Len(t, list, notification.QueueSize+2)
}

func TestStaticDirectory(t *testing.T) {
	dir := notification.StaticDirectory{
		"reporter-1": {Name: "Pelapor", Email: "pelapor@kampus.ac.id"},
		"satgas-1":   {Name: "Satgas"},
	}
	r, ok := dir.Lookup("reporter-1")
	assert.True(t, ok)
	assert.Equal(t, "pelapor@kampus.ac.id", r.Email)

	_, ok = dir.Lookup("satgas-1")
	assert.False(t, ok, "recipient without email")
	_, ok = dir.Lookup("nobody")
	assert.False(t, ok)
}
