package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) SendEmail(to []string, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to[0]+"|"+subject)
	return nil
}

type fakeChat struct {
	sent []string
	err  error
}

func (f *fakeChat) SendMessage(chatID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

// fakeQueue keeps pushed values in memory and serves them to BLPop
type fakeQueue struct {
	mu      sync.Mutex
	items   map[string][]string
	pushErr error
}

func newFakeQueue() *fakeQueue { return &fakeQueue{items: map[string][]string{}} }

func (q *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if q.pushErr != nil {
		cmd.SetErr(q.pushErr)
		return cmd
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			q.items[key] = append(q.items[key], string(b))
		case string:
			q.items[key] = append(q.items[key], b)
		}
	}
	cmd.SetVal(int64(len(q.items[key])))
	return cmd
}

func (q *fakeQueue) BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, key := range keys {
		if len(q.items[key]) > 0 {
			v := q.items[key][0]
			q.items[key] = q.items[key][1:]
			cmd.SetVal([]string{key, v})
			return cmd
		}
	}
	cmd.SetErr(redis.Nil)
	return cmd
}

func TestNewChannels(t *testing.T) {
	n := New(KindPaymentConfirmation, "guest@example.com", "", "Payment", "<p>hi</p>", "hi")
	if len(n.Channels) != 1 || n.Channels[0] != ChannelEmail {
		t.Errorf("channels = %v; want [email]", n.Channels)
	}
	if n.ID == "" || n.Attempt != 1 {
		t.Errorf("id = %q attempt = %d", n.ID, n.Attempt)
	}

	withPhone := New(KindBookingConfirmation, "guest@example.com", "0911000000", "Booking", "", "")
	if len(withPhone.Channels) != 2 {
		t.Errorf("channels = %v; want email and whatsapp", withPhone.Channels)
	}
}

func TestDelivererReportsFailedChannels(t *testing.T) {
	email := &fakeEmail{}
	chat := &fakeChat{err: errors.New("waha down")}
	d := NewDeliverer(email, chat)

	n := New(KindBookingConfirmation, "guest@example.com", "0911000000", "Booking", "<p>x</p>", "x")
	err := d.Deliver(context.Background(), n)

	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v; want DeliveryError", err)
	}
	if len(derr.Failed) != 1 || derr.Failed[0] != ChannelWhatsapp {
		t.Errorf("failed = %v; want [whatsapp]", derr.Failed)
	}
	if len(email.sent) != 1 || email.sent[0] != "guest@example.com|Booking" {
		t.Errorf("email sent = %v", email.sent)
	}
}

func TestDelivererSkipsUnconfiguredChat(t *testing.T) {
	email := &fakeEmail{}
	d := NewDeliverer(email, nil)

	n := New(KindBookingConfirmation, "guest@example.com", "0911000000", "Booking", "", "")
	if err := d.Deliver(context.Background(), n); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if len(email.sent) != 1 {
		t.Errorf("email sent = %v", email.sent)
	}
}

func TestChannelDispatcherDelivers(t *testing.T) {
	email := &fakeEmail{}
	d := NewChannelDispatcher(2, 10, NewDeliverer(email, nil).Deliver, nil)

	for i := 0; i < 5; i++ {
		d.Dispatch(context.Background(), New(KindPaymentConfirmation, "guest@example.com", "", "Payment", "", ""))
	}
	d.Close()

	if len(email.sent) != 5 {
		t.Errorf("delivered %d; want 5", len(email.sent))
	}

	// Dispatch after Close must not panic
	d.Dispatch(context.Background(), New(KindPaymentConfirmation, "late@example.com", "", "Payment", "", ""))
}

func TestChannelDispatcherReportsFailures(t *testing.T) {
	email := &fakeEmail{err: errors.New("smtp refused")}

	var mu sync.Mutex
	var failed []string
	d := NewChannelDispatcher(1, 4, NewDeliverer(email, nil).Deliver, func(_ context.Context, n Notification, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, n.To)
	})

	d.Dispatch(context.Background(), New(KindPaymentConfirmation, "guest@example.com", "", "Payment", "", ""))
	d.Close()

	if len(failed) != 1 || failed[0] != "guest@example.com" {
		t.Errorf("failed = %v", failed)
	}
}

func TestQueueRoundTrip(t *testing.T) {
	q := newFakeQueue()
	NewQueueDispatcher(q, "notifications:test").
		Dispatch(context.Background(), New(KindPaymentConfirmation, "guest@example.com", "", "Payment", "<p>ok</p>", "ok"))

	email := &fakeEmail{}
	c := NewConsumer(q, "notifications:test", NewDeliverer(email, nil).Deliver, nil)

	if err := c.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("delivered %d; want 1", len(email.sent))
	}

	// empty queue is not an error
	if err := c.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne on empty queue: %v", err)
	}
}

func TestConsumerDropsMalformedJobs(t *testing.T) {
	q := newFakeQueue()
	q.RPush(context.Background(), "n", "not json")

	called := false
	c := NewConsumer(q, "n", func(context.Context, Notification) error {
		called = true
		return nil
	}, nil)

	if err := c.ProcessOne(context.Background()); err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if called {
		t.Error("malformed job must not be delivered")
	}
}

func TestQueueDispatcherSwallowsErrors(t *testing.T) {
	q := newFakeQueue()
	q.pushErr = errors.New("redis unavailable")

	// must only log
	NewQueueDispatcher(q, "n").Dispatch(context.Background(), New(KindPaymentConfirmation, "a@b.c", "", "", "", ""))

	if len(q.items["n"]) != 0 {
		t.Error("nothing should be queued")
	}
}
