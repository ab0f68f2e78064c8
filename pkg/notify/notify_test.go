package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cuemby/secwall/pkg/document"
)

func TestSubscribeAndPublishDelivers(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(4)
	defer b.Unsubscribe(sub)

	seq := b.NextSequence("default")
	b.Publish(&Notification{Action: Created, Portfolio: "default", Sequence: seq})

	select {
	case n := <-sub.C():
		if n.Action != Created || n.Portfolio != "default" || n.Sequence != 1 {
			t.Fatalf("unexpected notification: %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestSequenceIsPerPortfolio(t *testing.T) {
	b := NewBroker()
	if got := b.NextSequence("a"); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := b.NextSequence("a"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := b.NextSequence("b"); got != 1 {
		t.Fatalf("expected a fresh sequence for portfolio b, got %d", got)
	}
}

func TestOverflowDropsOldestAndCountsDrops(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(2)
	defer b.Unsubscribe(sub)

	for i := 0; i < 5; i++ {
		b.Publish(&Notification{Action: Updated, Portfolio: "default", Sequence: uint64(i + 1)})
	}

	if sub.Drops() == 0 {
		t.Fatalf("expected some drops after overflowing a queue of size 2 with 5 sends")
	}

	// Whatever is left in the queue should be the most recent entries,
	// not the oldest ones.
	var last *Notification
	for {
		select {
		case n := <-sub.C():
			last = n
			continue
		default:
		}
		break
	}
	if last == nil || last.Sequence != 5 {
		t.Fatalf("expected the newest notification to survive, got %+v", last)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(4)
	b.Unsubscribe(sub)

	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after Unsubscribe")
	}
	b.Publish(&Notification{Action: Deleted, Portfolio: "default"})

	select {
	case _, ok := <-sub.C():
		if ok {
			t.Fatalf("did not expect a notification on an unsubscribed channel")
		}
	default:
		t.Fatalf("expected sub.C() to be closed after Unsubscribe")
	}
}

func TestNotificationJSONShape(t *testing.T) {
	old := document.NewUserAndPassword()
	old.SetID("id-1")
	old.SetName("svc-a")
	old.Username = "alice"
	redactedOld := document.Redact(old)

	n := &Notification{
		Action:           Updated,
		Portfolio:        "default",
		Sequence:         7,
		Old:              redactedOld,
		New:              redactedOld,
		NonSecretChanged: true,
		SecretChanged:    false,
	}

	buf, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"action", "portfolio", "sequence", "old", "new", "nonSecretChanged", "secretChanged"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in notification JSON", key)
		}
	}
	if decoded["action"] != string(Updated) {
		t.Errorf("expected action %q, got %v", Updated, decoded["action"])
	}
}
