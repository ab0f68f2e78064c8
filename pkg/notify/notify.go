package notify

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/cuemby/secwall/pkg/document"
	"github.com/cuemby/secwall/pkg/metrics"
)

// Action is the kind of change a Notification reports.
type Action string

const (
	Created Action = "CREATED"
	Updated Action = "UPDATED"
	Deleted Action = "DELETED"
)

// DefaultQueueSize is the per-subscriber buffer depth used when the
// caller does not request one explicitly.
const DefaultQueueSize = 64

// Notification is one CREATED/UPDATED/DELETED event on the
// SECW_NOTIFICATIONS stream (spec.md §4.6). Old and New are already
// redacted by the caller (the wallet core) before the notification is
// built; notify never sees secret material.
type Notification struct {
	Action           Action
	Portfolio        string
	Sequence         uint64
	Old              document.Document
	New              document.Document
	NonSecretChanged bool
	SecretChanged    bool
}

// MarshalJSON renders the wire shape from spec.md §4.6, plus the
// per-portfolio sequence number referenced by the concurrency model in
// spec.md §5 ("notifications are delivered in that same order").
func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"action":           n.Action,
		"portfolio":        n.Portfolio,
		"sequence":         n.Sequence,
		"old":              encodeOrNull(n.Old),
		"new":              encodeOrNull(n.New),
		"nonSecretChanged": n.NonSecretChanged,
		"secretChanged":    n.SecretChanged,
	})
}

func encodeOrNull(d document.Document) interface{} {
	if d == nil {
		return nil
	}
	return map[string]interface{}{
		document.KeyID:      d.ID(),
		document.KeyName:    d.Name(),
		document.KeyType:    d.Type(),
		document.KeyTags:    d.Tags(),
		document.KeyUsages:  d.Usages(),
		document.KeyPublic:  d.SerializePublic(),
		document.KeyPrivate: d.SerializePrivate(),
	}
}

// Subscription is one subscriber's bounded queue of notifications.
type Subscription struct {
	ch    chan *Notification
	drops uint64
}

// C returns the channel to receive notifications on.
func (s *Subscription) C() <-chan *Notification { return s.ch }

// Drops reports how many notifications have been dropped to make room
// for newer ones since this subscription was created.
func (s *Subscription) Drops() uint64 { return atomic.LoadUint64(&s.drops) }

func (s *Subscription) deliver(n *Notification) {
	for {
		select {
		case s.ch <- n:
			return
		default:
		}
		// Queue is full: drop the oldest entry to make room, then retry.
		// If a concurrent receive already freed a slot, the next send
		// attempt above succeeds without double-counting a drop.
		select {
		case <-s.ch:
			atomic.AddUint64(&s.drops, 1)
			metrics.NotificationQueueDropsTotal.Inc()
		default:
		}
	}
}

// Broker fans CREATED/UPDATED/DELETED notifications out to every active
// subscription and assigns the per-portfolio sequence number each
// notification carries.
type Broker struct {
	seqMu sync.Mutex
	seq   map[string]uint64

	subMu sync.RWMutex
	subs  map[*Subscription]struct{}
}

// NewBroker builds an empty Broker.
func NewBroker() *Broker {
	return &Broker{
		seq:  make(map[string]uint64),
		subs: make(map[*Subscription]struct{}),
	}
}

// NextSequence assigns the next sequence number for portfolio. The
// wallet core calls this while still holding its write lock, so
// sequence assignment happens in true mutation order even though
// delivery itself happens after the lock is released.
func (b *Broker) NextSequence(portfolioName string) uint64 {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()
	b.seq[portfolioName]++
	return b.seq[portfolioName]
}

// Subscribe creates a new bounded subscription.
func (b *Broker) Subscribe(queueSize int) *Subscription {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	sub := &Subscription{ch: make(chan *Notification, queueSize)}
	b.subMu.Lock()
	b.subs[sub] = struct{}{}
	count := len(b.subs)
	b.subMu.Unlock()
	metrics.NotificationSubscribersTotal.Set(float64(count))
	return sub
}

// Unsubscribe removes and closes a subscription.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.subMu.Lock()
	delete(b.subs, sub)
	count := len(b.subs)
	b.subMu.Unlock()
	close(sub.ch)
	metrics.NotificationSubscribersTotal.Set(float64(count))
}

// Publish delivers n to every current subscriber. It never blocks: a
// full subscriber queue has its oldest entry dropped to make room.
func (b *Broker) Publish(n *Notification) {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	for sub := range b.subs {
		sub.deliver(n)
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(string(n.Action)).Inc()
}

// SubscriberCount reports the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.subMu.RLock()
	defer b.subMu.RUnlock()
	return len(b.subs)
}
