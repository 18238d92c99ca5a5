package layout

import "github.com/matzehuels/livetiles/pkg/state"

// Unsubscribe removes a subscription.
type Unsubscribe func()

type subscription struct {
	fn     func(*state.State)
	active bool
}

// notifier coalesces change notifications. Nested batches only flush when
// the outermost one completes.
type notifier struct {
	subs  []*subscription
	depth int
	dirty bool
}

// Subscribe registers fn to receive a clone of the state mirror after each
// change. Inside [Layout.Batch] fn fires once, when the outermost batch
// returns.
func (l *Layout) Subscribe(fn func(*state.State)) Unsubscribe {
	sub := &subscription{fn: fn, active: true}
	l.notify.subs = append(l.notify.subs, sub)
	return func() { sub.active = false }
}

// Batch runs fn and defers change notifications until it returns. The
// engine's invariants still hold after every individual call inside fn.
func (l *Layout) Batch(fn func()) {
	l.notify.depth++
	defer func() {
		l.notify.depth--
		l.flush()
	}()
	fn()
}

// changed marks the mirror dirty and notifies unless a batch is open.
func (l *Layout) changed() {
	l.notify.dirty = true
	l.flush()
}

func (l *Layout) flush() {
	if l.notify.depth > 0 || !l.notify.dirty {
		return
	}
	l.notify.dirty = false

	active := l.notify.subs[:0]
	for _, s := range l.notify.subs {
		if s.active {
			active = append(active, s)
		}
	}
	l.notify.subs = active
	if len(active) == 0 {
		return
	}

	snapshot := l.state.Clone()
	for _, s := range active {
		s.fn(snapshot.Clone())
	}
}
