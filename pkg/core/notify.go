package core

import (
	"fmt"
	"io"
	"sync"

	"treasurehunt/pkg/common"
)

// Notifier receives one event per scanned region. Implementations must be safe
// for concurrent use; events from different groups interleave freely.
type Notifier interface {
	Notify(n common.Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify(common.Notification) {}

// NopNotifier discards all events.
func NopNotifier() Notifier { return nopNotifier{} }

// WriterNotifier 把事件逐行写入 w；加锁只为了让行不交错。
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (wn *WriterNotifier) Notify(n common.Notification) {
	wn.mu.Lock()
	defer wn.mu.Unlock()
	fmt.Fprintln(wn.w, n.String())
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(n common.Notification) {
	for _, t := range m {
		t.Notify(n)
	}
}

// MultiNotifier fans every event out to each non-nil target.
func MultiNotifier(targets ...Notifier) Notifier {
	var out multiNotifier
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return NopNotifier()
	case 1:
		return out[0]
	}
	return out
}
