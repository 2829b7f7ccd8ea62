package notify

import (
	"sync"
)

// Recorder captures notifications and toasts for test assertions
type Recorder struct {
	mu            sync.Mutex
	notifications []*Notification
	toasts        []string
}

// NewRecorder creates a Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify implements Sink
func (r *Recorder) Notify(n *Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

// Toast implements LogSink
func (r *Recorder) Toast(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, message)
}

// Notifications returns everything notified so far
func (r *Recorder) Notifications() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Toasts returns every toast message so far
func (r *Recorder) Toasts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.toasts))
	copy(out, r.toasts)
	return out
}
