// Package notify carries the structured outcome notifications and
// transient operator messages the engine emits. A presentation layer
// drains them; the engine never renders anything itself.
package notify

import (
	"sync"
)

// Type classifies an outcome notification
type Type string

const (
	TypeCrit Type = "crit"
	TypeHit  Type = "hit"
	TypeMiss Type = "miss"
)

// Variant distinguishes critical hits from fumbles on crit notifications
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantFailure Variant = "failure"
)

// Modifier annotates how a target's damage profile changed a component
type Modifier string

const (
	ModifierNone       Modifier = ""
	ModifierResistance Modifier = "resistance"
	ModifierVulnerable Modifier = "vulnerable"
	ModifierImmune     Modifier = "immune"
)

// DamageDetail is one damage component of an attack outcome
type DamageDetail struct {
	RawAmount   int      `json:"raw_amount"`
	FinalAmount int      `json:"final_amount"`
	Type        string   `json:"type"`
	Modifier    Modifier `json:"modifier,omitempty"`
}

// Notification is a structured attack outcome for display
type Notification struct {
	Type             Type           `json:"type"`
	Variant          Variant        `json:"variant,omitempty"`
	Attacker         string         `json:"attacker"`
	Target           string         `json:"target"`
	ToHitRoll        string         `json:"to_hit_roll"`
	ToHitResult      int            `json:"to_hit_result"`
	TargetAC         int            `json:"target_ac"`
	Damages          []DamageDetail `json:"damages,omitempty"`
	TotalFinalDamage int            `json:"total_final_damage"`
}

// Sink receives outcome notifications
type Sink interface {
	Notify(n *Notification)
}

// LogSink receives transient operator-facing messages (toasts)
type LogSink interface {
	Toast(message string)
}

// Queue is a bounded in-memory notification queue a presentation layer
// drains in order. When full, the oldest entry is dropped.
type Queue struct {
	mu    sync.Mutex
	items []*Notification
	limit int
}

// NewQueue creates a Queue holding at most limit notifications
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = 64
	}
	return &Queue{limit: limit}
}

// Notify implements Sink
func (q *Queue) Notify(n *Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if len(q.items) > q.limit {
		q.items = q.items[len(q.items)-q.limit:]
	}
}

// Drain removes and returns all queued notifications
func (q *Queue) Drain() []*Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
