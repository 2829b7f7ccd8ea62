// Package prompts models the suspension points where combat resolution
// needs a fact only the human adjudicator can supply, such as whether
// two combatants are within melee reach.
package prompts

import (
	"context"
)

// Kind identifies what rule a prompt is resolving
type Kind string

const (
	// KindProneDistance asks whether the attacker is within 5 feet of a
	// prone target (advantage if yes, disadvantage if no)
	KindProneDistance Kind = "prone_distance"

	// KindFrightenedLOS asks whether any fear source is in the
	// frightened attacker's line of sight
	KindFrightenedLOS Kind = "frightened_los"

	// KindMeleeCritDistance asks whether a hit against a paralyzed or
	// unconscious target landed from within 5 feet (upgrading to a crit)
	KindMeleeCritDistance Kind = "melee_crit_distance"

	// KindSaveCheck asks whether a target's saving throw against an
	// on-hit effect succeeded
	KindSaveCheck Kind = "save_check"

	// KindExhaustionDeath asks the operator to confirm death at
	// exhaustion level 6
	KindExhaustionDeath Kind = "exhaustion_death"
)

// Prompt is a yes/no question surfaced to the operator
type Prompt struct {
	Kind       Kind     `json:"kind"`
	TargetUID  string   `json:"target_uid,omitempty"`
	SourceUIDs []string `json:"source_uids,omitempty"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	YesText    string   `json:"yes_text"`
	NoText     string   `json:"no_text"`
}

// Broker suspends resolution until the operator answers a prompt.
// Ask blocks until an answer arrives or the context is canceled;
// declining resolves with false, it does not abandon resolution.
type Broker interface {
	Ask(ctx context.Context, p *Prompt) (bool, error)
}

// pending is one in-flight question on a ChannelBroker
type pending struct {
	prompt *Prompt
	reply  chan bool
}

// ChannelBroker surfaces prompts on a channel for a presentation layer
// to drain and answer. One question is in flight at a time; resolvers
// are strictly serialized, so there is no need for parallel delivery.
type ChannelBroker struct {
	questions chan pending
}

// NewChannelBroker creates a ChannelBroker
func NewChannelBroker() *ChannelBroker {
	return &ChannelBroker{
		questions: make(chan pending),
	}
}

// Ask implements Broker
func (b *ChannelBroker) Ask(ctx context.Context, p *Prompt) (bool, error) {
	q := pending{prompt: p, reply: make(chan bool, 1)}

	select {
	case b.questions <- q:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case yes := <-q.reply:
		return yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Next blocks until a prompt is waiting, returning it with a reply
// function. The reply function must be called exactly once.
func (b *ChannelBroker) Next(ctx context.Context) (*Prompt, func(bool), error) {
	select {
	case q := <-b.questions:
		return q.prompt, func(yes bool) { q.reply <- yes }, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
