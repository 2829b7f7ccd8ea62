package prompts

import (
	"context"
	"sync"
)

// ScriptedBroker answers prompts from a fixed script, for tests.
// Answers are keyed by prompt kind; unkeyed prompts answer Default.
type ScriptedBroker struct {
	mu      sync.Mutex
	answers map[Kind]bool
	Default bool
	asked   []*Prompt
}

// NewScriptedBroker creates a ScriptedBroker with no scripted answers
func NewScriptedBroker() *ScriptedBroker {
	return &ScriptedBroker{
		answers: make(map[Kind]bool),
	}
}

// Answer scripts the response for every prompt of the given kind
func (b *ScriptedBroker) Answer(kind Kind, yes bool) *ScriptedBroker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers[kind] = yes
	return b
}

// Ask implements Broker
func (b *ScriptedBroker) Ask(ctx context.Context, p *Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.asked = append(b.asked, p)
	if yes, ok := b.answers[p.Kind]; ok {
		return yes, nil
	}
	return b.Default, nil
}

// Asked returns every prompt seen so far, in order
func (b *ScriptedBroker) Asked() []*Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Prompt, len(b.asked))
	copy(out, b.asked)
	return out
}

// AskedKinds returns the kinds of every prompt seen so far, in order
func (b *ScriptedBroker) AskedKinds() []Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Kind, 0, len(b.asked))
	for _, p := range b.asked {
		out = append(out, p.Kind)
	}
	return out
}
