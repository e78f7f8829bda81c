package notify

import (
	"slices"

	"github.com/gosuda/plano/internal/messenger"
)

// Registry is a map-based MessengerRegistry keyed by Messenger.Platform.
type Registry struct {
	messengers map[string]messenger.Messenger
}

// NewRegistry creates a Registry holding ms.
func NewRegistry(ms ...messenger.Messenger) *Registry {
	r := &Registry{
		messengers: make(map[string]messenger.Messenger, len(ms)),
	}
	for _, m := range ms {
		r.Register(m)
	}
	return r
}

// Register adds m under its own platform name, replacing any previous one.
func (r *Registry) Register(m messenger.Messenger) {
	r.messengers[m.Platform()] = m
}

// Get returns the messenger for the given platform, or false if not registered.
func (r *Registry) Get(platform string) (messenger.Messenger, bool) {
	m, ok := r.messengers[platform]
	return m, ok
}

// Platforms lists the registered platform names in sorted order.
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.messengers))
	for p := range r.messengers {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
