package gateway

import (
	"log/slog"
	"sync"

	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

// NoopSink discards all notifications.
type NoopSink struct{}

func (NoopSink) AllowedActorChanged(interfaces.Identity)          {}
func (NoopSink) OwnerChanged(interfaces.Identity)                 {}
func (NoopSink) NewCreation(interfaces.Salt, interfaces.Identity) {}

// SlogSink writes notifications to a structured logger, one record per
// event, for consumers that tail the registry's log stream.
type SlogSink struct {
	Log *slog.Logger
}

func (s SlogSink) AllowedActorChanged(newActor interfaces.Identity) {
	s.Log.Info("event: allowed actor changed", slog.String("newActor", newActor.String()))
}

func (s SlogSink) OwnerChanged(newOwner interfaces.Identity) {
	s.Log.Info("event: owner changed", slog.String("newOwner", newOwner.String()))
}

func (s SlogSink) NewCreation(salt interfaces.Salt, location interfaces.Identity) {
	s.Log.Info("event: new creation",
		slog.String("salt", salt.String()),
		slog.String("location", location.String()))
}

// MultiSink fans notifications out to several sinks in order.
type MultiSink []interfaces.EventSink

func (m MultiSink) AllowedActorChanged(newActor interfaces.Identity) {
	for _, s := range m {
		s.AllowedActorChanged(newActor)
	}
}

func (m MultiSink) OwnerChanged(newOwner interfaces.Identity) {
	for _, s := range m {
		s.OwnerChanged(newOwner)
	}
}

func (m MultiSink) NewCreation(salt interfaces.Salt, location interfaces.Identity) {
	for _, s := range m {
		s.NewCreation(salt, location)
	}
}

// CreationRecord is one NewCreation notification captured by a
// RecordingSink.
type CreationRecord struct {
	Salt     interfaces.Salt
	Location interfaces.Identity
}

// RecordingSink captures notifications in memory. Used by tests and by
// tooling that needs to replay the notification stream.
type RecordingSink struct {
	mu sync.Mutex

	ActorChanges []interfaces.Identity
	OwnerChanges []interfaces.Identity
	Creations    []CreationRecord
}

func (r *RecordingSink) AllowedActorChanged(newActor interfaces.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ActorChanges = append(r.ActorChanges, newActor)
}

func (r *RecordingSink) OwnerChanged(newOwner interfaces.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OwnerChanges = append(r.OwnerChanges, newOwner)
}

func (r *RecordingSink) NewCreation(salt interfaces.Salt, location interfaces.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Creations = append(r.Creations, CreationRecord{Salt: salt, Location: location})
}
