package metrics

import "github.com/ruteri/deterministic-creation-registry/interfaces"

// Sink implements interfaces.EventSink by incrementing counters.
type Sink struct{}

func (Sink) AllowedActorChanged(interfaces.Identity) {
	ActorRotationsTotal.Inc()
}

func (Sink) OwnerChanged(interfaces.Identity) {
	OwnerTransfersTotal.Inc()
}

func (Sink) NewCreation(interfaces.Salt, interfaces.Identity) {
	CreationsTotal.Inc()
}
