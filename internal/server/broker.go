package server

import (
	"log"
	"sync"

	"github.com/rvermeulen/roomcast/internal/stats"
)

const (
	MetricActiveConnections = "ActiveConnections"
	MetricMessagesPublished = "MessagesPublished"
	MetricMessagesDelivered = "MessagesDelivered"
	MetricMessagesDropped   = "MessagesDropped"
)

// Broker fans a published envelope out to every handle currently
// present on the channel. Publish reports how many handles accepted the
// envelope; a dead or full handle never fails the publish as a whole.
type Broker interface {
	Publish(channelUuid string, env *Envelope) int
}

// LocalBroker delivers to handles registered in this process's
// PresenceTable. Publishes are serialized so that every still-subscribed
// handle observes two sequential publishes on a channel in the same
// relative order; no ordering holds across channels.
type LocalBroker struct {
	mu       sync.Mutex
	log      *log.Logger
	presence *PresenceTable
	stats    stats.StatsProvider
}

func NewLocalBroker(logger *log.Logger, presence *PresenceTable, sp stats.StatsProvider) *LocalBroker {
	sp.RegisterMetric(MetricMessagesPublished)
	sp.RegisterMetric(MetricMessagesDelivered)
	sp.RegisterMetric(MetricMessagesDropped)

	return &LocalBroker{
		log:      logger,
		presence: presence,
		stats:    sp,
	}
}

func (b *LocalBroker) Publish(channelUuid string, env *Envelope) int {
	b.mu.Lock()

	var delivered, dropped int
	for _, c := range b.presence.Snapshot(channelUuid) {
		if c.queueEnvelope(env) {
			delivered++
		} else {
			dropped++
			b.log.Printf("dropped delivery to %q on channel %q: send queue full",
				c.user.DisplayName, channelUuid)
		}
	}
	b.mu.Unlock()

	b.stats.Incr(MetricMessagesPublished)
	if delivered > 0 {
		b.stats.Add(MetricMessagesDelivered, delivered)
	}
	if dropped > 0 {
		b.stats.Add(MetricMessagesDropped, dropped)
	}

	return delivered
}
