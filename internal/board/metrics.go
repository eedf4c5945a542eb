package board

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the board's Prometheus collectors.
type Metrics struct {
	// StoredMessages is the current board size.
	StoredMessages prometheus.Gauge

	// Intentions counts clean messages. Labels: intention
	Intentions *prometheus.CounterVec

	// ToxicMessages counts masked messages. Labels: category
	ToxicMessages *prometheus.CounterVec

	// Evictions counts messages dropped to honour the size cap.
	Evictions prometheus.Counter

	// Clears counts board clears.
	Clears prometheus.Counter
}

// NewMetrics registers the board collectors with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoredMessages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "moodwall",
			Subsystem: "board",
			Name:      "stored_messages",
			Help:      "Number of messages currently on the board",
		}),
		Intentions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodwall",
			Subsystem: "board",
			Name:      "intentions_total",
			Help:      "Messages posted by classified intention",
		}, []string{"intention"}),
		ToxicMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moodwall",
			Subsystem: "board",
			Name:      "toxic_messages_total",
			Help:      "Messages masked as toxic by category",
		}, []string{"category"}),
		Evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "moodwall",
			Subsystem: "board",
			Name:      "evictions_total",
			Help:      "Messages evicted to keep the board under its size cap",
		}),
		Clears: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "moodwall",
			Subsystem: "board",
			Name:      "clears_total",
			Help:      "Number of times the board was cleared",
		}),
	}
}

func (m *Metrics) recordAdd(msg Message) {
	if msg.Toxic {
		m.ToxicMessages.WithLabelValues(string(msg.Category)).Inc()
		return
	}
	if msg.Intention != "" {
		m.Intentions.WithLabelValues(string(msg.Intention)).Inc()
	}
}
