package history

import (
	"time"

	"github.com/drakos74/coin-ensemble/internal/model"
)

// DefaultPerformanceCapacity is the number of records kept in the performance log.
const DefaultPerformanceCapacity = 1000

// Record is a signal kept for performance evaluation.
// Outcome is only meaningful if Attributed is set by an external collaborator.
type Record struct {
	Signal     model.Signal `json:"signal"`
	Outcome    float64      `json:"outcome"`
	Attributed bool         `json:"attributed"`
}

// Performance is a bounded append-only log of signals.
type Performance struct {
	capacity int
	records  []Record
}

// NewPerformance creates a new performance log.
func NewPerformance(capacity int) *Performance {
	if capacity <= 0 {
		capacity = DefaultPerformanceCapacity
	}
	return &Performance{
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

// Append adds the signals to the log, truncating the oldest records on overflow.
func (p *Performance) Append(signals ...model.Signal) {
	for _, s := range signals {
		p.records = append(p.records, Record{Signal: s})
	}
	if over := len(p.records) - p.capacity; over > 0 {
		p.records = append(p.records[:0:0], p.records[over:]...)
	}
}

// Len returns the number of records.
func (p *Performance) Len() int {
	return len(p.records)
}

// Last returns a copy of the last n records, oldest first.
func (p *Performance) Last(n int) []Record {
	if n > len(p.records) || n < 0 {
		n = len(p.records)
	}
	rr := make([]Record, n)
	copy(rr, p.records[len(p.records)-n:])
	return rr
}

// Attribute sets the realised outcome of the latest signal of the strategy at the given time.
func (p *Performance) Attribute(strategy model.StrategyID, t time.Time, outcome float64) bool {
	for i := len(p.records) - 1; i >= 0; i-- {
		r := p.records[i]
		if r.Signal.Strategy == strategy && r.Signal.Time.Equal(t) {
			p.records[i].Outcome = outcome
			p.records[i].Attributed = true
			return true
		}
	}
	return false
}
