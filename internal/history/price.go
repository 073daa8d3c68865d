package history

import (
	"fmt"
	"time"

	"github.com/drakos74/coin-ensemble/internal/buffer"
	coinmath "github.com/drakos74/coin-ensemble/internal/math"
	"github.com/drakos74/coin-ensemble/internal/model"
)

// DefaultPriceCapacity is the number of samples kept per asset.
const DefaultPriceCapacity = 200

// Price is a bounded, time ordered buffer of the recent prices of one asset.
type Price struct {
	coin    model.Coin
	samples *buffer.Ring[model.Price]
}

// NewPrice creates a new price history for the given coin.
func NewPrice(c model.Coin, capacity int) *Price {
	if capacity <= 0 {
		capacity = DefaultPriceCapacity
	}
	return &Price{
		coin:    c,
		samples: buffer.NewRing[model.Price](capacity),
	}
}

// Push appends a sample.
// A sample with the same timestamp as the last one replaces it,
// an older one is rejected to keep the timestamps non-decreasing.
// Non-positive and non-finite prices are rejected.
func (p *Price) Push(t time.Time, v float64) error {
	if v <= 0 || !coinmath.Valid(v) {
		return fmt.Errorf("invalid price %v for %s", v, p.coin)
	}
	if last, ok := p.samples.Last(); ok {
		if t.Before(last.Time) {
			return fmt.Errorf("out of order sample for %s: %v before %v", p.coin, t, last.Time)
		}
		if t.Equal(last.Time) {
			p.samples.Replace(model.PriceAt(t, v))
			return nil
		}
	}
	p.samples.Push(model.PriceAt(t, v))
	return nil
}

// Len returns the number of samples.
func (p *Price) Len() int {
	return p.samples.Size()
}

// Samples returns the samples, oldest first.
func (p *Price) Samples() []model.Price {
	return p.samples.Get()
}

// Book keeps the price histories of all tracked assets.
type Book struct {
	capacity int
	prices   map[model.Coin]*Price
}

// NewBook creates a new price book.
func NewBook(capacity int) *Book {
	return &Book{
		capacity: capacity,
		prices:   make(map[model.Coin]*Price),
	}
}

// Push adds a price sample for the given coin.
func (b *Book) Push(c model.Coin, t time.Time, v float64) error {
	p, ok := b.prices[c]
	if !ok {
		p = NewPrice(c, b.capacity)
		b.prices[c] = p
	}
	return p.Push(t, v)
}

// Ingest adds the current prices of the market context.
// It returns the coins for which the sample was rejected.
func (b *Book) Ingest(mc model.MarketContext) map[model.Coin]error {
	errs := make(map[model.Coin]error)
	for _, cp := range mc.CurrentPrices() {
		if err := b.Push(cp.Coin, mc.Time, cp.Price); err != nil {
			errs[cp.Coin] = err
		}
	}
	return errs
}

// Aligned returns the last common samples of the two coins, oldest first.
// Samples are matched on their timestamp, so gaps in either series are skipped.
func (b *Book) Aligned(y, x model.Coin) (ys, xs []float64, interval time.Duration) {
	py, ok := b.prices[y]
	if !ok {
		return nil, nil, 0
	}
	px, ok := b.prices[x]
	if !ok {
		return nil, nil, 0
	}
	index := make(map[int64]float64, px.Len())
	for _, s := range px.Samples() {
		index[s.Time.UnixNano()] = s.Value
	}
	var first, last time.Time
	for _, s := range py.Samples() {
		if v, ok := index[s.Time.UnixNano()]; ok {
			if len(ys) == 0 {
				first = s.Time
			}
			last = s.Time
			ys = append(ys, s.Value)
			xs = append(xs, v)
		}
	}
	if len(ys) > 1 {
		interval = last.Sub(first) / time.Duration(len(ys)-1)
	}
	return ys, xs, interval
}
