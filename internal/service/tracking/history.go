package tracking

import (
	"iter"
	"sync"

	"github.com/Temutjin2k/ride-tracker/internal/domain/models"
	"github.com/Temutjin2k/ride-tracker/pkg/metrics"
)

const DefaultHistoryCapacity = 50

// History is a fixed-capacity ring of recent location samples, oldest evicted first.
type History struct {
	mu    sync.RWMutex
	items []models.LocationSample
	start int
	size  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{items: make([]models.LocationSample, capacity)}
}

func (h *History) Append(s models.LocationSample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	capacity := len(h.items)
	if h.size < capacity {
		h.items[(h.start+h.size)%capacity] = s
		h.size++
	} else {
		h.items[h.start] = s
		h.start = (h.start + 1) % capacity
	}
	metrics.LocationHistorySize.Set(float64(h.size))
}

// Latest returns the most recent sample.
func (h *History) Latest() (models.LocationSample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return models.LocationSample{}, false
	}
	return h.items[(h.start+h.size-1)%len(h.items)], true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *History) Cap() int {
	return len(h.items)
}

// All yields the buffered samples oldest first. Each call iterates over a copy
// taken when iteration starts, so the sequence can be ranged over repeatedly.
func (h *History) All() iter.Seq[models.LocationSample] {
	return func(yield func(models.LocationSample) bool) {
		for _, s := range h.snapshot() {
			if !yield(s) {
				return
			}
		}
	}
}

func (h *History) snapshot() []models.LocationSample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.LocationSample, h.size)
	for i := range h.size {
		out[i] = h.items[(h.start+i)%len(h.items)]
	}
	return out
}
