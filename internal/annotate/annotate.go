// Package annotate applies the resolution engine to whole contest logs,
// attaching entity information to every contact.
package annotate

import (
	"sync"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/logging"
)

// Lookup is the single operation annotate needs from the resolution engine.
type Lookup interface {
	Resolve(callsign string) entity.FullEntityInfo
}

// Contact is one annotated log entry.
type Contact struct {
	Callsign string                `json:"call"`
	Info     entity.FullEntityInfo `json:"info"`
}

// Annotator fans a contest log out over a fixed worker pool. The resolver
// is pure and the tables immutable, so workers need no coordination beyond
// writing to their own output slots.
type Annotator struct {
	lookup  Lookup
	workers int
}

// New returns an Annotator using the given number of workers; values below
// one are clamped to one.
func New(lookup Lookup, workers int) *Annotator {
	if workers < 1 {
		workers = 1
	}
	return &Annotator{lookup: lookup, workers: workers}
}

// Annotate resolves every callsign and returns the contacts in input order.
// Unknown results are counted and logged but never fail the batch; deciding
// what an Unknown means for scoring is the caller's concern.
func (a *Annotator) Annotate(callsigns []string) []Contact {
	contacts := make([]Contact, len(callsigns))
	if len(callsigns) == 0 {
		return contacts
	}

	indexes := make(chan int)
	var unknown int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				info := a.lookup.Resolve(callsigns[i])
				contacts[i] = Contact{Callsign: callsigns[i], Info: info}
				if info.IsUnknown() {
					mu.Lock()
					unknown++
					mu.Unlock()
					logging.Debug("No entity for callsign %q", callsigns[i])
				}
			}
		}()
	}

	for i := range callsigns {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	if unknown > 0 {
		logging.Warn("Annotated %d contacts; %d resolved to no entity.", len(callsigns), unknown)
	} else {
		logging.Info("Annotated %d contacts.", len(callsigns))
	}

	return contacts
}
