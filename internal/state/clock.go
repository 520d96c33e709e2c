package state

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource hands out stroke ids that are unique across sites: a per-process
// site id plus a logical counter.
type IDSource struct {
	site    string
	counter atomic.Uint64
}

// NewIDSource returns a source with a fresh random site id.
func NewIDSource() *IDSource {
	return &IDSource{site: uuid.NewString()}
}

// Site returns the site id.
func (s *IDSource) Site() string { return s.site }

// Next returns a new stroke id.
func (s *IDSource) Next() string {
	return fmt.Sprintf("stroke-%s-%d", s.site, s.counter.Add(1))
}
