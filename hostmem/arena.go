// This file is part of Emublocks.
//
// Emublocks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emublocks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emublocks.  If not, see <https://www.gnu.org/licenses/>.

package hostmem

import (
	"sync"

	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/hostblocks"
	"github.com/jetsetilly/emublocks/logger"
)

// Patterns for curated errors created by the package.
const (
	ZeroAllocation = "hostmem: cannot allocate zero bytes for %s"
	UnknownRegion  = "hostmem: region is not part of this arena (%s)"
	Mmap           = "hostmem: mmap of %d bytes: %v"
	Munmap         = "hostmem: munmap of %d bytes: %v"
)

// Arena allocates and keeps track of regions.
type Arena struct {
	crit    sync.Mutex
	regions []*Region
}

// NewArena is the preferred method of initialisation for the Arena type.
func NewArena() *Arena {
	return &Arena{}
}

// Allocate a new region of the specified size. The memory is zeroed.
func (a *Arena) Allocate(label string, size uint32) (*Region, error) {
	if size == 0 {
		return nil, curated.Errorf(ZeroAllocation, label)
	}

	data, err := allocate(size)
	if err != nil {
		return nil, err
	}

	r := &Region{label: label, data: data}

	a.crit.Lock()
	a.regions = append(a.regions, r)
	a.crit.Unlock()

	logger.Logf(logger.Allow, "hostmem", "allocated %s", r)

	return r, nil
}

// Lookup returns the region containing the host pointer and the offset of the
// pointer into that region.
func (a *Arena) Lookup(ptr hostblocks.HostPointer) (*Region, uint32, bool) {
	a.crit.Lock()
	defer a.crit.Unlock()

	for _, r := range a.regions {
		if o, ok := r.Offset(ptr); ok {
			return r, o, true
		}
	}
	return nil, 0, false
}

// Release a region. The region must not be used by a hostblocks.Table when it
// is released.
func (a *Arena) Release(r *Region) error {
	a.crit.Lock()
	defer a.crit.Unlock()

	for i := range a.regions {
		if a.regions[i] == r {
			a.regions = append(a.regions[:i], a.regions[i+1:]...)
			data := r.data
			r.data = nil
			return release(data)
		}
	}

	return curated.Errorf(UnknownRegion, r.label)
}

// ReleaseAll releases every region in the arena.
func (a *Arena) ReleaseAll() error {
	a.crit.Lock()
	defer a.crit.Unlock()

	var err error
	for _, r := range a.regions {
		data := r.data
		r.data = nil
		if e := release(data); e != nil && err == nil {
			err = e
		}
	}
	a.regions = a.regions[:0]

	return err
}
