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

package topology

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/hostblocks"
	"github.com/jetsetilly/emublocks/hostmem"
	"github.com/jetsetilly/emublocks/logger"
)

// Patterns for curated errors created by the package.
const (
	UnknownRegion   = "topology: unknown region (%s)"
	DuplicateRegion = "topology: region already exists (%s)"
	GuestOverlap    = "topology: %s at %#08x overlaps %s"
	InvalidSplit    = "topology: invalid split of %s at offset %#x"
	UnmappedAddress = "topology: no region covers guest address %#08x"
	InvalidRegion   = "topology: invalid region %s: %s"
)

// Region is a named area of guest memory.
type Region struct {
	Name   string
	Origin uint32
	Size   uint32
	Lazy   bool

	mirrors []uint32
	splits  []uint32

	backing *hostmem.Region
}

func (r *Region) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %#08x-%#08x", r.Name, r.Origin, uint64(r.Origin)+uint64(r.Size)-1))
	for _, m := range r.mirrors {
		s.WriteString(fmt.Sprintf(" mirror %#08x", m))
	}
	if len(r.splits) > 0 {
		s.WriteString(fmt.Sprintf(" split %d ways", len(r.splits)+1))
	}
	if r.backing == nil {
		s.WriteString(" (unattached)")
	}
	return s.String()
}

// Attached returns true if the region has host memory.
func (r *Region) Attached() bool {
	return r.backing != nil
}

// Backing returns the host memory of the region. Returns nil if the region is
// not attached.
func (r *Region) Backing() *hostmem.Region {
	return r.backing
}

// Origins returns the guest addresses of the region. The primary origin is
// first, followed by the mirrors in the order they were added.
func (r *Region) Origins() []uint32 {
	return r.origins()
}

// the guest addresses of the region, primary origin first
func (r *Region) origins() []uint32 {
	return append([]uint32{r.Origin}, r.mirrors...)
}

// the offset and size of each piece of the region
func (r *Region) pieces() [][2]uint32 {
	p := make([][2]uint32, 0, len(r.splits)+1)
	start := uint32(0)
	for _, s := range r.splits {
		p = append(p, [2]uint32{start, s - start})
		start = s
	}
	return append(p, [2]uint32{start, r.Size - start})
}

func (r *Region) coversGuest(address uint32) bool {
	for _, o := range r.origins() {
		if address >= o && address-o < r.Size {
			return true
		}
	}
	return false
}

// Topology is the guest memory map. It is the collaborator of a
// hostblocks.Table and implements the hostblocks.Materializer interface.
type Topology struct {
	crit sync.Mutex

	arena   *hostmem.Arena
	tbl     *hostblocks.Table
	regions []*Region
}

// NewTopology is the preferred method of initialisation for the Topology
// type. The new topology is plumbed into the table as its Materializer.
func NewTopology(arena *hostmem.Arena, tbl *hostblocks.Table) *Topology {
	t := &Topology{
		arena: arena,
		tbl:   tbl,
	}
	tbl.Plumb(t)
	return t
}

func (t *Topology) String() string {
	t.crit.Lock()
	defer t.crit.Unlock()

	s := strings.Builder{}
	for _, r := range t.regions {
		s.WriteString(r.String())
		s.WriteString("\n")
	}
	return s.String()
}

// Table returns the table the topology was created for.
func (t *Topology) Table() *hostblocks.Table {
	return t.tbl
}

// Region returns the named region.
func (t *Topology) Region(name string) (*Region, bool) {
	t.crit.Lock()
	defer t.crit.Unlock()
	r := t.region(name)
	return r, r != nil
}

func (t *Topology) region(name string) *Region {
	for _, r := range t.regions {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// returns an error if the guest range overlaps any existing region or
// mirror.
func (t *Topology) checkOverlap(name string, origin uint32, size uint32) error {
	end := uint64(origin) + uint64(size)
	for _, r := range t.regions {
		for _, o := range r.origins() {
			if uint64(origin) < uint64(o)+uint64(r.Size) && uint64(o) < end {
				return curated.Errorf(GuestOverlap, name, origin, r.Name)
			}
		}
	}
	return nil
}

// AddRegion adds a new region to the topology. A region that is not lazy is
// given host memory immediately. The table is not updated until Apply() is
// called.
func (t *Topology) AddRegion(name string, origin uint32, size uint32, lazy bool) error {
	t.crit.Lock()
	defer t.crit.Unlock()

	if size == 0 {
		return curated.Errorf(InvalidRegion, name, "zero size")
	}
	if uint64(origin)+uint64(size) > 1<<32 {
		return curated.Errorf(InvalidRegion, name, "beyond end of guest address space")
	}
	if t.region(name) != nil {
		return curated.Errorf(DuplicateRegion, name)
	}
	if err := t.checkOverlap(name, origin, size); err != nil {
		return err
	}

	r := &Region{
		Name:   name,
		Origin: origin,
		Size:   size,
		Lazy:   lazy,
	}

	if !lazy {
		if err := t.attach(r); err != nil {
			return err
		}
	}

	t.regions = append(t.regions, r)

	return nil
}

func (t *Topology) attach(r *Region) error {
	var err error
	r.backing, err = t.arena.Allocate(r.Name, r.Size)
	if err != nil {
		return curated.Errorf(InvalidRegion, r.Name, err)
	}
	return nil
}

// AddMirror maps the named region at another guest address.
func (t *Topology) AddMirror(name string, origin uint32) error {
	t.crit.Lock()
	defer t.crit.Unlock()

	r := t.region(name)
	if r == nil {
		return curated.Errorf(UnknownRegion, name)
	}
	if uint64(origin)+uint64(r.Size) > 1<<32 {
		return curated.Errorf(InvalidRegion, name, "mirror beyond end of guest address space")
	}
	if err := t.checkOverlap(name, origin, r.Size); err != nil {
		return err
	}

	r.mirrors = append(r.mirrors, origin)

	return nil
}

// Split divides the named region into more blocks at the specified offsets.
// The host memory and guest addresses of the region do not change.
func (t *Topology) Split(name string, offsets ...uint32) error {
	t.crit.Lock()
	defer t.crit.Unlock()

	r := t.region(name)
	if r == nil {
		return curated.Errorf(UnknownRegion, name)
	}

	for _, o := range offsets {
		if o == 0 || o >= r.Size {
			return curated.Errorf(InvalidSplit, name, o)
		}
	}

	r.splits = append(r.splits, offsets...)
	slices.Sort(r.splits)
	r.splits = slices.Compact(r.splits)

	return nil
}

// Unsplit removes all the splits from the named region.
func (t *Topology) Unsplit(name string) error {
	t.crit.Lock()
	defer t.crit.Unlock()

	r := t.region(name)
	if r == nil {
		return curated.Errorf(UnknownRegion, name)
	}
	r.splits = r.splits[:0]

	return nil
}

// Descriptors returns the list of descriptors for the attached regions.
func (t *Topology) Descriptors() []hostblocks.Descriptor {
	t.crit.Lock()
	defer t.crit.Unlock()
	return t.descriptors()
}

func (t *Topology) descriptors() []hostblocks.Descriptor {
	var descs []hostblocks.Descriptor

	for _, r := range t.regions {
		if r.backing == nil {
			continue
		}

		groupStart := uint32(len(descs))
		host := r.backing.Pointer()

		for _, o := range r.origins() {
			for _, p := range r.pieces() {
				descs = append(descs, hostblocks.Descriptor{
					GuestStart: o + p[0],
					Size:       p[1],
					Host:       host + hostblocks.HostPointer(p[0]),
					GroupStart: groupStart,
				})
			}
		}
	}

	return descs
}

// Apply the topology to the table.
func (t *Topology) Apply() error {
	t.crit.Lock()
	defer t.crit.Unlock()
	return t.tbl.Replace(t.descriptors())
}

// Materialize implements the hostblocks.Materializer interface. The lazy
// region covering the address is given host memory and the topology is
// applied to the table.
//
// If no region covers the address then the guest is accessing memory that
// does not exist. There is nothing sensible to be done and so Materialize()
// panics.
func (t *Topology) Materialize(address uint32) {
	t.crit.Lock()
	defer t.crit.Unlock()

	for _, r := range t.regions {
		if !r.coversGuest(address) {
			continue
		}

		if r.backing == nil {
			if err := t.attach(r); err != nil {
				panic(err)
			}
			logger.Logf(logger.Allow, "topology", "attached %s for guest address %#08x", r.Name, address)
		}

		if err := t.tbl.Replace(t.descriptors()); err != nil {
			panic(err)
		}

		return
	}

	err := curated.Errorf(UnmappedAddress, address)
	logger.Log(logger.Allow, "topology", err)
	panic(err)
}

// Release detaches the topology from the table and releases all host memory.
// The table is closed first so that it does not refer to released memory.
func (t *Topology) Release() error {
	t.crit.Lock()
	defer t.crit.Unlock()

	t.tbl.Close()
	for _, r := range t.regions {
		r.backing = nil
	}

	return t.arena.ReleaseAll()
}

// Regions returns the names of every region in the order they were added.
func (t *Topology) Regions() []string {
	t.crit.Lock()
	defer t.crit.Unlock()

	names := make([]string, 0, len(t.regions))
	for _, r := range t.regions {
		names = append(names, r.Name)
	}
	return names
}
