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

package hostblocks

import "sync/atomic"

// value of an atomic index that has not been set.
const noIndex = -1

// group of blocks sharing one host allocation and one locality hint.
type group struct {
	// range of block indexes in the group. the blocks of a group are always
	// consecutive in the generation
	start int
	end   int

	// the block most recently used to translate a guest address
	lastUsed atomic.Int32
}

// hint returns the last used block index of the group. the second value is
// false if the group has not been used in this generation.
func (g *group) hint() (int, bool) {
	h := g.lastUsed.Load()
	if h == noIndex {
		return 0, false
	}
	return int(h), true
}

func (g *group) setHint(idx int) {
	if g.lastUsed.Load() != int32(idx) {
		g.lastUsed.Store(int32(idx))
	}
}

// key used to find the descendant of a block in a new generation.
type origin struct {
	host  HostPointer
	guest uint32
}

// generation is a complete and consistent list of blocks. nothing but the
// hints are changed once a generation has been created.
type generation struct {
	number uint64

	blocks  []Descriptor
	groupOf []int
	groups  []group

	// blocks indexed by host pointer and guest start
	origins map[origin]int

	// the block that satisified the most recent guest lookup
	recent atomic.Int32
}

// newGeneration creates a generation from a validated list of descriptors.
// every hint is unset.
func newGeneration(number uint64, descs []Descriptor) *generation {
	gen := &generation{
		number:  number,
		blocks:  make([]Descriptor, len(descs)),
		groupOf: make([]int, len(descs)),
		origins: make(map[origin]int, len(descs)),
	}
	copy(gen.blocks, descs)
	gen.recent.Store(noIndex)

	numGroups := 0
	for i, d := range descs {
		if int(d.GroupStart) == i {
			numGroups++
		}
	}
	gen.groups = make([]group, numGroups)

	g := -1
	for i, d := range descs {
		if int(d.GroupStart) == i {
			g++
			gen.groups[g].start = i
			gen.groups[g].lastUsed.Store(noIndex)
		}
		gen.groups[g].end = i + 1
		gen.groupOf[i] = g
		gen.origins[origin{host: d.Host, guest: d.GuestStart}] = i
	}

	return gen
}

// findGuest returns the index of the block containing the guest address.
func (gen *generation) findGuest(address uint32, fastPath bool) (int, bool) {
	if fastPath {
		if r := gen.recent.Load(); r != noIndex && gen.blocks[r].containsGuest(address) {
			return int(r), true
		}
	}

	for i := range gen.blocks {
		if gen.blocks[i].containsGuest(address) {
			if fastPath {
				gen.recent.Store(int32(i))
			}
			return i, true
		}
	}

	return 0, false
}

// findHost returns the index of the first block containing the host pointer.
func (gen *generation) findHost(ptr HostPointer) (int, bool) {
	for i := range gen.blocks {
		if gen.blocks[i].containsHost(ptr) {
			return i, true
		}
	}
	return 0, false
}

// covers returns true if the blocks of the group map every guest address of
// the old block to the same host address as the old block did.
func (gen *generation) covers(g *group, old Descriptor) bool {
	addr := uint64(old.GuestStart)
	end := old.guestEnd()

	for addr < end {
		next := addr
		for i := g.start; i < g.end; i++ {
			b := gen.blocks[i]
			a := uint32(addr)
			if b.containsGuest(a) && b.Host+HostPointer(a-b.GuestStart) == old.Host+HostPointer(a-old.GuestStart) {
				next = b.guestEnd()
				break // for loop
			}
		}
		if next == addr {
			return false
		}
		addr = next
	}

	return true
}

// findMirror returns the block of the group that contains the host pointer and
// that maps guest to host with the same displacement as the hinted block.
func (gen *generation) findMirror(g *group, hinted int, ptr HostPointer) (int, bool) {
	hb := gen.blocks[hinted]
	for i := g.start; i < g.end; i++ {
		b := gen.blocks[i]
		if b.containsHost(ptr) && int64(b.GuestStart)-int64(hb.GuestStart) == int64(b.Host)-int64(hb.Host) {
			return i, true
		}
	}
	return 0, false
}

// group returns the group of the block.
func (gen *generation) group(idx int) *group {
	return &gen.groups[gen.groupOf[idx]]
}

// snapshot returns a read-only copy of the generation.
func (gen *generation) snapshot() []BlockInfo {
	s := make([]BlockInfo, len(gen.blocks))
	for i, d := range gen.blocks {
		g := gen.group(i)
		s[i] = BlockInfo{
			Index:      i,
			Descriptor: d,
			Group:      g.start,
		}
		if g.start == i {
			s[i].LastUsed, s[i].HasLastUsed = g.hint()
		}
	}
	return s
}
