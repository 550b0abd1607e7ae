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

import (
	"sync"
	"sync/atomic"
)

// Materializer is implemented by the collaborator that owns the guest memory
// map. Materialize() is called by GuestToHost() when no block covers the
// address.
//
// Before returning, the implementation must make sure that a block covering
// the address will be found by a subsequent lookup, normally by calling
// Replace(). If it cannot do that it should panic. GuestToHost() will
// otherwise keep asking, unless a retry limit has been set in the preferences.
type Materializer interface {
	Materialize(address uint32)
}

// MaterializerFunc allows an ordinary function to be used as a Materializer.
type MaterializerFunc func(address uint32)

// Materialize implements the Materializer interface.
func (f MaterializerFunc) Materialize(address uint32) {
	f(address)
}

// wrapper so that the materializer can be stored atomically.
type materializerRef struct {
	m Materializer
}

// Stats records events in the life of a Table.
type Stats struct {
	Generation       uint64
	Blocks           int
	Groups           int
	Misses           uint64
	Materializations uint64
	Replacements     uint64
}

// Table is the guest/host translation table. The zero value is not usable.
// Use NewTable().
type Table struct {
	// the current generation. replaced wholesale by Replace()
	current atomic.Pointer[generation]

	// serialises calls to Replace() and Close(). lookups never take the lock
	crit sync.Mutex

	materializer atomic.Pointer[materializerRef]

	Prefs *Preferences

	// copies of preference values for the lookup path. updated by the
	// preference hooks
	retryLimit atomic.Int32
	fastPath   atomic.Bool
	logReplace atomic.Bool

	misses           atomic.Uint64
	materializations atomic.Uint64
	replacements     atomic.Uint64
}

// NewTable is the preferred method of initialisation for the Table type. The
// table is created empty. The Materializer can be nil and can be set later
// with Plumb().
func NewTable(m Materializer) *Table {
	tbl := &Table{}
	tbl.current.Store(newGeneration(0, nil))
	tbl.Plumb(m)
	tbl.Prefs = newPreferences(tbl)
	return tbl
}

// Plumb attaches a new Materializer to the table.
func (tbl *Table) Plumb(m Materializer) {
	tbl.materializer.Store(&materializerRef{m: m})
}

// Close forgets the current generation. Host memory is not touched. The table
// can still be used after Close() and will behave as though it is empty.
func (tbl *Table) Close() {
	tbl.crit.Lock()
	defer tbl.crit.Unlock()
	old := tbl.current.Load()
	tbl.current.Store(newGeneration(old.number+1, nil))
}

// Generation returns the number of the current generation. The number
// increases by one with every successful Replace() or Close().
func (tbl *Table) Generation() uint64 {
	return tbl.current.Load().number
}

// Snapshot returns a read-only view of the current generation.
func (tbl *Table) Snapshot() []BlockInfo {
	return tbl.current.Load().snapshot()
}

// Stats returns the current statistics for the table.
func (tbl *Table) Stats() Stats {
	gen := tbl.current.Load()
	return Stats{
		Generation:       gen.number,
		Blocks:           len(gen.blocks),
		Groups:           len(gen.groups),
		Misses:           tbl.misses.Load(),
		Materializations: tbl.materializations.Load(),
		Replacements:     tbl.replacements.Load(),
	}
}
