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
	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/logger"
)

// GuestToHost returns the host pointer for the guest address.
//
// If no block covers the address then the Materializer is called and the
// lookup is started again with the current generation. An error is returned
// only if there is no Materializer or if the retry limit in the preferences
// has been reached.
func (tbl *Table) GuestToHost(address uint32) (HostPointer, error) {
	var attempts int

	for {
		// the generation is loaded afresh on every attempt because the
		// materializer will very likely have replaced it
		gen := tbl.current.Load()

		if idx, ok := gen.findGuest(address, tbl.fastPath.Load()); ok {
			gen.group(idx).setHint(idx)
			b := gen.blocks[idx]
			return b.Host + HostPointer(address-b.GuestStart), nil
		}

		tbl.misses.Add(1)

		ref := tbl.materializer.Load()
		if ref.m == nil {
			return 0, curated.Errorf(NoMaterializer, address)
		}

		if limit := int(tbl.retryLimit.Load()); limit > 0 && attempts >= limit {
			return 0, curated.Errorf(RetryLimit, address, attempts)
		}
		attempts++

		tbl.materializations.Add(1)
		logger.Logf(logger.Allow, "hostblocks", "materializing guest address %#08x", address)
		ref.m.Materialize(address)
	}
}

// TryHostToGuest returns the guest address for the host pointer. An error is
// returned if the host pointer is not covered by any block.
//
// When the host memory is mapped at more than one guest address the hint of
// the group decides which guest address is returned. In other words, the
// guest address most recently translated with GuestToHost() is preferred.
// The hint is only used if the hinted block covers the host pointer. If it
// does not then a block of the group that continues the same mirror as the
// hinted block is preferred, before the first block covering the pointer.
func (tbl *Table) TryHostToGuest(ptr HostPointer) (uint32, error) {
	gen := tbl.current.Load()

	idx, ok := gen.findHost(ptr)
	if !ok {
		return 0, curated.Errorf(UnresolvableHostPointer, ptr)
	}

	g := gen.group(idx)
	if h, ok := g.hint(); ok {
		if gen.blocks[h].containsHost(ptr) {
			idx = h
		} else if m, ok := gen.findMirror(g, h, ptr); ok {
			idx = m
		}
	}

	b := gen.blocks[idx]
	return b.GuestStart + uint32(ptr-b.Host), nil
}

// HostToGuest returns the guest address for the host pointer. A host pointer
// not covered by any block means that the caller has a serious addressing bug
// and so HostToGuest() panics with an UnresolvableHostPointer error.
func (tbl *Table) HostToGuest(ptr HostPointer) uint32 {
	address, err := tbl.TryHostToGuest(ptr)
	if err != nil {
		logger.Log(logger.Allow, "hostblocks", err)
		panic(err)
	}
	return address
}
