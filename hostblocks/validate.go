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
	"cmp"
	"slices"

	"github.com/jetsetilly/emublocks/curated"
)

// validate checks that a list of descriptors can form a generation:
//
//   - every block has a size and does not wrap
//   - the members of a group are consecutive and refer to the first member
//   - guest ranges are pairwise disjoint
//   - host ranges of different groups are disjoint
//
// blocks of the same group may share host memory. that is how mirrors are
// described.
func validate(descs []Descriptor) error {
	for i, d := range descs {
		if d.Size == 0 {
			return curated.Errorf(ZeroSize, i)
		}
		if d.guestEnd() > 1<<32 || d.Host+HostPointer(d.Size) < d.Host {
			return curated.Errorf(AddressWrap, i)
		}

		gs := int(d.GroupStart)
		if gs != i && (i == 0 || int(descs[i-1].GroupStart) != gs) {
			return curated.Errorf(BadGroupStart, i, gs)
		}
	}

	if len(descs) < 2 {
		return nil
	}

	order := make([]int, len(descs))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(descs[a].GuestStart, descs[b].GuestStart)
	})
	for k := 1; k < len(order); k++ {
		prev := descs[order[k-1]]
		if uint64(descs[order[k]].GuestStart) < prev.guestEnd() {
			return curated.Errorf(GuestOverlap, order[k-1], order[k])
		}
	}

	// the host memory covered by each group
	type span struct {
		group int
		lo    uint64
		hi    uint64
	}
	var spans []span
	for i, d := range descs {
		if int(d.GroupStart) == i {
			spans = append(spans, span{group: i, lo: uint64(d.Host), hi: d.hostEnd()})
			continue
		}
		s := &spans[len(spans)-1]
		s.lo = min(s.lo, uint64(d.Host))
		s.hi = max(s.hi, d.hostEnd())
	}
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Compare(a.lo, b.lo)
	})
	for k := 1; k < len(spans); k++ {
		if spans[k].lo < spans[k-1].hi {
			return curated.Errorf(HostOverlap, spans[k-1].group, spans[k].group)
		}
	}

	return nil
}
