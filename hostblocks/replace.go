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

// Replace publishes a new generation built from the list of descriptors. The
// list is copied and can be reused by the caller.
//
// An invalid list returns an InvalidDescriptors error and the table is left
// unchanged.
//
// Every group in the current generation must have a descendant in the new
// list: a block with the same host pointer and guest start as the first block
// of the group. The host memory of a group can be divided differently in the
// new list but it must not disappear or shrink. Every guest address of every
// block in the old group must be mapped by the new group to the same host
// address. If a group has no descendant then
// Replace() panics with a MissingDescendant error. The table is left
// unchanged in this case too.
//
// Hints are carried forward to the new generation so that the block that was
// last used in a group is still the last used block after the replacement.
//
// Calls to Replace() are serialised. Lookups running at the same time will
// complete with the generation they started with.
func (tbl *Table) Replace(descs []Descriptor) error {
	tbl.crit.Lock()
	defer tbl.crit.Unlock()

	if err := validate(descs); err != nil {
		return curated.Errorf(InvalidDescriptors, err)
	}

	old := tbl.current.Load()
	gen := newGeneration(old.number+1, descs)

	migrated, err := migrateHints(old, gen)
	if err != nil {
		logger.Log(logger.Allow, "hostblocks", err)
		panic(err)
	}

	tbl.current.Store(gen)
	tbl.replacements.Add(1)

	if tbl.logReplace.Load() {
		logger.Logf(logger.Allow, "hostblocks", "generation %d: %d blocks in %d groups (%d hints carried forward)",
			gen.number, len(gen.blocks), len(gen.groups), migrated)
	}

	return nil
}

// migrateHints copies the hints of every group in the old generation to the
// new generation. returns the number of hints copied.
func migrateHints(old *generation, gen *generation) (int, error) {
	var migrated int

	for gi := range old.groups {
		og := &old.groups[gi]
		first := old.blocks[og.start]

		anchor, ok := gen.origins[origin{host: first.Host, guest: first.GuestStart}]
		if !ok {
			return migrated, curated.Errorf(MissingDescendant, og.start, first.Host, first.GuestStart)
		}

		ng := gen.group(anchor)

		// every block of the old group must still be mapped by the new group.
		// the blocks covering it may be divided differently
		for i := og.start; i < og.end; i++ {
			if !gen.covers(ng, old.blocks[i]) {
				b := old.blocks[i]
				return migrated, curated.Errorf(MissingDescendant, i, b.Host, b.GuestStart)
			}
		}

		h, ok := og.hint()
		if !ok {
			continue
		}
		active := old.blocks[h]

		// the active block is most likely at the same displacement from the
		// anchor as it was from the start of the old group
		candidate := anchor + (h - og.start)
		if candidate >= ng.start && candidate < ng.end && gen.blocks[candidate].descendsFrom(active) {
			ng.setHint(candidate)
			migrated++
			continue
		}

		// the group has been divided differently. look for the block that now
		// covers the guest start of the old active block
		for i := ng.start; i < ng.end; i++ {
			if gen.blocks[i].descendsFrom(active) {
				ng.setHint(i)
				migrated++
				break
			}
		}
	}

	return migrated, nil
}
