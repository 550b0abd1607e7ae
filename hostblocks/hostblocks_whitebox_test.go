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
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/prefs"
	"github.com/jetsetilly/emublocks/test"
)

func TestGenerationGroups(t *testing.T) {
	gen := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x0010, Size: 0x10, Host: 0x1010, GroupStart: 0},
		{GuestStart: 0x0020, Size: 0x10, Host: 0x2000, GroupStart: 2},
		{GuestStart: 0x0030, Size: 0x10, Host: 0x3000, GroupStart: 3},
		{GuestStart: 0x0040, Size: 0x10, Host: 0x3000, GroupStart: 3},
	})

	test.DemandEquality(t, len(gen.groups), 3)
	test.ExpectEquality(t, gen.groups[0].start, 0)
	test.ExpectEquality(t, gen.groups[0].end, 2)
	test.ExpectEquality(t, gen.groups[1].start, 2)
	test.ExpectEquality(t, gen.groups[1].end, 3)
	test.ExpectEquality(t, gen.groups[2].start, 3)
	test.ExpectEquality(t, gen.groups[2].end, 5)
	test.ExpectEquality(t, gen.groupOf[4], 2)

	for i := range gen.groups {
		_, ok := gen.groups[i].hint()
		test.ExpectFailure(t, ok)
	}

	test.ExpectEquality(t, gen.origins[origin{host: 0x3000, guest: 0x40}], 4)
}

func TestFastPath(t *testing.T) {
	gen := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x0010, Size: 0x10, Host: 0x2000, GroupStart: 1},
	})

	idx, ok := gen.findGuest(0x18, true)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, idx, 1)
	test.ExpectEquality(t, gen.recent.Load(), int32(1))

	// recent block is not updated if the fast path is not being used
	idx, ok = gen.findGuest(0x08, false)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, idx, 0)
	test.ExpectEquality(t, gen.recent.Load(), int32(1))

	_, ok = gen.findGuest(0x20, true)
	test.ExpectFailure(t, ok)
}

func TestDescendsFrom(t *testing.T) {
	old := Descriptor{GuestStart: 0x1100, Size: 0x100, Host: 0x5100}

	test.ExpectSuccess(t, Descriptor{GuestStart: 0x1000, Size: 0x200, Host: 0x5000}.descendsFrom(old))
	test.ExpectSuccess(t, Descriptor{GuestStart: 0x1100, Size: 0x10, Host: 0x5100}.descendsFrom(old))

	// covers the guest start but the host memory is different
	test.ExpectFailure(t, Descriptor{GuestStart: 0x1000, Size: 0x200, Host: 0x6000}.descendsFrom(old))

	// doesn't cover the guest start
	test.ExpectFailure(t, Descriptor{GuestStart: 0x1101, Size: 0x200, Host: 0x5101}.descendsFrom(old))
}

func TestMigrateUnhinted(t *testing.T) {
	old := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x0010, Size: 0x10, Host: 0x2000, GroupStart: 1},
	})
	old.groups[1].setHint(1)

	gen := newGeneration(2, []Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x0010, Size: 0x08, Host: 0x2000, GroupStart: 1},
		{GuestStart: 0x0018, Size: 0x08, Host: 0x2008, GroupStart: 1},
	})

	n, err := migrateHints(old, gen)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 1)

	_, ok := gen.groups[0].hint()
	test.ExpectFailure(t, ok)

	h, ok := gen.groups[1].hint()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, h, 1)
}

func TestMigrateMissing(t *testing.T) {
	old := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
	})
	gen := newGeneration(2, []Descriptor{
		{GuestStart: 0x0004, Size: 0x10, Host: 0x1004},
	})

	_, err := migrateHints(old, gen)
	test.ExpectSuccess(t, curated.Is(err, MissingDescendant))
}

func TestCovers(t *testing.T) {
	gen := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x08, Host: 0x1000},
		{GuestStart: 0x0008, Size: 0x08, Host: 0x1008, GroupStart: 0},
		{GuestStart: 0x0020, Size: 0x10, Host: 0x1000, GroupStart: 0},
	})
	g := &gen.groups[0]

	// covered by two pieces
	test.ExpectSuccess(t, gen.covers(g, Descriptor{GuestStart: 0x0000, Size: 0x10, Host: 0x1000}))
	test.ExpectSuccess(t, gen.covers(g, Descriptor{GuestStart: 0x0004, Size: 0x08, Host: 0x1004}))

	// covered by the mirror
	test.ExpectSuccess(t, gen.covers(g, Descriptor{GuestStart: 0x0020, Size: 0x10, Host: 0x1000}))

	// extends beyond the pieces
	test.ExpectFailure(t, gen.covers(g, Descriptor{GuestStart: 0x0000, Size: 0x11, Host: 0x1000}))

	// guest range is mapped but to different host memory
	test.ExpectFailure(t, gen.covers(g, Descriptor{GuestStart: 0x0008, Size: 0x08, Host: 0x1000}))
}

func TestFindMirror(t *testing.T) {
	gen := newGeneration(1, []Descriptor{
		{GuestStart: 0x0000, Size: 0x08, Host: 0x1000},
		{GuestStart: 0x0008, Size: 0x08, Host: 0x1008, GroupStart: 0},
		{GuestStart: 0x0020, Size: 0x08, Host: 0x1000, GroupStart: 0},
		{GuestStart: 0x0028, Size: 0x08, Host: 0x1008, GroupStart: 0},
	})
	g := &gen.groups[0]

	idx, ok := gen.findMirror(g, 2, 0x100c)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, idx, 3)

	idx, ok = gen.findMirror(g, 0, 0x100c)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, idx, 1)

	_, ok = gen.findMirror(g, 0, 0x2000)
	test.ExpectFailure(t, ok)
}

func TestValidateMirrors(t *testing.T) {
	// blocks of the same group can share host memory
	err := validate([]Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x1000, Size: 0x10, Host: 0x1000, GroupStart: 0},
		{GuestStart: 0x2000, Size: 0x10, Host: 0x2000, GroupStart: 2},
	})
	test.ExpectSuccess(t, err)

	// but not with another group, even if the overlapping blocks are not next
	// to each other in the list
	err = validate([]Descriptor{
		{GuestStart: 0x0000, Size: 0x10, Host: 0x1000},
		{GuestStart: 0x1000, Size: 0x10, Host: 0x3000, GroupStart: 0},
		{GuestStart: 0x2000, Size: 0x10, Host: 0x2000, GroupStart: 2},
	})
	test.ExpectSuccess(t, curated.Is(err, HostOverlap))

	// an empty list is fine
	test.ExpectSuccess(t, validate(nil))
}

func TestPreferences(t *testing.T) {
	tbl := NewTable(nil)
	test.ExpectEquality(t, tbl.retryLimit.Load(), int32(defaultRetryLimit))
	test.ExpectEquality(t, tbl.fastPath.Load(), defaultFastPath)

	pth := filepath.Join(t.TempDir(), prefs.DefaultPrefsFile)

	// missing preferences file is not an error
	test.ExpectSuccess(t, tbl.Prefs.loadFrom(pth))

	test.ExpectSuccess(t, tbl.Prefs.RetryLimit.Set(10))
	test.ExpectSuccess(t, tbl.Prefs.FastPath.Set(false))
	test.ExpectEquality(t, tbl.retryLimit.Load(), int32(10))
	test.ExpectEquality(t, tbl.fastPath.Load(), false)
	test.DemandSuccess(t, tbl.Prefs.Save())

	_, err := os.Stat(pth)
	test.ExpectSuccess(t, err)

	// values are restored from disk and passed to the table
	tbl.Prefs.SetDefaults()
	test.ExpectEquality(t, tbl.retryLimit.Load(), int32(defaultRetryLimit))
	test.ExpectSuccess(t, tbl.Prefs.loadFrom(pth))
	test.ExpectEquality(t, tbl.retryLimit.Load(), int32(10))
	test.ExpectEquality(t, tbl.fastPath.Load(), false)

	// a negative retry limit means no limit
	test.ExpectSuccess(t, tbl.Prefs.RetryLimit.Set(-1))
	test.ExpectEquality(t, tbl.retryLimit.Load(), int32(0))
}
