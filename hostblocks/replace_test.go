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

package hostblocks_test

import (
	"testing"

	"github.com/jetsetilly/emublocks/curated"
	"github.com/jetsetilly/emublocks/hostblocks"
	"github.com/jetsetilly/emublocks/test"
)

func TestInvalidDescriptors(t *testing.T) {
	tbl := newTable(t, nil, hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x100, Host: hostA})

	invalid := []struct {
		pattern string
		descs   []hostblocks.Descriptor
	}{
		{hostblocks.ZeroSize, []hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0, Host: hostA},
		}},
		{hostblocks.AddressWrap, []hostblocks.Descriptor{
			{GuestStart: 0xffffff00, Size: 0x101, Host: hostA},
		}},
		{hostblocks.BadGroupStart, []hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA, GroupStart: 1},
		}},
		{hostblocks.BadGroupStart, []hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x2000, Size: 0x100, Host: hostB, GroupStart: 1},
			{GuestStart: 0x3000, Size: 0x100, Host: hostB + 0x100, GroupStart: 0},
		}},
		{hostblocks.GuestOverlap, []hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x10ff, Size: 0x100, Host: hostB, GroupStart: 1},
		}},
		{hostblocks.HostOverlap, []hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x2000, Size: 0x100, Host: hostA + 0x80, GroupStart: 1},
		}},
	}

	for i, v := range invalid {
		err := tbl.Replace(v.descs)
		test.ExpectSuccess(t, curated.Is(err, hostblocks.InvalidDescriptors), i)
		test.ExpectSuccess(t, curated.Has(err, v.pattern), i)
	}

	// the table has not changed
	test.ExpectEquality(t, tbl.Generation(), uint64(1))
	test.ExpectEquality(t, len(tbl.Snapshot()), 1)
}

func TestDisjointness(t *testing.T) {
	tbl := newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x0000, Size: 0x100, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x0100, Size: 0x100, Host: hostA + 0x100, GroupStart: 0},
		hostblocks.Descriptor{GuestStart: 0x8000, Size: 0x200, Host: hostB, GroupStart: 2},
		hostblocks.Descriptor{GuestStart: 0x9000, Size: 0x100, Host: hostC, GroupStart: 3},
	)

	s := tbl.Snapshot()
	for i := range s {
		for j := range s {
			if i == j {
				continue
			}
			a := s[i]
			b := s[j]
			guestOverlap := uint64(a.GuestStart) < uint64(b.GuestStart)+uint64(b.Size) &&
				uint64(b.GuestStart) < uint64(a.GuestStart)+uint64(a.Size)
			hostOverlap := a.Host < b.Host+hostblocks.HostPointer(b.Size) &&
				b.Host < a.Host+hostblocks.HostPointer(a.Size)
			test.ExpectFailure(t, guestOverlap, i, j)
			test.ExpectFailure(t, hostOverlap, i, j)
		}
	}
}

// every group must survive a replacement
func TestMissingDescendant(t *testing.T) {
	tbl := newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x2000, Size: 0x100, Host: hostB, GroupStart: 1},
	)

	r := test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		})
	})
	err, ok := r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))

	// the same host memory at a different guest address is not a descendant
	r = test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x5000, Size: 0x100, Host: hostB, GroupStart: 1},
		})
	})
	err, ok = r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))

	// the table is unchanged and still usable
	test.ExpectEquality(t, tbl.Generation(), uint64(1))
	ptr, err := tbl.GuestToHost(0x2010)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ptr, hostB+0x10)

	// a group made of two pieces of host memory
	tbl = newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x4000, Size: 0x100, Host: hostA + 0x100, GroupStart: 0},
		hostblocks.Descriptor{GuestStart: 0x8000, Size: 0x200, Host: hostB, GroupStart: 2},
	)

	ptr, err = tbl.GuestToHost(0x4010)
	test.DemandSuccess(t, err)

	// the second piece is dropped
	r = test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x8000, Size: 0x200, Host: hostB, GroupStart: 1},
		})
	})
	err, ok = r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))

	// the block of the second group is shrunk
	r = test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x4000, Size: 0x100, Host: hostA + 0x100, GroupStart: 0},
			{GuestStart: 0x8000, Size: 0x10, Host: hostB, GroupStart: 2},
		})
	})
	err, ok = r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))

	// the second piece is mapped to different host memory
	r = test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x1000, Size: 0x100, Host: hostA},
			{GuestStart: 0x4000, Size: 0x100, Host: hostA + 0x200, GroupStart: 0},
			{GuestStart: 0x8000, Size: 0x200, Host: hostB, GroupStart: 2},
		})
	})
	err, ok = r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))

	// pointers issued before the failed replacements are still valid
	test.ExpectEquality(t, tbl.Generation(), uint64(1))
	test.ExpectEquality(t, tbl.HostToGuest(ptr), uint32(0x4010))
}

// the union of host ranges is unchanged when a group is divided differently
func TestTopologyPreservation(t *testing.T) {
	tbl := newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x0000, Size: 0x1000, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x8000, Size: 0x400, Host: hostB, GroupStart: 1},
	)

	covered := func() map[hostblocks.HostPointer]bool {
		m := make(map[hostblocks.HostPointer]bool)
		for _, b := range tbl.Snapshot() {
			for o := uint32(0); o < b.Size; o += 0x10 {
				m[b.Host+hostblocks.HostPointer(o)] = true
			}
		}
		return m
	}

	before := covered()

	// dropping a piece other than the first changes the union of host ranges
	r := test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x0000, Size: 0x400, Host: hostA},
			{GuestStart: 0x0800, Size: 0x800, Host: hostA + 0x800, GroupStart: 0},
			{GuestStart: 0x8000, Size: 0x400, Host: hostB, GroupStart: 2},
		})
	})
	err, ok := r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))
	test.ExpectEquality(t, tbl.Generation(), uint64(1))

	test.DemandSuccess(t, tbl.Replace([]hostblocks.Descriptor{
		{GuestStart: 0x0000, Size: 0x400, Host: hostA},
		{GuestStart: 0x0400, Size: 0x400, Host: hostA + 0x400, GroupStart: 0},
		{GuestStart: 0x0800, Size: 0x800, Host: hostA + 0x800, GroupStart: 0},
		{GuestStart: 0x8000, Size: 0x400, Host: hostB, GroupStart: 3},
		{GuestStart: 0xc000, Size: 0x100, Host: hostC, GroupStart: 4},
	}))

	after := covered()
	for p := range before {
		test.ExpectSuccess(t, after[p], p)
	}
	test.ExpectEquality(t, tbl.Generation(), uint64(2))
	test.ExpectEquality(t, tbl.Stats().Groups, 3)

	// the group is now made of three pieces. dropping the middle piece is
	// also detected
	r = test.ExpectPanic(t, func() {
		_ = tbl.Replace([]hostblocks.Descriptor{
			{GuestStart: 0x0000, Size: 0x400, Host: hostA},
			{GuestStart: 0x0800, Size: 0x800, Host: hostA + 0x800, GroupStart: 0},
			{GuestStart: 0x8000, Size: 0x400, Host: hostB, GroupStart: 2},
			{GuestStart: 0xc000, Size: 0x100, Host: hostC, GroupStart: 3},
		})
	})
	err, ok = r.(error)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, curated.Is(err, hostblocks.MissingDescendant))
	test.ExpectEquality(t, tbl.Generation(), uint64(2))
}

// a lookup followed by a replacement that divides the group differently. the
// reverse lookup of a mirrored pointer must still give the original address
func TestHintMigration(t *testing.T) {
	tbl := newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x200, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x9000, Size: 0x200, Host: hostA, GroupStart: 0},
	)

	ptr, err := tbl.GuestToHost(0x9150)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tbl.HostToGuest(ptr), uint32(0x9150))

	// both mirrors are split in two
	test.DemandSuccess(t, tbl.Replace([]hostblocks.Descriptor{
		{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		{GuestStart: 0x1100, Size: 0x100, Host: hostA + 0x100, GroupStart: 0},
		{GuestStart: 0x9000, Size: 0x100, Host: hostA, GroupStart: 0},
		{GuestStart: 0x9100, Size: 0x100, Host: hostA + 0x100, GroupStart: 0},
	}))

	s := tbl.Snapshot()
	test.DemandSuccess(t, s[0].HasLastUsed)
	test.ExpectEquality(t, s[0].LastUsed, 2)

	// the hinted block covers the lower half of the mirror. the pointer is in
	// the upper half of the same mirror
	test.ExpectEquality(t, tbl.HostToGuest(ptr), uint32(0x9150))

	// a pointer that the hinted block does cover
	test.ExpectEquality(t, tbl.HostToGuest(hostA+0x10), uint32(0x9010))

	// with a fresh lookup the mirror is preferred again
	ptr, err = tbl.GuestToHost(0x9150)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tbl.HostToGuest(ptr), uint32(0x9150))

	// merge the pieces back together. the hint follows
	test.DemandSuccess(t, tbl.Replace([]hostblocks.Descriptor{
		{GuestStart: 0x1000, Size: 0x200, Host: hostA},
		{GuestStart: 0x9000, Size: 0x200, Host: hostA, GroupStart: 0},
	}))
	s = tbl.Snapshot()
	test.DemandSuccess(t, s[0].HasLastUsed)
	test.ExpectEquality(t, s[0].LastUsed, 1)
	test.ExpectEquality(t, tbl.HostToGuest(ptr), uint32(0x9150))
}

// a replacement that only adds groups leaves existing hints at the same
// displacement within their group
func TestHintMigrationDisplacement(t *testing.T) {
	tbl := newTable(t, nil,
		hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		hostblocks.Descriptor{GuestStart: 0x2000, Size: 0x100, Host: hostA, GroupStart: 0},
		hostblocks.Descriptor{GuestStart: 0x3000, Size: 0x100, Host: hostA, GroupStart: 0},
	)

	_, err := tbl.GuestToHost(0x3004)
	test.DemandSuccess(t, err)

	// a new group is placed before the existing group
	test.DemandSuccess(t, tbl.Replace([]hostblocks.Descriptor{
		{GuestStart: 0x8000, Size: 0x100, Host: hostB},
		{GuestStart: 0x1000, Size: 0x100, Host: hostA, GroupStart: 1},
		{GuestStart: 0x2000, Size: 0x100, Host: hostA, GroupStart: 1},
		{GuestStart: 0x3000, Size: 0x100, Host: hostA, GroupStart: 1},
	}))

	s := tbl.Snapshot()
	test.ExpectFailure(t, s[0].HasLastUsed)
	test.DemandSuccess(t, s[1].HasLastUsed)
	test.ExpectEquality(t, s[1].LastUsed, 3)
	test.ExpectEquality(t, tbl.HostToGuest(hostA+0x04), uint32(0x3004))
}

func TestReplacePacked(t *testing.T) {
	descs := []hostblocks.Descriptor{
		{GuestStart: 0x1000, Size: 0x100, Host: hostA},
		{GuestStart: 0x2000, Size: 0x100, Host: hostA, GroupStart: 0},
		{GuestStart: 0x4000, Size: 0x800, Host: hostB, GroupStart: 2},
	}

	data := hostblocks.EncodeDescriptors(descs)
	test.ExpectEquality(t, len(data), 3*hostblocks.PackedDescriptorSize)

	// the first entry written out by hand
	test.ExpectEquality(t, data[1], uint8(0x10))
	test.ExpectEquality(t, data[5], uint8(0x01))
	test.ExpectEquality(t, data[13], uint8(0x7f))

	tbl := hostblocks.NewTable(nil)
	test.DemandSuccess(t, tbl.ReplacePacked(data))
	for i, b := range tbl.Snapshot() {
		test.ExpectEquality(t, b.Descriptor, descs[i])
	}

	err := tbl.ReplacePacked(data[:len(data)-1])
	test.ExpectSuccess(t, curated.Is(err, hostblocks.PackedLength))
}

func TestClose(t *testing.T) {
	tbl := newTable(t, nil, hostblocks.Descriptor{GuestStart: 0x1000, Size: 0x100, Host: hostA})
	tbl.Close()
	test.ExpectEquality(t, tbl.Generation(), uint64(2))
	test.ExpectEquality(t, len(tbl.Snapshot()), 0)
	_, err := tbl.GuestToHost(0x1000)
	test.ExpectFailure(t, err)
}
