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

import "fmt"

// HostPointer is an address in the host's address space. It is not a Go
// pointer and the memory it points to is not kept alive by the table.
type HostPointer uintptr

func (p HostPointer) String() string {
	return fmt.Sprintf("%#x", uintptr(p))
}

// Descriptor describes one block of guest memory.
type Descriptor struct {
	// first guest address covered by the block and the number of bytes
	// covered. the range is half open: [GuestStart, GuestStart+Size)
	GuestStart uint32
	Size       uint32

	// base of the host memory backing the block
	Host HostPointer

	// index of the first block in the group this block is a member of. the
	// first block of a group refers to itself
	GroupStart uint32
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%#08x-%#08x => %s (group %d)", d.GuestStart, d.guestEnd()-1, d.Host, d.GroupStart)
}

// one past the last guest address. 64bit because a block can end at the very
// top of the 32bit guest address space
func (d Descriptor) guestEnd() uint64 {
	return uint64(d.GuestStart) + uint64(d.Size)
}

func (d Descriptor) hostEnd() uint64 {
	return uint64(d.Host) + uint64(d.Size)
}

func (d Descriptor) containsGuest(address uint32) bool {
	return address >= d.GuestStart && address-d.GuestStart < d.Size
}

func (d Descriptor) containsHost(ptr HostPointer) bool {
	return ptr >= d.Host && uint64(ptr-d.Host) < uint64(d.Size)
}

// descendsFrom returns true if the guest start of the old block is covered by
// d and both blocks agree on the host address of that guest start.
func (d Descriptor) descendsFrom(old Descriptor) bool {
	if !d.containsGuest(old.GuestStart) {
		return false
	}
	return d.Host+HostPointer(old.GuestStart-d.GuestStart) == old.Host
}

// BlockInfo is a read-only view of a block in the current generation.
type BlockInfo struct {
	Index int
	Descriptor

	// group identifier. the same as the index of the first block in the group
	Group int

	// the last used block of the group. only meaningful for the first block
	// of the group and only if HasLastUsed is true
	LastUsed    int
	HasLastUsed bool
}

func (b BlockInfo) String() string {
	if b.HasLastUsed {
		return fmt.Sprintf("%3d: %s last used %d", b.Index, b.Descriptor, b.LastUsed)
	}
	return fmt.Sprintf("%3d: %s", b.Index, b.Descriptor)
}
