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
	"fmt"
	"unsafe"

	"github.com/jetsetilly/emublocks/hostblocks"
)

// Region is a contiguous area of host memory.
type Region struct {
	label string
	data  []byte
}

func (r *Region) String() string {
	return fmt.Sprintf("%s: %d bytes at %s", r.label, len(r.data), r.Pointer())
}

// Label returns the label given to the region when it was allocated.
func (r *Region) Label() string {
	return r.label
}

// Size of the region in bytes.
func (r *Region) Size() uint32 {
	return uint32(len(r.data))
}

// Bytes returns the memory of the region. The slice is only valid until the
// region is released.
func (r *Region) Bytes() []byte {
	return r.data
}

// Pointer returns the address of the first byte of the region. Returns zero
// if the region has been released.
func (r *Region) Pointer() hostblocks.HostPointer {
	if len(r.data) == 0 {
		return 0
	}
	return hostblocks.HostPointer(uintptr(unsafe.Pointer(&r.data[0])))
}

// Offset returns the offset of the host pointer into the region. The second
// value is false if the pointer is not in the region.
func (r *Region) Offset(ptr hostblocks.HostPointer) (uint32, bool) {
	base := r.Pointer()
	if base == 0 || ptr < base || uint64(ptr-base) >= uint64(len(r.data)) {
		return 0, false
	}
	return uint32(ptr - base), true
}
