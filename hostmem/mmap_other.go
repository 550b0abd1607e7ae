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

//go:build !unix

package hostmem

// without mmap the memory is allocated on the Go heap. the Go garbage
// collector does not move heap objects so the address is stable for as long
// as the region holds the slice.
func allocate(size uint32) ([]byte, error) {
	return make([]byte, size), nil
}

func release(_ []byte) error {
	return nil
}
