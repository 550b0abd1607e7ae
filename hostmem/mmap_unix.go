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

//go:build unix

package hostmem

import (
	"github.com/jetsetilly/emublocks/curated"
	"golang.org/x/sys/unix"
)

func allocate(size uint32) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, curated.Errorf(Mmap, size, err)
	}
	return data, nil
}

func release(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return curated.Errorf(Munmap, len(data), err)
	}
	return nil
}
