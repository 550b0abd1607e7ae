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

// Package hostmem allocates host memory suitable for backing guest memory.
//
// Memory is allocated outside of the Go heap (with mmap on unix systems) so
// that its address never changes and so that the address can be recorded as
// a hostblocks.HostPointer. Memory must be released explicitly.
//
// An Arena keeps track of every Region it has allocated and can find the
// Region that contains a HostPointer.
package hostmem
