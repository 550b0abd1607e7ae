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

// Package hostblocks translates guest physical addresses to host memory
// pointers, and back, for a CPU emulation core.
//
// The guest memory map is described by a list of blocks. Each block is a
// contiguous range of guest addresses backed by a contiguous range of host
// memory. The package does not own the host memory. It only records its
// address.
//
// Blocks are collected into groups. A group is one logical host allocation
// that has been divided into several blocks, either by splitting it into
// disjoint pieces or by mapping it at more than one guest address (a mirror).
// Each group keeps a hint of the block that was most recently used to
// translate a guest address. The hint is used by HostToGuest() to choose the
// correct guest address when host memory is mirrored.
//
// The complete list of blocks is called a generation. A generation is never
// changed after it has been published, except for the hints. When the guest
// memory map changes the collaborator calls Replace() with a new list of
// descriptors and a new generation is published atomically. Lookups that are
// in progress continue with the generation they started with.
//
// When GuestToHost() fails to find a block the Materializer is asked to attach
// the missing memory. The lookup is then restarted with whatever generation is
// current at that time.
//
// Two conditions are fatal and will cause a panic: a host pointer that was
// never issued by the table and a Replace() that drops a group that existed in
// the previous generation. In both cases the panic value is a curated error.
package hostblocks
