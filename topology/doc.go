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

// Package topology describes the guest memory map in terms of named regions
// and turns that description into descriptors for a hostblocks.Table.
//
// A region is a contiguous area of guest memory backed by one host
// allocation. A region can be mirrored at other guest addresses and can be
// split into several blocks. All the blocks of a region, including the
// blocks of its mirrors, form a single group in the table.
//
// A lazy region is not given any host memory until the guest first touches
// it. The Topology type implements the hostblocks.Materializer interface for
// that purpose.
//
// Regions cannot be removed. Once a region has been attached to a table the
// table requires that it is present in every subsequent generation.
//
// A topology can be loaded from a simple text description:
//
//	# comments start with a hash
//	region ram   0x00000000 0x10000
//	region flash 0x08000000 0x40000 lazy
//	mirror ram   0x20000000
//	split  ram   0x8000
//
// Numbers can be written in any base understood by strconv.ParseUint.
package topology
