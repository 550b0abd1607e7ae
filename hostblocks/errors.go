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

// Patterns for curated errors created by the package. The two fatal
// conditions, UnresolvableHostPointer and MissingDescendant, are used as panic
// values.
const (
	UnresolvableHostPointer = "hostblocks: trying to translate a host pointer that was not allocated by us: %v"
	MissingDescendant       = "hostblocks: replacement drops host memory of block %d (host %v, guest %#08x)"
	InvalidDescriptors      = "hostblocks: invalid descriptors: %v"
	RetryLimit              = "hostblocks: guest address %#08x is still unmapped after %d attempts"
	NoMaterializer          = "hostblocks: guest address %#08x is unmapped"
	PackedLength            = "hostblocks: packed descriptors: length (%d) is not a multiple of %d"
)

// Patterns describing why a list of descriptors is invalid. They are always
// wrapped by InvalidDescriptors.
const (
	ZeroSize      = "block %d has zero size"
	AddressWrap   = "block %d wraps around the end of the address space"
	BadGroupStart = "block %d has an invalid group start (%d)"
	GuestOverlap  = "guest ranges of blocks %d and %d overlap"
	HostOverlap   = "host ranges of the groups at blocks %d and %d overlap"
)
