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

import "github.com/jetsetilly/emublocks/curated"

// PackedDescriptorSize is the number of bytes used by each entry of a packed
// descriptor list.
const PackedDescriptorSize = 20

// offsets of fields in a packed descriptor. all fields are little endian
const (
	packedGuestStart = 0
	packedSize       = 4
	packedHost       = 8
	packedGroupStart = 16
)

func packed32(data []byte) uint32 {
	return uint32(data[0]) |
		uint32(data[1])<<8 |
		uint32(data[2])<<16 |
		uint32(data[3])<<24
}

func packed64(data []byte) uint64 {
	return uint64(packed32(data)) | uint64(packed32(data[4:]))<<32
}

// DecodeDescriptors decodes a list of descriptors in the packed form supplied
// by foreign collaborators. Each entry is 20 bytes:
//
//	guest start (4 bytes)
//	size (4 bytes)
//	host pointer (8 bytes)
//	group start (4 bytes)
func DecodeDescriptors(data []byte) ([]Descriptor, error) {
	if len(data)%PackedDescriptorSize != 0 {
		return nil, curated.Errorf(PackedLength, len(data), PackedDescriptorSize)
	}

	descs := make([]Descriptor, len(data)/PackedDescriptorSize)
	for i := range descs {
		e := data[i*PackedDescriptorSize:]
		descs[i] = Descriptor{
			GuestStart: packed32(e[packedGuestStart:]),
			Size:       packed32(e[packedSize:]),
			Host:       HostPointer(packed64(e[packedHost:])),
			GroupStart: packed32(e[packedGroupStart:]),
		}
	}

	return descs, nil
}

// EncodeDescriptors is the inverse of DecodeDescriptors.
func EncodeDescriptors(descs []Descriptor) []byte {
	data := make([]byte, len(descs)*PackedDescriptorSize)
	for i, d := range descs {
		e := data[i*PackedDescriptorSize:]
		put32(e[packedGuestStart:], d.GuestStart)
		put32(e[packedSize:], d.Size)
		put32(e[packedHost:], uint32(uint64(d.Host)))
		put32(e[packedHost+4:], uint32(uint64(d.Host)>>32))
		put32(e[packedGroupStart:], d.GroupStart)
	}
	return data
}

func put32(data []byte, v uint32) {
	data[0] = uint8(v)
	data[1] = uint8(v >> 8)
	data[2] = uint8(v >> 16)
	data[3] = uint8(v >> 24)
}

// ReplacePacked decodes the packed list of descriptors and calls Replace().
func (tbl *Table) ReplacePacked(data []byte) error {
	descs, err := DecodeDescriptors(data)
	if err != nil {
		return err
	}
	return tbl.Replace(descs)
}
