// seehuhn.de/go/escher - a library for reading and writing Escher drawing records
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package escher

import (
	"encoding/binary"
)

// MS-ODRAW sections: 2.2.32

// bseHeaderSize is the size of the BSE body before the embedded blip.
const bseHeaderSize = 36

// BSERecord is a picture store entry.  It holds the metadata for one
// embedded picture and owns the blip record with the picture bytes.
//
// Real-world files sometimes contain BSE records without a blip.  Such
// entries decode with Blip set to nil and are written back without picture
// data; they are tolerated rather than treated as errors.
type BSERecord struct {
	Opts uint16

	// BlipTypeWin32 and BlipTypeMacOS give the picture format.  This
	// implementation always stores the same value in both.
	BlipTypeWin32 byte
	BlipTypeMacOS byte

	// UID is the MD5 digest of the picture bytes, recomputed on every
	// data change.  It serves as the on-disk content identity; entries
	// with equal digests are not deduplicated.
	UID [16]byte

	// Tag is 0 for metafile formats and 0xFF for raster formats.
	Tag uint16

	// Size is the size in bytes of the serialized blip record.
	Size uint32

	Ref      uint32
	Offset   uint32
	Reserved [4]byte

	Blip BlipRecord
}

func decodeBSE(options uint16, body []byte, base int) (Record, error) {
	if len(body) < bseHeaderSize {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	r := &BSERecord{
		Opts:          options,
		BlipTypeWin32: body[0],
		BlipTypeMacOS: body[1],
		Tag:           binary.LittleEndian.Uint16(body[18:]),
		Size:          binary.LittleEndian.Uint32(body[20:]),
		Ref:           binary.LittleEndian.Uint32(body[24:]),
		Offset:        binary.LittleEndian.Uint32(body[28:]),
	}
	copy(r.UID[:], body[2:18])
	copy(r.Reserved[:], body[32:36])

	if len(body) > bseHeaderSize {
		rec, _, err := decode(body[bseHeaderSize:], base+bseHeaderSize)
		if err != nil {
			return nil, err
		}
		if blip, ok := rec.(BlipRecord); ok {
			r.Blip = blip
		}
	}
	return r, nil
}

// RecordID implements the [Record] interface.
func (r *BSERecord) RecordID() uint16 {
	return TypeBSE
}

// Options implements the [Record] interface.
func (r *BSERecord) Options() uint16 {
	return r.Opts
}

// Encode implements the [Record] interface.
func (r *BSERecord) Encode() []byte {
	body := make([]byte, bseHeaderSize)
	body[0] = r.BlipTypeWin32
	body[1] = r.BlipTypeMacOS
	copy(body[2:18], r.UID[:])
	binary.LittleEndian.PutUint16(body[18:], r.Tag)
	binary.LittleEndian.PutUint32(body[20:], r.Size)
	binary.LittleEndian.PutUint32(body[24:], r.Ref)
	binary.LittleEndian.PutUint32(body[28:], r.Offset)
	copy(body[32:36], r.Reserved[:])
	if r.Blip != nil {
		body = append(body, r.Blip.Encode()...)
	}
	return encodeRecord(r.Opts, TypeBSE, body)
}
