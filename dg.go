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

// MS-ODRAW sections: 2.2.49

// DgRecord describes one drawing group (one sheet's drawing surface).  The
// drawing group id is stored in the instance field of the record header.
type DgRecord struct {
	// DrawingGroupID is the 1-based id of this drawing group.
	DrawingGroupID uint16

	// NumShapes is the number of shapes in this drawing group.
	NumShapes uint32

	// LastShapeID is the last shape id allocated to this group, or -1 if
	// no shape id has been allocated yet.
	LastShapeID int32
}

func decodeDg(options uint16, body []byte, base int) (Record, error) {
	if len(body) < 8 {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	return &DgRecord{
		DrawingGroupID: options >> 4,
		NumShapes:      binary.LittleEndian.Uint32(body[0:]),
		LastShapeID:    int32(binary.LittleEndian.Uint32(body[4:])),
	}, nil
}

// RecordID implements the [Record] interface.
func (d *DgRecord) RecordID() uint16 {
	return TypeDg
}

// Options implements the [Record] interface.
func (d *DgRecord) Options() uint16 {
	return d.DrawingGroupID << 4
}

// Encode implements the [Record] interface.
func (d *DgRecord) Encode() []byte {
	body := make([]byte, 8)
	binary.LittleEndian.PutUint32(body[0:], d.NumShapes)
	binary.LittleEndian.PutUint32(body[4:], uint32(d.LastShapeID))
	return encodeRecord(d.Options(), TypeDg, body)
}
