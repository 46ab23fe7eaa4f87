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

// MS-ODRAW sections: 2.2.9 2.3.3

// Property is one entry of an [OptRecord] property list.
type Property struct {
	ID    uint16
	Value uint32
}

// OptRecord is a list of shape properties.  Complex property data following
// the fixed-size entries is kept verbatim in Extra.
type OptRecord struct {
	Properties []Property
	Extra      []byte
}

func decodeOpt(options uint16, body []byte) (Record, error) {
	r := &OptRecord{}
	n := int(options >> 4)
	pos := 0
	for i := 0; i < n && pos+6 <= len(body); i++ {
		r.Properties = append(r.Properties, Property{
			ID:    binary.LittleEndian.Uint16(body[pos:]),
			Value: binary.LittleEndian.Uint32(body[pos+2:]),
		})
		pos += 6
	}
	if pos < len(body) {
		r.Extra = append([]byte(nil), body[pos:]...)
	}
	return r, nil
}

// RecordID implements the [Record] interface.
func (r *OptRecord) RecordID() uint16 {
	return TypeOpt
}

// Options implements the [Record] interface.
func (r *OptRecord) Options() uint16 {
	return uint16(len(r.Properties))<<4 | 0x3
}

// Encode implements the [Record] interface.
func (r *OptRecord) Encode() []byte {
	body := make([]byte, 6*len(r.Properties), 6*len(r.Properties)+len(r.Extra))
	for i, p := range r.Properties {
		binary.LittleEndian.PutUint16(body[6*i:], p.ID)
		binary.LittleEndian.PutUint32(body[6*i+2:], p.Value)
	}
	body = append(body, r.Extra...)
	return encodeRecord(r.Options(), TypeOpt, body)
}

// AddProperty appends a property to the list.
func (r *OptRecord) AddProperty(id uint16, value uint32) {
	r.Properties = append(r.Properties, Property{ID: id, Value: value})
}

// SplitMenuColorsRecord stores the four colors shown in the split menus of
// the original drawing UI.  A record with conventional default colors is
// written when a file gains its first drawing container.
type SplitMenuColorsRecord struct {
	Fill, Line, Shadow, ThreeD uint32
}

func decodeSplitMenuColors(options uint16, body []byte, base int) (Record, error) {
	if len(body) < 16 {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	return &SplitMenuColorsRecord{
		Fill:   binary.LittleEndian.Uint32(body[0:]),
		Line:   binary.LittleEndian.Uint32(body[4:]),
		Shadow: binary.LittleEndian.Uint32(body[8:]),
		ThreeD: binary.LittleEndian.Uint32(body[12:]),
	}, nil
}

// RecordID implements the [Record] interface.
func (r *SplitMenuColorsRecord) RecordID() uint16 {
	return TypeSplitMenuColors
}

// Options implements the [Record] interface.
func (r *SplitMenuColorsRecord) Options() uint16 {
	return 4 << 4
}

// Encode implements the [Record] interface.
func (r *SplitMenuColorsRecord) Encode() []byte {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint32(body[0:], r.Fill)
	binary.LittleEndian.PutUint32(body[4:], r.Line)
	binary.LittleEndian.PutUint32(body[8:], r.Shadow)
	binary.LittleEndian.PutUint32(body[12:], r.ThreeD)
	return encodeRecord(r.Options(), TypeSplitMenuColors, body)
}
