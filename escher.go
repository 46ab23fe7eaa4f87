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
	"errors"
	"fmt"
)

// MS-ODRAW sections: 2.2.1

// Record types used by the drawing layer.
const (
	TypeDggContainer    uint16 = 0xF000
	TypeBStoreContainer uint16 = 0xF001
	TypeDgContainer     uint16 = 0xF002
	TypeDgg             uint16 = 0xF006
	TypeBSE             uint16 = 0xF007
	TypeDg              uint16 = 0xF008
	TypeOpt             uint16 = 0xF00B
	TypeSplitMenuColors uint16 = 0xF11E

	// TypeBlipStart is the base of the contiguous range of blip record
	// types.  The picture format of a blip is its record type minus
	// TypeBlipStart.
	TypeBlipStart uint16 = 0xF018
	TypeBlipEMF   uint16 = 0xF01A
	TypeBlipWMF   uint16 = 0xF01B
	TypeBlipPICT  uint16 = 0xF01C
	TypeBlipJPEG  uint16 = 0xF01D
	TypeBlipPNG   uint16 = 0xF01E
	TypeBlipDIB   uint16 = 0xF01F
	TypeBlipTIFF  uint16 = 0xF029
	TypeBlipEnd   uint16 = 0xF117
)

// headerSize is the size of the record header: options (uint16), record
// type (uint16) and payload length (uint32).
const headerSize = 8

// containerVersion is the version nibble marking container records.
const containerVersion = 0x0F

// Record is an Escher record.  The concrete types are ContainerRecord,
// DggRecord, DgRecord, BSERecord, BitmapBlip, MetafileBlip, OptRecord,
// SplitMenuColorsRecord and UnknownRecord.
type Record interface {
	// RecordID returns the record type.
	RecordID() uint16

	// Options returns the combined version and instance field of the
	// record header.
	Options() uint16

	// Encode serializes the record, including the header.
	Encode() []byte
}

var (
	errRecordTooShort = errors.New("unexpected end of record data")
)

// encodeRecord prepends the eight byte header to the given body.
func encodeRecord(options, recordID uint16, body []byte) []byte {
	buf := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint16(buf[0:], options)
	binary.LittleEndian.PutUint16(buf[2:], recordID)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(body)))
	copy(buf[headerSize:], body)
	return buf
}

// Decode decodes the first record in data.  It returns the record and the
// number of bytes consumed, including the header.
func Decode(data []byte) (Record, int, error) {
	return decode(data, 0)
}

// DecodeAll decodes a sequence of records which together fill data
// completely.
func DecodeAll(data []byte) ([]Record, error) {
	var res []Record
	pos := 0
	for pos < len(data) {
		rec, n, err := decode(data[pos:], pos)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
		pos += n
	}
	return res, nil
}

func decode(data []byte, base int) (Record, int, error) {
	if len(data) < headerSize {
		return nil, 0, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	options := binary.LittleEndian.Uint16(data[0:])
	recordID := binary.LittleEndian.Uint16(data[2:])
	length := binary.LittleEndian.Uint32(data[4:])
	if uint64(length) > uint64(len(data)-headerSize) {
		err := fmt.Errorf("record 0x%04X: length %d exceeds available data", recordID, length)
		return nil, 0, &MalformedRecordError{Pos: base, Err: err}
	}
	body := data[headerSize : headerSize+int(length)]
	n := headerSize + int(length)

	var rec Record
	var err error
	switch {
	case options&0x0F == containerVersion:
		rec, err = decodeContainer(options, recordID, body, base+headerSize)
	case recordID == TypeDgg:
		rec, err = decodeDgg(body, base+headerSize)
	case recordID == TypeDg:
		rec, err = decodeDg(options, body, base+headerSize)
	case recordID == TypeBSE:
		rec, err = decodeBSE(options, body, base+headerSize)
	case recordID == TypeBlipEMF, recordID == TypeBlipWMF, recordID == TypeBlipPICT:
		rec, err = decodeMetafileBlip(options, recordID, body, base+headerSize)
	case recordID >= TypeBlipStart && recordID <= TypeBlipEnd:
		rec, err = decodeBitmapBlip(options, recordID, body, base+headerSize)
	case recordID == TypeOpt:
		rec, err = decodeOpt(options, body)
	case recordID == TypeSplitMenuColors:
		rec, err = decodeSplitMenuColors(options, body, base+headerSize)
	default:
		rec = &UnknownRecord{
			Opts: options,
			Type: recordID,
			Data: append([]byte(nil), body...),
		}
	}
	if err != nil {
		return nil, 0, err
	}
	return rec, n, nil
}

// UnknownRecord holds a record type not modeled by this package.  The
// payload is kept verbatim so that the record can be written back
// unchanged.
type UnknownRecord struct {
	Opts uint16
	Type uint16
	Data []byte
}

// RecordID implements the [Record] interface.
func (r *UnknownRecord) RecordID() uint16 {
	return r.Type
}

// Options implements the [Record] interface.
func (r *UnknownRecord) Options() uint16 {
	return r.Opts
}

// Encode implements the [Record] interface.
func (r *UnknownRecord) Encode() []byte {
	return encodeRecord(r.Opts, r.Type, r.Data)
}
