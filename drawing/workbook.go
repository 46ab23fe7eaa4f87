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

package drawing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"seehuhn.de/go/escher"
)

var errNotAContainer = errors.New("drawing group record does not hold a container")

// Workbook-level record sids used by this package.
const (
	SidCountry      uint16 = 0x008C
	SidDrawingGroup uint16 = 0x00EB
)

// BiffRecord is one record of the workbook-level record stream.  This
// package only interprets the country record and the drawing group record;
// everything else is carried as [RawRecord].
type BiffRecord interface {
	Sid() uint16
}

// Workbook is the drawing-level view of one workbook file: the ordered
// record stream plus the drawing manager attached to it.  File I/O for the
// stream itself is handled elsewhere.
type Workbook struct {
	// Records is the workbook record stream in file order.
	Records []BiffRecord

	mu      sync.Mutex
	manager *Manager
}

// CountryRecord stores the locale of the file.  The drawing group record is
// by convention inserted immediately after it.
type CountryRecord struct {
	DefaultCountry uint16
	CurrentCountry uint16
}

// Sid implements the [BiffRecord] interface.
func (r *CountryRecord) Sid() uint16 {
	return SidCountry
}

// RawRecord is a workbook record this package does not interpret.
type RawRecord struct {
	ID   uint16
	Data []byte
}

// Sid implements the [BiffRecord] interface.
func (r *RawRecord) Sid() uint16 {
	return r.ID
}

// DrawingGroupRecord is the workbook record holding the serialized drawing
// group container.  The container is decoded lazily, on first use by the
// drawing manager.
type DrawingGroupRecord struct {
	raw       []byte
	container *escher.ContainerRecord
}

// NewDrawingGroupRecord returns a drawing group record holding the given
// serialized container bytes, as read from a file.  The bytes are not
// decoded until the drawing manager needs them.
func NewDrawingGroupRecord(raw []byte) *DrawingGroupRecord {
	return &DrawingGroupRecord{raw: append([]byte(nil), raw...)}
}

// Sid implements the [BiffRecord] interface.
func (r *DrawingGroupRecord) Sid() uint16 {
	return SidDrawingGroup
}

// decode parses the raw container bytes.  It is a no-op once the container
// has been decoded.
func (r *DrawingGroupRecord) decode() error {
	if r.container != nil {
		return nil
	}
	rec, _, err := escher.Decode(r.raw)
	if err != nil {
		return err
	}
	container, ok := rec.(*escher.ContainerRecord)
	if !ok {
		return &escher.MalformedRecordError{
			Err: errNotAContainer,
		}
	}
	r.container = container
	r.raw = nil
	return nil
}

// Container returns the decoded drawing group container.  It is nil until
// decode has run.
func (r *DrawingGroupRecord) Container() *escher.ContainerRecord {
	return r.container
}

// maxRecordPayload is the largest payload a single workbook record can
// carry; the length field is 16 bits.
const maxRecordPayload = 0xFFFF

// Encode serializes the record: the record sid, the payload length and the
// container bytes.  Splitting payloads over the workbook record size limit
// into continuation records is left to the I/O layer; Encode reports an
// error for such payloads rather than truncating the length field.
func (r *DrawingGroupRecord) Encode() ([]byte, error) {
	data := r.raw
	if r.container != nil {
		data = r.container.Encode()
	}
	if len(data) > maxRecordPayload {
		return nil, fmt.Errorf("drawing group container has %d bytes, needs continuation records", len(data))
	}
	buf := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint16(buf[0:], SidDrawingGroup)
	binary.LittleEndian.PutUint16(buf[2:], uint16(len(data)))
	copy(buf[4:], data)
	return buf, nil
}
