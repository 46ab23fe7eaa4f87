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

// ContainerRecord is a record whose payload is an ordered list of child
// records.  The version nibble of a container's options field is always
// 0xF.
type ContainerRecord struct {
	Type     uint16
	Instance uint16
	Children []Record
}

// NewContainer returns an empty container of the given record type.
func NewContainer(recordID uint16) *ContainerRecord {
	return &ContainerRecord{Type: recordID}
}

func decodeContainer(options, recordID uint16, body []byte, base int) (Record, error) {
	c := &ContainerRecord{
		Type:     recordID,
		Instance: options >> 4,
	}
	pos := 0
	for pos < len(body) {
		child, n, err := decode(body[pos:], base+pos)
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
		pos += n
	}
	return c, nil
}

// RecordID implements the [Record] interface.
func (c *ContainerRecord) RecordID() uint16 {
	return c.Type
}

// Options implements the [Record] interface.
func (c *ContainerRecord) Options() uint16 {
	return c.Instance<<4 | containerVersion
}

// Encode implements the [Record] interface.
func (c *ContainerRecord) Encode() []byte {
	var body []byte
	for _, child := range c.Children {
		body = append(body, child.Encode()...)
	}
	return encodeRecord(c.Options(), c.Type, body)
}

// ChildByID returns the first child with the given record type, or nil if
// there is none.
func (c *ContainerRecord) ChildByID(recordID uint16) Record {
	for _, child := range c.Children {
		if child.RecordID() == recordID {
			return child
		}
	}
	return nil
}

// AppendChild adds a child record at the end of the container.
func (c *ContainerRecord) AppendChild(child Record) {
	c.Children = append(c.Children, child)
}
