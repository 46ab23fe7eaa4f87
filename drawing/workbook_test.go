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
	"bytes"
	"encoding/binary"
	"testing"

	"seehuhn.de/go/escher"
)

func TestDrawingGroupRecordEncode(t *testing.T) {
	container := escher.NewContainer(escher.TypeDggContainer)
	container.AppendChild(escher.NewDggRecord())
	raw := container.Encode()

	rec := NewDrawingGroupRecord(raw)
	buf, err := rec.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if binary.LittleEndian.Uint16(buf[0:]) != SidDrawingGroup {
		t.Errorf("sid = 0x%04X", binary.LittleEndian.Uint16(buf[0:]))
	}
	if int(binary.LittleEndian.Uint16(buf[2:])) != len(raw) {
		t.Errorf("length = %d, want %d", binary.LittleEndian.Uint16(buf[2:]), len(raw))
	}
	if !bytes.Equal(buf[4:], raw) {
		t.Error("payload changed")
	}
}

func TestDrawingGroupRecordEncodeTooLarge(t *testing.T) {
	// a container larger than a single record can hold must not have its
	// length field truncated
	container := escher.NewContainer(escher.TypeDggContainer)
	container.AppendChild(&escher.UnknownRecord{
		Type: 0xF11D,
		Data: make([]byte, maxRecordPayload+1),
	})

	rec := NewDrawingGroupRecord(container.Encode())
	_, err := rec.Encode()
	if err == nil {
		t.Fatal("oversized payload encoded without error")
	}
}
