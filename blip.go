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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// MS-ODRAW sections: 2.2.23

// BlipRecord is the record holding the raw bytes of one embedded picture.
// Raster formats use [BitmapBlip], the metafile formats WMF, EMF and PICT
// use [MetafileBlip].
type BlipRecord interface {
	Record

	// UID returns the content digest stored in the blip.
	UID() [16]byte

	// SetUID stores a new content digest.
	SetUID([16]byte)

	// Data returns the picture bytes.  For metafile blips the payload is
	// decompressed first.
	Data() ([]byte, error)

	// SetData replaces the picture bytes.  Metafile blips compress the
	// payload for storage.
	SetData([]byte) error
}

// bitmapMarker is the single byte separating the digest from the picture
// data in a bitmap blip.
const bitmapMarker = 0xFF

// BitmapBlip holds the picture bytes of a raster format (JPEG, PNG, PICT,
// DIB or TIFF).  The bytes are stored uncompressed.
type BitmapBlip struct {
	Type   uint16
	Opts   uint16
	Marker byte

	uid  [16]byte
	data []byte
}

// NewBitmapBlip returns an empty bitmap blip with the given record type and
// format tag.
func NewBitmapBlip(recordID, optionsTag uint16) *BitmapBlip {
	return &BitmapBlip{
		Type:   recordID,
		Opts:   optionsTag,
		Marker: bitmapMarker,
	}
}

func decodeBitmapBlip(options, recordID uint16, body []byte, base int) (Record, error) {
	if len(body) < 17 {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	b := &BitmapBlip{
		Type:   recordID,
		Opts:   options,
		Marker: body[16],
		data:   append([]byte(nil), body[17:]...),
	}
	copy(b.uid[:], body[:16])
	return b, nil
}

// RecordID implements the [Record] interface.
func (b *BitmapBlip) RecordID() uint16 {
	return b.Type
}

// Options implements the [Record] interface.
func (b *BitmapBlip) Options() uint16 {
	return b.Opts
}

// Encode implements the [Record] interface.
func (b *BitmapBlip) Encode() []byte {
	body := make([]byte, 17+len(b.data))
	copy(body[:16], b.uid[:])
	body[16] = b.Marker
	copy(body[17:], b.data)
	return encodeRecord(b.Opts, b.Type, body)
}

// UID implements the [BlipRecord] interface.
func (b *BitmapBlip) UID() [16]byte {
	return b.uid
}

// SetUID implements the [BlipRecord] interface.
func (b *BitmapBlip) SetUID(uid [16]byte) {
	b.uid = uid
}

// Data implements the [BlipRecord] interface.
func (b *BitmapBlip) Data() ([]byte, error) {
	return append([]byte(nil), b.data...), nil
}

// SetData implements the [BlipRecord] interface.
func (b *BitmapBlip) SetData(data []byte) error {
	b.data = append([]byte(nil), data...)
	return nil
}

// metafileHeaderSize is the size of the metafile header following the
// digest: uncompressed size, bounds, size in EMU, compressed size,
// compression flag and filter byte.
const metafileHeaderSize = 34

// Compression flag values used in metafile blips.
const (
	metafileCompressed   = 0x00
	metafileUncompressed = 0xFE
)

// metafileFilter is the only defined value of the filter byte.
const metafileFilter = 0xFE

// MetafileBlip holds the picture bytes of a metafile format (WMF, EMF or
// PICT).  The payload is stored zlib-compressed, together with the
// uncompressed size and the metafile bounds.
type MetafileBlip struct {
	Type uint16
	Opts uint16

	// Bounds is the bounding rectangle of the metafile, in the metafile's
	// own units: left, top, right, bottom.
	Bounds [4]int32

	// SizeEMU is the size of the metafile in English Metric Units.
	SizeEMU [2]int32

	// Compression is [metafileCompressed] when the payload is deflated.
	Compression byte
	Filter      byte

	uid              [16]byte
	uncompressedSize uint32
	payload          []byte
}

// NewMetafileBlip returns an empty metafile blip with the given record type
// and format tag.
func NewMetafileBlip(recordID, optionsTag uint16) *MetafileBlip {
	return &MetafileBlip{
		Type:        recordID,
		Opts:        optionsTag,
		Compression: metafileUncompressed,
		Filter:      metafileFilter,
	}
}

func decodeMetafileBlip(options, recordID uint16, body []byte, base int) (Record, error) {
	if len(body) < 16+metafileHeaderSize {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	m := &MetafileBlip{
		Type: recordID,
		Opts: options,
	}
	copy(m.uid[:], body[:16])
	m.uncompressedSize = binary.LittleEndian.Uint32(body[16:])
	for i := range m.Bounds {
		m.Bounds[i] = int32(binary.LittleEndian.Uint32(body[20+4*i:]))
	}
	m.SizeEMU[0] = int32(binary.LittleEndian.Uint32(body[36:]))
	m.SizeEMU[1] = int32(binary.LittleEndian.Uint32(body[40:]))
	compressedSize := binary.LittleEndian.Uint32(body[44:])
	m.Compression = body[48]
	m.Filter = body[49]
	payload := body[16+metafileHeaderSize:]
	if int(compressedSize) != len(payload) {
		err := fmt.Errorf("metafile payload: %d bytes announced, %d present",
			compressedSize, len(payload))
		return nil, &MalformedRecordError{Pos: base, Err: err}
	}
	m.payload = append([]byte(nil), payload...)
	return m, nil
}

// RecordID implements the [Record] interface.
func (m *MetafileBlip) RecordID() uint16 {
	return m.Type
}

// Options implements the [Record] interface.
func (m *MetafileBlip) Options() uint16 {
	return m.Opts
}

// Encode implements the [Record] interface.
func (m *MetafileBlip) Encode() []byte {
	body := make([]byte, 16+metafileHeaderSize+len(m.payload))
	copy(body[:16], m.uid[:])
	binary.LittleEndian.PutUint32(body[16:], m.uncompressedSize)
	for i, v := range m.Bounds {
		binary.LittleEndian.PutUint32(body[20+4*i:], uint32(v))
	}
	binary.LittleEndian.PutUint32(body[36:], uint32(m.SizeEMU[0]))
	binary.LittleEndian.PutUint32(body[40:], uint32(m.SizeEMU[1]))
	binary.LittleEndian.PutUint32(body[44:], uint32(len(m.payload)))
	body[48] = m.Compression
	body[49] = m.Filter
	copy(body[16+metafileHeaderSize:], m.payload)
	return encodeRecord(m.Opts, m.Type, body)
}

// UID implements the [BlipRecord] interface.
func (m *MetafileBlip) UID() [16]byte {
	return m.uid
}

// SetUID implements the [BlipRecord] interface.
func (m *MetafileBlip) SetUID(uid [16]byte) {
	m.uid = uid
}

// Data implements the [BlipRecord] interface.
func (m *MetafileBlip) Data() ([]byte, error) {
	if m.Compression != metafileCompressed {
		return append([]byte(nil), m.payload...), nil
	}
	r, err := zlib.NewReader(bytes.NewReader(m.payload))
	if err != nil {
		return nil, &MalformedRecordError{Err: err}
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &MalformedRecordError{Err: err}
	}
	return data, nil
}

// SetData implements the [BlipRecord] interface.
func (m *MetafileBlip) SetData(data []byte) error {
	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	m.uncompressedSize = uint32(len(data))
	m.payload = buf.Bytes()
	m.Compression = metafileCompressed
	m.Filter = metafileFilter
	return nil
}
