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
)

// placeableWMFKey is the magic number of the 22-byte "placeable" metafile
// header which some WMF files carry in front of the metafile stream.
const placeableWMFKey = 0x9AC6CDD7

// placeableWMFHeaderSize is the size of the placeable header.
const placeableWMFHeaderSize = 22

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// isPlaceableWMF reports whether data starts with the placeable metafile
// header.  Detection is by the magic number, not by the picture format.
func isPlaceableWMF(data []byte) bool {
	return len(data) >= placeableWMFHeaderSize &&
		binary.LittleEndian.Uint32(data) == placeableWMFKey
}

// extractPNG returns the canonical PNG stream contained in data.  Some
// writers store an extra header segment in front of the PNG signature; its
// length varies, so the signature is searched for rather than assumed at a
// fixed offset.  If no signature is found, data is returned unchanged.
func extractPNG(data []byte) []byte {
	if bytes.HasPrefix(data, pngSignature) {
		return data
	}
	if i := bytes.Index(data, pngSignature); i >= 0 {
		return data[i:]
	}
	return data
}
