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

// Package escher reads and writes Office Drawing ("Escher") records, the
// binary record layer used by the legacy binary spreadsheet format to store
// drawing shapes and embedded pictures.
//
// Every record starts with an eight byte header giving the record version,
// instance, type and payload length.  Records with version 0xF are
// containers holding an ordered list of child records.  This package models
// the records needed for shape-id allocation and the picture store as
// concrete types:
//
//	ContainerRecord
//	DggRecord
//	DgRecord
//	BSERecord
//	BitmapBlip
//	MetafileBlip
//	OptRecord
//	SplitMenuColorsRecord
//
// All other record types decode to UnknownRecord, which preserves the raw
// payload so that foreign records survive a decode/encode cycle unchanged.
//
// Use [Decode] or [DecodeAll] to parse records from a byte slice, and the
// Encode method of each record to serialize it.  All integers on the wire
// are little-endian.
//
// The subpackage seehuhn.de/go/escher/drawing manages shape-id allocation
// and the picture store on top of these records.
package escher
