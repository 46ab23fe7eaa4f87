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

// Package drawing manages the drawing resources of one workbook file: the
// file-wide shape-id directory, the per-sheet drawing groups, and the store
// of embedded pictures.
//
// A [Manager] is obtained with [ForWorkbook], which either adopts the
// drawing records already present in the workbook's record stream or
// creates fresh ones.  The manager allocates shape ids and drawing group
// ids, and gives access to the embedded pictures as [PictureData] values.
//
// All operations assume exclusive access to one workbook at a time.  Only
// [ForWorkbook] itself is safe for concurrent use; callers must serialize
// everything else.
package drawing
