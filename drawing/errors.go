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

import "errors"

// ErrUnknownPictureFormat is returned when a picture is allocated with a
// format code which is not one of the PictureType constants.
var ErrUnknownPictureFormat = errors.New("unknown picture format")

// ErrPictureIndexRange is returned when a picture store entry is requested
// with a 1-based index outside the store.
var ErrPictureIndexRange = errors.New("picture index out of range")

// ErrDetachedPicture is returned when a picture store entry has no blip
// record attached.
var ErrDetachedPicture = errors.New("store entry has no blip record")
