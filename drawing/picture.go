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
	"crypto/md5"

	"seehuhn.de/go/escher"
)

// PictureData gives access to one embedded picture: its format, and its
// bytes.  Instances are obtained from [Manager.AllocatePicture] and
// [Manager.AllPictures].
type PictureData struct {
	bse  *escher.BSERecord
	blip escher.BlipRecord
}

// NewPictureData returns the picture stored in the given store entry.  It
// returns [ErrDetachedPicture] if the entry has no blip record.
func NewPictureData(bse *escher.BSERecord) (*PictureData, error) {
	if bse.Blip == nil {
		return nil, ErrDetachedPicture
	}
	return &PictureData{bse: bse, blip: bse.Blip}, nil
}

// NewDetachedPictureData wraps a bare blip record in a picture backed by a
// stub store entry.  The stub entry is not part of any workbook, so changes
// made through the returned picture are not saved to a file.  New code
// should allocate pictures through [Manager.AllocatePicture] instead.
func NewDetachedPictureData(blip escher.BlipRecord) *PictureData {
	return &PictureData{
		bse:  &escher.BSERecord{Blip: blip},
		blip: blip,
	}
}

// Format returns the picture format: the blip record type relative to
// [escher.TypeBlipStart].  For the six allocatable formats this equals the
// corresponding PictureType constant.
func (p *PictureData) Format() int {
	return int(p.blip.RecordID()) - int(escher.TypeBlipStart)
}

// SuggestFileExtension returns "wmf", "jpeg" etc. depending on the format.
// The result is the empty string for unrecognized formats, never "unknown"
// or similar.
func (p *PictureData) SuggestFileExtension() string {
	switch p.blip.RecordID() {
	case escher.TypeBlipWMF:
		return "wmf"
	case escher.TypeBlipEMF:
		return "emf"
	case escher.TypeBlipPICT:
		return "pict"
	case escher.TypeBlipPNG:
		return "png"
	case escher.TypeBlipJPEG:
		return "jpeg"
	case escher.TypeBlipDIB:
		return "dib"
	case escher.TypeBlipTIFF:
		return "tif"
	default:
		return ""
	}
}

// MimeType returns the MIME type of the picture, or "image/unknown" for
// unrecognized formats.
func (p *PictureData) MimeType() string {
	switch p.blip.RecordID() {
	case escher.TypeBlipWMF:
		return "image/x-wmf"
	case escher.TypeBlipEMF:
		return "image/x-emf"
	case escher.TypeBlipPICT:
		return "image/x-pict"
	case escher.TypeBlipPNG:
		return "image/png"
	case escher.TypeBlipJPEG:
		return "image/jpeg"
	case escher.TypeBlipDIB:
		return "image/bmp"
	case escher.TypeBlipTIFF:
		return "image/tiff"
	default:
		return "image/unknown"
	}
}

// PictureType returns the public picture type constant of the format, or 0
// for formats without one (including TIFF).
func (p *PictureData) PictureType() int {
	switch p.blip.RecordID() {
	case escher.TypeBlipWMF:
		return PictureTypeWMF
	case escher.TypeBlipEMF:
		return PictureTypeEMF
	case escher.TypeBlipPICT:
		return PictureTypePICT
	case escher.TypeBlipPNG:
		return PictureTypePNG
	case escher.TypeBlipJPEG:
		return PictureTypeJPEG
	case escher.TypeBlipDIB:
		return PictureTypeDIB
	default:
		return 0
	}
}

// Data returns the picture bytes.
//
// For PNG pictures the stored bytes may carry an extra leading header in
// front of the PNG signature, depending on which program wrote the file.
// The extra header is stripped, so that the result is always a standard PNG
// stream.  All other formats return the stored bytes unchanged.
func (p *PictureData) Data() ([]byte, error) {
	data, err := p.blip.Data()
	if err != nil {
		return nil, err
	}
	if p.blip.RecordID() == escher.TypeBlipPNG {
		data = extractPNG(data)
	}
	return data, nil
}

// SetData replaces the picture bytes.
//
// The format of the data must match the format of this picture.  No
// validation is performed; mismatched data silently corrupts the picture.
//
// For WMF pictures a leading 22-byte placeable header, if present, is
// stripped before storage: stored metafiles never carry that header.  The
// content digest on the store entry and the blip is recomputed from the
// stored bytes, and the entry's size field is updated to the serialized
// size of the blip record.
func (p *PictureData) SetData(data []byte) error {
	if p.blip.RecordID() == escher.TypeBlipWMF && isPlaceableWMF(data) {
		data = data[placeableWMFHeaderSize:]
	}

	uid := md5.Sum(data)
	p.bse.UID = uid
	p.blip.SetUID(uid)

	if err := p.blip.SetData(data); err != nil {
		return err
	}
	p.bse.Size = uint32(len(p.blip.Encode()))
	return nil
}
