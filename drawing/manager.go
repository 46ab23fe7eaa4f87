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
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/exp/slices"

	"seehuhn.de/go/escher"
)

// Picture format codes accepted by [Manager.AllocatePicture].  The values
// equal the blip record type minus [escher.TypeBlipStart].
const (
	PictureTypeEMF  = 2
	PictureTypeWMF  = 3
	PictureTypePICT = 4
	PictureTypeJPEG = 5
	PictureTypePNG  = 6
	PictureTypeDIB  = 7
)

// Format tags stored in the options field of a blip record, one distinct
// constant per picture format.
const (
	msobiWMF  uint16 = 0x2160
	msobiEMF  uint16 = 0x3D40
	msobiPICT uint16 = 0x5420
	msobiPNG  uint16 = 0x6E00
	msobiJPEG uint16 = 0x46A0
	msobiDIB  uint16 = 0x7A80
)

// Manager is the single entry point for drawing group creation, shape-id
// allocation and picture store access for one workbook.
type Manager struct {
	dgg    *escher.DggRecord
	bstore *escher.ContainerRecord
	groups []*escher.DgRecord
	log    *slog.Logger
}

// ForWorkbook returns the drawing manager of the given workbook.
//
// If the workbook does not yet contain a drawing group record, fresh
// directory, picture store, default shape options and default split menu
// color records are created and inserted immediately after the country
// record.  Otherwise the existing records are decoded and reused; a
// [escher.MalformedRecordError] is returned if the existing container lacks
// the shape-id directory.
//
// ForWorkbook is idempotent and safe for concurrent use on the same
// workbook.
func ForWorkbook(wb *Workbook) (*Manager, error) {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if wb.manager != nil {
		return wb.manager, nil
	}

	var group *DrawingGroupRecord
	for _, rec := range wb.Records {
		if g, ok := rec.(*DrawingGroupRecord); ok {
			group = g
			break
		}
	}

	if group != nil {
		if err := group.decode(); err != nil {
			return nil, err
		}
	} else {
		group = newDrawingGroupRecord()

		// by convention the drawing group record follows the country record
		pos := 0
		for i, rec := range wb.Records {
			if rec.Sid() == SidCountry {
				pos = i + 1
				break
			}
		}
		wb.Records = slices.Insert(wb.Records, pos, BiffRecord(group))
	}

	container := group.Container()
	dgg, _ := container.ChildByID(escher.TypeDgg).(*escher.DggRecord)
	if dgg == nil {
		return nil, &escher.MalformedRecordError{
			Err: errors.New("drawing group container has no shape-id directory"),
		}
	}

	bstore, _ := container.ChildByID(escher.TypeBStoreContainer).(*escher.ContainerRecord)
	if bstore == nil {
		// An empty store does no harm and keeps the in-memory model
		// uniform.
		bstore = escher.NewContainer(escher.TypeBStoreContainer)
		container.Children = slices.Insert(container.Children, 1, escher.Record(bstore))
	}

	wb.manager = &Manager{
		dgg:    dgg,
		bstore: bstore,
		log:    slog.Default(),
	}
	return wb.manager, nil
}

// newDrawingGroupRecord builds the drawing group record written into files
// that gain their first drawing.
func newDrawingGroupRecord() *DrawingGroupRecord {
	opt := &escher.OptRecord{}
	opt.AddProperty(0x00BF, 0x00080008) // text: size text to fit shape
	opt.AddProperty(0x0181, 0x08000041) // fill color
	opt.AddProperty(0x01C0, 0x08000040) // line color

	container := escher.NewContainer(escher.TypeDggContainer)
	container.AppendChild(escher.NewDggRecord())
	container.AppendChild(escher.NewContainer(escher.TypeBStoreContainer))
	container.AppendChild(opt)
	container.AppendChild(&escher.SplitMenuColorsRecord{
		Fill:   0x0800000D,
		Line:   0x0800000C,
		Shadow: 0x08000017,
		ThreeD: 0x100000F7,
	})
	return &DrawingGroupRecord{container: container}
}

// Directory returns the shape-id directory owned by this manager.
func (m *Manager) Directory() *escher.DggRecord {
	return m.dgg
}

// CreateDrawingGroup creates a new drawing group.  The smallest unused
// drawing group id is assigned, and an empty allocation cluster for the
// group is added to the directory.
func (m *Manager) CreateDrawingGroup() *escher.DgRecord {
	dg := &escher.DgRecord{
		DrawingGroupID: m.dgg.FindNewDrawingGroupID(),
		LastShapeID:    -1,
	}
	m.groups = append(m.groups, dg)
	m.dgg.AddCluster(dg.DrawingGroupID, 0)
	m.dgg.DrawingsSaved++
	return dg
}

// ClearDrawingGroups drops the cached list of drawing groups.
func (m *Manager) ClearDrawingGroups() {
	m.groups = m.groups[:0]
}

// FindNewDrawingGroupID returns the next available 1-based drawing group
// id.
func (m *Manager) FindNewDrawingGroupID() uint16 {
	return m.dgg.FindNewDrawingGroupID()
}

// AllocateShapeID allocates a new shape id for the given drawing group.
func (m *Manager) AllocateShapeID(dg *escher.DgRecord) uint32 {
	return m.dgg.AllocateShapeID(dg)
}

// AllocatePicture adds a new, empty picture to the picture store.  The
// caller must provide the picture bytes via [PictureData.SetData].
//
// format must be one of the PictureType constants; otherwise
// [ErrUnknownPictureFormat] is returned and the store is left unchanged.
func (m *Manager) AllocatePicture(format int) (*PictureData, error) {
	var blip escher.BlipRecord
	var tag uint16

	recordID := escher.TypeBlipStart + uint16(format)
	switch format {
	case PictureTypeEMF:
		blip = escher.NewMetafileBlip(recordID, msobiEMF)
	case PictureTypeWMF:
		blip = escher.NewMetafileBlip(recordID, msobiWMF)
	case PictureTypePICT:
		blip, tag = escher.NewBitmapBlip(recordID, msobiPICT), 0xFF
	case PictureTypeJPEG:
		blip, tag = escher.NewBitmapBlip(recordID, msobiJPEG), 0xFF
	case PictureTypePNG:
		blip, tag = escher.NewBitmapBlip(recordID, msobiPNG), 0xFF
	case PictureTypeDIB:
		blip, tag = escher.NewBitmapBlip(recordID, msobiDIB), 0xFF
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPictureFormat, format)
	}

	bse := &escher.BSERecord{
		Opts:          0x0002 | uint16(format)<<4,
		BlipTypeWin32: byte(format),
		BlipTypeMacOS: byte(format),
		Tag:           tag,
		Blip:          blip,
	}
	m.addBSERecord(bse)

	return &PictureData{bse: bse, blip: blip}, nil
}

// addBSERecord appends the entry to the picture store and updates the
// store's child count instance field.
func (m *Manager) addBSERecord(bse *escher.BSERecord) {
	m.bstore.Instance = uint16(len(m.bstore.Children) + 1)
	m.bstore.AppendChild(bse)
}

// AllPictures returns the pictures of the workbook in store order.
//
// Store entries without a blip record are skipped: such entries violate the
// format but occur in real-world files and must not make the whole file
// unreadable.
func (m *Manager) AllPictures() []*PictureData {
	pictures := make([]*PictureData, 0, len(m.bstore.Children))
	for _, child := range m.bstore.Children {
		bse, ok := child.(*escher.BSERecord)
		if !ok {
			m.log.Debug("picture store contains a non-BSE record",
				"type", fmt.Sprintf("0x%04X", child.RecordID()))
			continue
		}
		if bse.Blip == nil {
			m.log.Debug("skipping BSE record without a blip")
			continue
		}
		pictures = append(pictures, &PictureData{bse: bse, blip: bse.Blip})
	}
	return pictures
}

// PictureCount returns the number of entries in the picture store,
// including entries skipped by [Manager.AllPictures].
func (m *Manager) PictureCount() int {
	return len(m.bstore.Children)
}

// BSERecord returns the picture store entry at the given 1-based index.
func (m *Manager) BSERecord(index int) (*escher.BSERecord, error) {
	if index < 1 || index > len(m.bstore.Children) {
		return nil, fmt.Errorf("%w: %d of %d",
			ErrPictureIndexRange, index, len(m.bstore.Children))
	}
	bse, ok := m.bstore.Children[index-1].(*escher.BSERecord)
	if !ok {
		return nil, &escher.MalformedRecordError{
			Err: fmt.Errorf("store entry %d is not a BSE record", index),
		}
	}
	return bse, nil
}
