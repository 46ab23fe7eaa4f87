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
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/escher"
)

func newTestWorkbook() *Workbook {
	return &Workbook{
		Records: []BiffRecord{
			&RawRecord{ID: 0x0809, Data: make([]byte, 16)}, // BOF
			&CountryRecord{DefaultCountry: 1, CurrentCountry: 1},
			&RawRecord{ID: 0x000A}, // EOF
		},
	}
}

func TestForWorkbookCreatesRecords(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}

	// the drawing group record is inserted right after the country record
	if len(wb.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(wb.Records))
	}
	group, ok := wb.Records[2].(*DrawingGroupRecord)
	if !ok {
		t.Fatalf("record 2 is %T, want *DrawingGroupRecord", wb.Records[2])
	}

	container := group.Container()
	if container.RecordID() != escher.TypeDggContainer {
		t.Errorf("container type = 0x%04X", container.RecordID())
	}
	for _, id := range []uint16{
		escher.TypeDgg,
		escher.TypeBStoreContainer,
		escher.TypeOpt,
		escher.TypeSplitMenuColors,
	} {
		if container.ChildByID(id) == nil {
			t.Errorf("fresh container has no child 0x%04X", id)
		}
	}

	if m.Directory().ShapeIDMax != 1024 {
		t.Errorf("fresh directory ShapeIDMax = %d, want 1024", m.Directory().ShapeIDMax)
	}
}

func TestForWorkbookIdempotent(t *testing.T) {
	wb := newTestWorkbook()
	m1, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	if m1 != m2 {
		t.Error("second attach returned a different manager")
	}
	if len(wb.Records) != 4 {
		t.Errorf("second attach changed the record stream")
	}
}

func TestForWorkbookConcurrent(t *testing.T) {
	wb := newTestWorkbook()

	const n = 8
	managers := make([]*Manager, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := ForWorkbook(wb)
			if err != nil {
				t.Error(err)
				return
			}
			managers[i] = m
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if managers[i] != managers[0] {
			t.Fatal("racing attaches returned different managers")
		}
	}
}

func TestForWorkbookExisting(t *testing.T) {
	// build a workbook, give it drawing state, then reattach to the
	// serialized form
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	dg := m.CreateDrawingGroup()
	m.AllocateShapeID(dg)
	m.AllocateShapeID(dg)
	pict, err := m.AllocatePicture(PictureTypeJPEG)
	if err != nil {
		t.Fatal(err)
	}
	if err := pict.SetData([]byte("jpeg bytes")); err != nil {
		t.Fatal(err)
	}

	var group *DrawingGroupRecord
	for _, rec := range wb.Records {
		if g, ok := rec.(*DrawingGroupRecord); ok {
			group = g
		}
	}
	raw := group.Container().Encode()

	wb2 := &Workbook{
		Records: []BiffRecord{
			&CountryRecord{DefaultCountry: 1, CurrentCountry: 1},
			NewDrawingGroupRecord(raw),
		},
	}
	m2, err := ForWorkbook(wb2)
	if err != nil {
		t.Fatal(err)
	}

	if d := cmp.Diff(m.Directory(), m2.Directory()); d != "" {
		t.Errorf("directory differs after reattach (-want +got):\n%s", d)
	}
	if m2.PictureCount() != 1 {
		t.Errorf("PictureCount = %d, want 1", m2.PictureCount())
	}
	pictures := m2.AllPictures()
	if len(pictures) != 1 {
		t.Fatalf("got %d pictures", len(pictures))
	}
	data, err := pictures[0].Data()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("picture bytes changed: %q", data)
	}
}

func TestForWorkbookMissingDirectory(t *testing.T) {
	// an existing container without the shape-id directory is corrupt
	container := escher.NewContainer(escher.TypeDggContainer)
	container.AppendChild(escher.NewContainer(escher.TypeBStoreContainer))

	wb := &Workbook{
		Records: []BiffRecord{
			NewDrawingGroupRecord(container.Encode()),
		},
	}
	_, err := ForWorkbook(wb)
	var recErr *escher.MalformedRecordError
	if !errors.As(err, &recErr) {
		t.Errorf("got %v, want MalformedRecordError", err)
	}
}

func TestForWorkbookMissingStore(t *testing.T) {
	// a missing picture store is not an error; an empty one is created
	container := escher.NewContainer(escher.TypeDggContainer)
	container.AppendChild(escher.NewDggRecord())
	container.AppendChild(&escher.OptRecord{})

	wb := &Workbook{
		Records: []BiffRecord{
			NewDrawingGroupRecord(container.Encode()),
		},
	}
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	if m.PictureCount() != 0 {
		t.Errorf("PictureCount = %d, want 0", m.PictureCount())
	}

	// the store is inserted into the container decoded from the workbook
	// record, not into the one used to build the fixture
	decoded := wb.Records[0].(*DrawingGroupRecord).Container()
	if decoded.Children[1].RecordID() != escher.TypeBStoreContainer {
		t.Error("picture store not inserted at position 1")
	}
	if len(decoded.Children) != 3 {
		t.Errorf("got %d children, want 3", len(decoded.Children))
	}

	// a picture allocated after attach lands in the created store
	if _, err := m.AllocatePicture(PictureTypePNG); err != nil {
		t.Fatal(err)
	}
	if m.PictureCount() != 1 {
		t.Errorf("PictureCount = %d, want 1", m.PictureCount())
	}
}

func TestCreateDrawingGroup(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	dgg := m.Directory()

	dg1 := m.CreateDrawingGroup()
	if dg1.DrawingGroupID != 1 || dg1.LastShapeID != -1 || dg1.NumShapes != 0 {
		t.Errorf("first group: %+v", dg1)
	}
	dg2 := m.CreateDrawingGroup()
	if dg2.DrawingGroupID != 2 || dg2.LastShapeID != -1 {
		t.Errorf("second group: %+v", dg2)
	}

	if dgg.DrawingsSaved != 2 {
		t.Errorf("DrawingsSaved = %d, want 2", dgg.DrawingsSaved)
	}
	want := []escher.IDCluster{
		{DrawingGroupID: 1, NumShapeIDsUsed: 0},
		{DrawingGroupID: 2, NumShapeIDsUsed: 0},
	}
	if d := cmp.Diff(want, dgg.Clusters); d != "" {
		t.Errorf("clusters differ (-want +got):\n%s", d)
	}
	if dgg.NumShapesSaved != 0 {
		t.Errorf("NumShapesSaved = %d, want 0", dgg.NumShapesSaved)
	}
}

func TestAllocateShapeID(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	dgg := m.Directory()

	dg1 := m.CreateDrawingGroup()
	dg2 := m.CreateDrawingGroup()

	if got := m.AllocateShapeID(dg1); got != 1024 {
		t.Errorf("first id = %d, want 1024", got)
	}
	if dg1.LastShapeID != 1024 || dgg.ShapeIDMax != 1025 {
		t.Errorf("LastShapeID = %d, ShapeIDMax = %d", dg1.LastShapeID, dgg.ShapeIDMax)
	}
	if got := m.AllocateShapeID(dg1); got != 1025 {
		t.Errorf("second id = %d, want 1025", got)
	}

	// the watermark does not jump when another group allocates
	if got := m.AllocateShapeID(dg2); got != 1026 {
		t.Errorf("other group id = %d, want 1026", got)
	}

	// fill up the first group's cluster; the next allocation appends a
	// second cluster for the group
	for dgg.Clusters[0].NumShapeIDsUsed < escher.MaxShapeIDsPerCluster {
		m.AllocateShapeID(dg1)
	}
	before := len(dgg.Clusters)
	m.AllocateShapeID(dg1)
	if len(dgg.Clusters) != before+1 {
		t.Errorf("got %d clusters, want %d", len(dgg.Clusters), before+1)
	}
	last := dgg.Clusters[len(dgg.Clusters)-1]
	if last.DrawingGroupID != 1 || last.NumShapeIDsUsed != 1 {
		t.Errorf("new cluster = %+v", last)
	}

	wantShapes := uint32(escher.MaxShapeIDsPerCluster + 2)
	if dgg.NumShapesSaved != wantShapes {
		t.Errorf("NumShapesSaved = %d, want %d", dgg.NumShapesSaved, wantShapes)
	}
}

func TestGroupIDGapFilling(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	dgg := m.Directory()

	m.CreateDrawingGroup()
	m.CreateDrawingGroup()

	// drop all clusters of group 1, as if the sheet had been removed
	var keep []escher.IDCluster
	for _, c := range dgg.Clusters {
		if c.DrawingGroupID != 1 {
			keep = append(keep, c)
		}
	}
	dgg.Clusters = keep

	dg := m.CreateDrawingGroup()
	if dg.DrawingGroupID != 1 {
		t.Errorf("got group id %d, want 1", dg.DrawingGroupID)
	}
}

func TestAllocatePicture(t *testing.T) {
	cases := []struct {
		format  int
		tag     uint16
		wantRID uint16
	}{
		{PictureTypeEMF, 0x0000, escher.TypeBlipEMF},
		{PictureTypeWMF, 0x0000, escher.TypeBlipWMF},
		{PictureTypePICT, 0x00FF, escher.TypeBlipPICT},
		{PictureTypeJPEG, 0x00FF, escher.TypeBlipJPEG},
		{PictureTypePNG, 0x00FF, escher.TypeBlipPNG},
		{PictureTypeDIB, 0x00FF, escher.TypeBlipDIB},
	}
	for _, test := range cases {
		wb := newTestWorkbook()
		m, err := ForWorkbook(wb)
		if err != nil {
			t.Fatal(err)
		}

		pict, err := m.AllocatePicture(test.format)
		if err != nil {
			t.Fatalf("format %d: %v", test.format, err)
		}
		if pict.Format() != test.format {
			t.Errorf("format %d: Format() = %d", test.format, pict.Format())
		}

		bse, err := m.BSERecord(1)
		if err != nil {
			t.Fatal(err)
		}
		if bse.Tag != test.tag {
			t.Errorf("format %d: tag = 0x%02X, want 0x%02X",
				test.format, bse.Tag, test.tag)
		}
		if bse.Blip.RecordID() != test.wantRID {
			t.Errorf("format %d: blip type = 0x%04X, want 0x%04X",
				test.format, bse.Blip.RecordID(), test.wantRID)
		}
		if bse.BlipTypeWin32 != byte(test.format) || bse.BlipTypeMacOS != byte(test.format) {
			t.Errorf("format %d: blip type bytes = %d, %d",
				test.format, bse.BlipTypeWin32, bse.BlipTypeMacOS)
		}
	}
}

func TestAllocatePictureUnknownFormat(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range []int{0, 1, 8, 17, -1} {
		_, err := m.AllocatePicture(format)
		if !errors.Is(err, ErrUnknownPictureFormat) {
			t.Errorf("format %d: got %v", format, err)
		}
	}
	if m.PictureCount() != 0 {
		t.Error("failed allocation modified the store")
	}
}

func TestStoreOrderingAndMalformedEntries(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}

	first, err := m.AllocatePicture(PictureTypeJPEG)
	if err != nil {
		t.Fatal(err)
	}
	first.SetData(make([]byte, 10))

	// an entry without a blip, as found in files written by buggy
	// programs
	m.addBSERecord(&escher.BSERecord{Tag: 0xFF})

	second, err := m.AllocatePicture(PictureTypePNG)
	if err != nil {
		t.Fatal(err)
	}
	second.SetData(make([]byte, 50))

	if m.PictureCount() != 3 {
		t.Errorf("PictureCount = %d, want 3", m.PictureCount())
	}
	pictures := m.AllPictures()
	if len(pictures) != 2 {
		t.Fatalf("AllPictures returned %d entries, want 2", len(pictures))
	}
	for i, wantLen := range []int{10, 50} {
		data, err := pictures[i].Data()
		if err != nil {
			t.Fatal(err)
		}
		if len(data) != wantLen {
			t.Errorf("picture %d has %d bytes, want %d", i, len(data), wantLen)
		}
	}
}

func TestBSERecordIndex(t *testing.T) {
	wb := newTestWorkbook()
	m, err := ForWorkbook(wb)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AllocatePicture(PictureTypePNG); err != nil {
		t.Fatal(err)
	}

	if _, err := m.BSERecord(1); err != nil {
		t.Errorf("index 1: %v", err)
	}
	for _, index := range []int{0, -1, 2} {
		_, err := m.BSERecord(index)
		if !errors.Is(err, ErrPictureIndexRange) {
			t.Errorf("index %d: got %v", index, err)
		}
	}
}
