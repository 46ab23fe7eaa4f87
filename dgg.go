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
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/slices"
)

// MS-ODRAW sections: 2.2.46 2.2.48

// MaxShapeIDsPerCluster is the nominal size of the shape-id block
// represented by one cluster.
const MaxShapeIDsPerCluster = 1024

// IDCluster records how many shape ids one drawing group has consumed from
// one nominal block of [MaxShapeIDsPerCluster] ids.  A drawing group owns
// several clusters once its first block is used up.
type IDCluster struct {
	DrawingGroupID  uint16
	NumShapeIDsUsed uint16
}

// DggRecord is the file-wide shape-id directory.  There is exactly one per
// file; it tracks the global allocation watermark and the per-group
// clusters.
//
// Cluster bookkeeping and assigned id values are independent: clusters
// record how many ids a group has used, while the ids themselves are always
// drawn from the ShapeIDMax watermark.  Files written by the original
// implementation rely on this exact behaviour, so it must not be changed.
type DggRecord struct {
	// ShapeIDMax is one past the highest shape id ever allocated.
	ShapeIDMax uint32

	// NumShapesSaved is the total number of shapes ever allocated.
	NumShapesSaved uint32

	// DrawingsSaved is the number of drawing groups ever created.
	DrawingsSaved uint32

	// Clusters holds the allocation clusters in allocation order.
	Clusters []IDCluster
}

// NewDggRecord returns a fresh shape-id directory.  The watermark starts at
// [MaxShapeIDsPerCluster], so the first allocated shape id is 1024.
func NewDggRecord() *DggRecord {
	return &DggRecord{ShapeIDMax: MaxShapeIDsPerCluster}
}

func decodeDgg(body []byte, base int) (Record, error) {
	if len(body) < 16 {
		return nil, &MalformedRecordError{Pos: base, Err: errRecordTooShort}
	}
	d := &DggRecord{
		ShapeIDMax:     binary.LittleEndian.Uint32(body[0:]),
		NumShapesSaved: binary.LittleEndian.Uint32(body[8:]),
		DrawingsSaved:  binary.LittleEndian.Uint32(body[12:]),
	}
	numClusters := binary.LittleEndian.Uint32(body[4:])
	if uint64(len(body)-16) < 8*uint64(numClusters) {
		err := fmt.Errorf("directory truncated: %d clusters announced", numClusters)
		return nil, &MalformedRecordError{Pos: base, Err: err}
	}
	for i := 0; i < int(numClusters); i++ {
		d.Clusters = append(d.Clusters, IDCluster{
			DrawingGroupID:  uint16(binary.LittleEndian.Uint32(body[16+8*i:])),
			NumShapeIDsUsed: uint16(binary.LittleEndian.Uint32(body[20+8*i:])),
		})
	}
	return d, nil
}

// RecordID implements the [Record] interface.
func (d *DggRecord) RecordID() uint16 {
	return TypeDgg
}

// Options implements the [Record] interface.
func (d *DggRecord) Options() uint16 {
	return 0
}

// Encode implements the [Record] interface.
func (d *DggRecord) Encode() []byte {
	body := make([]byte, 16+8*len(d.Clusters))
	binary.LittleEndian.PutUint32(body[0:], d.ShapeIDMax)
	binary.LittleEndian.PutUint32(body[4:], uint32(len(d.Clusters)))
	binary.LittleEndian.PutUint32(body[8:], d.NumShapesSaved)
	binary.LittleEndian.PutUint32(body[12:], d.DrawingsSaved)
	for i, c := range d.Clusters {
		binary.LittleEndian.PutUint32(body[16+8*i:], uint32(c.DrawingGroupID))
		binary.LittleEndian.PutUint32(body[20+8*i:], uint32(c.NumShapeIDsUsed))
	}
	return encodeRecord(d.Options(), TypeDgg, body)
}

// AddCluster appends a cluster for the given drawing group.
func (d *DggRecord) AddCluster(groupID, numShapeIDsUsed uint16) {
	d.Clusters = append(d.Clusters, IDCluster{
		DrawingGroupID:  groupID,
		NumShapeIDsUsed: numShapeIDsUsed,
	})
}

// AllocateShapeID assigns the next free shape id to a shape in the given
// drawing group and returns it.
//
// The id is taken from the global watermark.  The group's last cluster is
// charged for the allocation; a new cluster is appended once the last one
// has reached [MaxShapeIDsPerCluster] entries.
func (d *DggRecord) AllocateShapeID(dg *DgRecord) uint32 {
	d.NumShapesSaved++

	var cluster *IDCluster
	for i := range d.Clusters {
		if d.Clusters[i].DrawingGroupID == dg.DrawingGroupID {
			cluster = &d.Clusters[i]
		}
	}
	if cluster == nil || cluster.NumShapeIDsUsed >= MaxShapeIDsPerCluster {
		d.AddCluster(dg.DrawingGroupID, 0)
		cluster = &d.Clusters[len(d.Clusters)-1]
	}
	cluster.NumShapeIDsUsed++

	shapeID := d.ShapeIDMax
	d.ShapeIDMax = shapeID + 1
	dg.NumShapes++
	dg.LastShapeID = int32(shapeID)
	return shapeID
}

// FindNewDrawingGroupID returns the smallest positive drawing group id not
// used by any cluster.  Ids of groups that no longer own clusters are
// reused.
func (d *DggRecord) FindNewDrawingGroupID() uint16 {
	used := make([]uint16, 0, len(d.Clusters))
	for _, c := range d.Clusters {
		used = append(used, c.DrawingGroupID)
	}
	slices.Sort(used)
	used = slices.Compact(used)

	var next uint16 = 1
	for _, id := range used {
		if id < next {
			continue
		}
		if id != next {
			break
		}
		next++
	}
	return next
}
