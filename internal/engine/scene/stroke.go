package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/drawstorm/internal/engine/history"
)

func (p *Page) stroke(id history.ObjectID) (*Shape, error) {
	s, ok := p.shapes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, id)
	}
	if s.kind != KindFreeline {
		return nil, fmt.Errorf("%w: %s", ErrNotAStroke, id)
	}
	return s, nil
}

// Draw appends a segment to a freeline and returns the new segment id.
func (d *Document) Draw(pageID history.HostID, strokeID history.ObjectID, points []float64) (string, error) {
	p, err := d.editPage(pageID)
	if err != nil {
		return "", err
	}
	s, err := p.stroke(strokeID)
	if err != nil {
		return "", err
	}

	defer d.gesture()()
	before := s.Segments()
	seg := history.Segment{ID: uuid.NewString(), Points: slices.Clone(points)}
	s.SetSegments(append(s.Segments(), seg))
	d.record(p, history.NewFreelineAddCommand(p, s, before))
	return seg.ID, nil
}

// EditSegment replaces the points of one segment.
func (d *Document) EditSegment(pageID history.HostID, strokeID history.ObjectID, segmentID string, points []float64) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	s, err := p.stroke(strokeID)
	if err != nil {
		return err
	}
	before := s.Segments()
	segs := s.Segments()
	idx := slices.IndexFunc(segs, func(seg history.Segment) bool { return seg.ID == segmentID })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}

	defer d.gesture()()
	segs[idx].Points = slices.Clone(points)
	s.SetSegments(segs)
	d.record(p, history.NewFreelineUpdateCommand(p, s, before))
	return nil
}

// Erase removes segments from a freeline.
func (d *Document) Erase(pageID history.HostID, strokeID history.ObjectID, segmentIDs ...string) error {
	p, err := d.editPage(pageID)
	if err != nil {
		return err
	}
	s, err := p.stroke(strokeID)
	if err != nil {
		return err
	}
	before := s.Segments()
	for _, id := range segmentIDs {
		if !slices.ContainsFunc(before, func(seg history.Segment) bool { return seg.ID == id }) {
			return fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
		}
	}

	defer d.gesture()()
	s.SetSegments(slices.DeleteFunc(s.Segments(), func(seg history.Segment) bool {
		return slices.Contains(segmentIDs, seg.ID)
	}))
	d.record(p, history.NewFreelineEraseCommand(p, s, before))
	return nil
}
