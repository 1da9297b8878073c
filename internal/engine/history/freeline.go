package history

import "fmt"

type indexedSegment struct {
	segment Segment
	index   int
}

type freelinePayload struct {
	target ObjectID

	added  []Segment        // freeline-add
	before []Segment        // freeline-update, previous versions
	after  []Segment        // freeline-update, current versions
	erased []indexedSegment // freeline-erase, with original positions
}

func (p *freelinePayload) empty() bool {
	return len(p.added) == 0 && len(p.before) == 0 && len(p.erased) == 0
}

// NewFreelineAddCommand records segments appended to stroke since before.
func NewFreelineAddCommand(host ObjectHost, stroke Stroke, before []Segment) *Command {
	known := segmentIDs(before)
	p := &freelinePayload{target: stroke.ObjectID()}
	for _, seg := range stroke.Segments() {
		if !known[seg.ID] {
			p.added = append(p.added, cloneSegment(seg))
		}
	}
	c := newCommand(KindFreelineAdd, host.HostID())
	c.freeline = p
	return c
}

// NewFreelineUpdateCommand records segments of stroke whose points changed
// since before.
func NewFreelineUpdateCommand(host ObjectHost, stroke Stroke, before []Segment) *Command {
	prev := make(map[string]Segment, len(before))
	for _, seg := range before {
		prev[seg.ID] = seg
	}
	p := &freelinePayload{target: stroke.ObjectID()}
	for _, seg := range stroke.Segments() {
		old, ok := prev[seg.ID]
		if !ok || samePoints(old.Points, seg.Points) {
			continue
		}
		p.before = append(p.before, cloneSegment(old))
		p.after = append(p.after, cloneSegment(seg))
	}
	c := newCommand(KindFreelineUpdate, host.HostID())
	c.freeline = p
	return c
}

// NewFreelineEraseCommand records segments present in before that stroke no
// longer has, with their original positions.
func NewFreelineEraseCommand(host ObjectHost, stroke Stroke, before []Segment) *Command {
	remaining := segmentIDs(stroke.Segments())
	p := &freelinePayload{target: stroke.ObjectID()}
	for i, seg := range before {
		if !remaining[seg.ID] {
			p.erased = append(p.erased, indexedSegment{segment: cloneSegment(seg), index: i})
		}
	}
	c := newCommand(KindFreelineErase, host.HostID())
	c.freeline = p
	return c
}

func (c *Command) replayFreeline(host ObjectHost, dir direction) error {
	p := c.freeline
	obj, ok := host.FindObjectByID(p.target)
	if !ok {
		return nil
	}
	stroke, ok := obj.(Stroke)
	if !ok {
		return fmt.Errorf("object %s is not a stroke", p.target)
	}

	segs := cloneSegments(stroke.Segments())
	switch {
	case c.kind == KindFreelineAdd && dir == forward:
		segs = appendMissing(segs, p.added)
	case c.kind == KindFreelineAdd:
		segs = removeSegments(segs, p.added)
	case c.kind == KindFreelineUpdate && dir == forward:
		segs = replaceSegments(segs, p.after)
	case c.kind == KindFreelineUpdate:
		segs = replaceSegments(segs, p.before)
	case c.kind == KindFreelineErase && dir == forward:
		erased := make([]Segment, len(p.erased))
		for i, e := range p.erased {
			erased[i] = e.segment
		}
		segs = removeSegments(segs, erased)
	default:
		segs = reinsertSegments(segs, p.erased)
	}
	stroke.SetSegments(segs)
	refresh(stroke)
	return nil
}

// appendMissing appends segments whose ids are not already present.
func appendMissing(segs, add []Segment) []Segment {
	present := segmentIDs(segs)
	for _, seg := range add {
		if present[seg.ID] {
			continue
		}
		segs = append(segs, cloneSegment(seg))
		present[seg.ID] = true
	}
	return segs
}

func removeSegments(segs, drop []Segment) []Segment {
	gone := segmentIDs(drop)
	out := segs[:0]
	for _, seg := range segs {
		if !gone[seg.ID] {
			out = append(out, seg)
		}
	}
	return out
}

func replaceSegments(segs, with []Segment) []Segment {
	byID := make(map[string]Segment, len(with))
	for _, seg := range with {
		byID[seg.ID] = seg
	}
	for i, seg := range segs {
		if repl, ok := byID[seg.ID]; ok {
			segs[i] = cloneSegment(repl)
		}
	}
	return segs
}

// reinsertSegments puts erased segments back at their original positions,
// skipping any id that is already present.
func reinsertSegments(segs []Segment, erased []indexedSegment) []Segment {
	present := segmentIDs(segs)
	for _, e := range erased {
		if present[e.segment.ID] {
			continue
		}
		idx := min(max(e.index, 0), len(segs))
		segs = append(segs, Segment{})
		copy(segs[idx+1:], segs[idx:])
		segs[idx] = cloneSegment(e.segment)
		present[e.segment.ID] = true
	}
	return segs
}

func segmentIDs(segs []Segment) map[string]bool {
	ids := make(map[string]bool, len(segs))
	for _, seg := range segs {
		ids[seg.ID] = true
	}
	return ids
}

func samePoints(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cloneSegment(seg Segment) Segment {
	pts := make([]float64, len(seg.Points))
	copy(pts, seg.Points)
	return Segment{ID: seg.ID, Points: pts}
}

func cloneSegments(segs []Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, seg := range segs {
		out[i] = cloneSegment(seg)
	}
	return out
}
