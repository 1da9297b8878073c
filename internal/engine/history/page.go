package history

import "fmt"

type pagePayload struct {
	id     HostID
	record PageRecord

	// from/to are the captured positions. They are hints only: replay
	// always looks the page up by id first.
	from, to int
}

// NewPageAddCommand records a page that has already been inserted.
func NewPageAddCommand(host PageHost, id HostID) (*Command, error) {
	idx, ok := host.PageIndex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	rec, err := host.SerializePage(id)
	if err != nil {
		return nil, fmt.Errorf("serialize page %s: %w", id, err)
	}
	c := newCommand(KindPageAdd, host.HostID())
	c.page = &pagePayload{id: id, record: rec, from: idx, to: idx}
	return c, nil
}

// NewPageRemoveCommand captures a page before removal; call Execute to
// remove it.
func NewPageRemoveCommand(host PageHost, id HostID) (*Command, error) {
	idx, ok := host.PageIndex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	rec, err := host.SerializePage(id)
	if err != nil {
		return nil, fmt.Errorf("serialize page %s: %w", id, err)
	}
	c := newCommand(KindPageRemove, host.HostID())
	c.page = &pagePayload{id: id, record: rec, from: idx, to: idx}
	return c, nil
}

// NewPageIndexCommand records a page moved from previous to its current index.
func NewPageIndexCommand(host PageHost, id HostID, previous int) (*Command, error) {
	idx, ok := host.PageIndex(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	c := newCommand(KindPageIndex, host.HostID())
	c.page = &pagePayload{id: id, from: previous, to: idx}
	return c, nil
}

func (c *Command) replayPage(host PageHost, dir direction) error {
	p := c.page
	insert := (c.kind == KindPageAdd && dir == forward) || (c.kind == KindPageRemove && dir == backward)

	switch {
	case c.kind == KindPageIndex:
		target := p.from
		if dir == forward {
			target = p.to
		}
		cur, ok := host.PageIndex(p.id)
		if !ok {
			return nil
		}
		target = clamp(target, host.PageCount()-1)
		if cur == target {
			return nil
		}
		return host.MovePage(p.id, target)

	case insert:
		if _, ok := host.PageIndex(p.id); ok {
			return nil
		}
		return host.InsertPage(p.record, clamp(p.from, host.PageCount()))

	default:
		cur, ok := host.PageIndex(p.id)
		if !ok {
			return nil
		}
		rec, err := host.SerializePage(p.id)
		if err != nil {
			return fmt.Errorf("serialize page %s: %w", p.id, err)
		}
		p.record = rec
		p.from = cur
		return host.RemovePage(p.id)
	}
}

func clamp(idx, hi int) int {
	return min(max(idx, 0), max(hi, 0))
}
