package cache

import (
	"fmt"
	"io"
)

// BlockState is a copy of the state of one block.
type BlockState struct {
	Valid   bool   `json:"valid"`
	Tag     uint64 `json:"tag"`
	Counter uint64 `json:"counter"`
}

// LineState is a copy of the state of one line.
type LineState struct {
	Index  int          `json:"index"`
	Blocks []BlockState `json:"blocks"`
}

// Snapshot copies the state of every line.
func (c *Cache) Snapshot() []LineState {
	states := make([]LineState, len(c.lines))

	for i := range c.lines {
		states[i] = c.lines[i].snapshot(i)
	}

	return states
}

func (l *Line) snapshot(index int) LineState {
	state := LineState{
		Index:  index,
		Blocks: make([]BlockState, len(l.blocks)),
	}

	for j, b := range l.blocks {
		state.Blocks[j] = BlockState{
			Valid:   b.valid,
			Tag:     b.tag,
			Counter: b.counter,
		}
	}

	return state
}

// Dump prints every line and its blocks.
func (c *Cache) Dump(w io.Writer) error {
	for i := range c.lines {
		if _, err := fmt.Fprintf(w, "line %d: \n", i); err != nil {
			return err
		}

		for j, b := range c.lines[i].blocks {
			v := 0
			if b.valid {
				v = 1
			}

			_, err := fmt.Fprintf(w, "\tblock %d: v: %d tag: %d counter: %d\n",
				j, v, b.tag, b.counter)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
