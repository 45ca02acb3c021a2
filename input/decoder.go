package input

import "github.com/pkg/errors"

// KeySource is the platform capability the decoder is written against.
// PollKey never blocks: ok is false when no byte is pending.
type KeySource interface {
	PollKey() (b byte, ok bool, err error)
}

// Decoder turns raw key bytes into at most one Decoded per tick.
// It keeps no state between ticks.
type Decoder struct {
	src   KeySource
	table *KeyTable
}

// NewDecoder creates a decoder over src using table
func NewDecoder(src KeySource, table *KeyTable) *Decoder {
	return &Decoder{src: src, table: table}
}

// Table returns the active key table
func (d *Decoder) Table() *KeyTable {
	return d.table
}

// Next runs one decoder tick
func (d *Decoder) Next() (Decoded, error) {
	b, ok, err := d.src.PollKey()
	if err != nil {
		return Decoded{}, errors.Wrap(err, "poll key")
	}
	if !ok {
		return Decoded{}, nil
	}

	if b == d.table.Lead {
		return d.sequence()
	}

	if dec, ok := d.table.Plain[b]; ok {
		return dec, nil
	}
	return Decoded{}, nil
}

// sequence resolves the remainder of an extended key after its lead byte.
// Each follow-up byte gets exactly one non-blocking read; a miss yields nothing.
func (d *Decoder) sequence() (Decoded, error) {
	if d.table.Intro != 0 {
		b, ok, err := d.src.PollKey()
		if err != nil {
			return Decoded{}, errors.Wrap(err, "poll sequence intro")
		}
		if !ok || b != d.table.Intro {
			return Decoded{}, nil
		}
	}

	b, ok, err := d.src.PollKey()
	if err != nil {
		return Decoded{}, errors.Wrap(err, "poll sequence final")
	}
	if !ok {
		return Decoded{}, nil
	}

	if cmd, ok := d.table.Finals[b]; ok {
		return Decoded{Action: ActionSend, Command: cmd}, nil
	}
	return Decoded{}, nil
}
