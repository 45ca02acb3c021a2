package terminal

import (
	"fmt"
	"io"
	"sync"
)

// Printer writes the client transcript line by line to plain streams
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// NewPrinter creates a printer; errOut receives Errorf lines
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// Infof prints one informational line
func (p *Printer) Infof(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Errorf prints one error line
func (p *Printer) Errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.errOut, format+"\n", args...)
}
