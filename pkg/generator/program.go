package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/knitout/pkg/knitgraph"
	"github.com/aretw0/knitout/pkg/machine"
)

// Program is a compiled knitout program.
type Program struct {
	state *machine.State
	// Courses is the course decomposition the program was compiled from.
	Courses *knitgraph.Courses
	// Carriers maps yarn names to the carrier that fed them.
	Carriers map[string]machine.Carrier
	// Formed records the needle every loop was formed on.
	Formed map[knitgraph.LoopID]machine.Needle
	passes []PassEvent
}

// Stats counts what a program does.
type Stats struct {
	Instructions int            `json:"instructions"`
	Passes       int            `json:"passes"`
	Xfers        int            `json:"xfers"`
	Racks        int            `json:"racks"`
	ByOpcode     map[string]int `json:"by_opcode"`
}

// Lines returns the knitout lines, header first.
func (p *Program) Lines() []string { return p.state.Instructions() }

// String renders the program as knitout text.
func (p *Program) String() string {
	var b strings.Builder
	_, _ = p.WriteTo(&b)
	return b.String()
}

// WriteTo writes the knitout text.
func (p *Program) WriteTo(w io.Writer) (int64, error) { return p.state.WriteTo(w) }

// WriteFile writes the knitout text to path, replacing it atomically.
func (p *Program) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".knitout-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := p.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write program: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Passes returns the carriage passes in execution order.
func (p *Program) Passes() []PassEvent { return slices.Clone(p.passes) }

// State is the machine as the program leaves it.
func (p *Program) State() *machine.State { return p.state }

// Stats counts instructions by opcode, skipping the header.
func (p *Program) Stats() Stats {
	s := Stats{Passes: len(p.passes), ByOpcode: make(map[string]int)}
	for _, line := range p.state.Instructions() {
		if strings.HasPrefix(line, ";") {
			continue
		}
		op, _, _ := strings.Cut(line, " ")
		s.ByOpcode[op]++
		s.Instructions++
	}
	s.Xfers = s.ByOpcode["xfer"]
	s.Racks = s.ByOpcode["rack"]
	return s
}
