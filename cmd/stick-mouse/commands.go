package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sweeney/stick-mouse/internal/hid"
	"github.com/sweeney/stick-mouse/internal/input"
	"github.com/sweeney/stick-mouse/internal/logic"
)

// Run reads one sample from the hardware and prints it.
func (p *PrintStateCmd) Run() error {
	reader, err := input.NewRealReader(p.Input.config())
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer reader.Close()

	return printSample(os.Stdout, reader)
}

func printSample(w io.Writer, reader input.Reader) error {
	s, err := reader.Sample()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	button := "RELEASED"
	if s.Pressed {
		button = "PRESSED"
	}
	_, err = fmt.Fprintf(w, "X: %d (%d), Y: %d (%d), button: %s\n",
		s.X, logic.Normalize(s.X), s.Y, logic.Normalize(s.Y), button)
	return err
}

// Run writes the descriptor to Output, or stdout when unset.
func (d *DescriptorCmd) Run() error {
	if d.Output == "" {
		_, err := os.Stdout.Write(hid.ReportDescriptor)
		return err
	}
	if err := os.WriteFile(d.Output, hid.ReportDescriptor, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}
