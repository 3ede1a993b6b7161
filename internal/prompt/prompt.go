package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Stdin collects operator answers from a terminal. It renders the profile
// menu as a numbered table and returns answers with surrounding whitespace
// stripped, everything else is left to the resolver.
type Stdin struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a provider reading answers from in and writing prompts to
// out. A single buffered reader is kept so consecutive questions can share
// piped input.
func New(in io.Reader, out io.Writer) *Stdin {
	return &Stdin{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ProfileChoice prints the numbered profile menu and reads one line.
func (s *Stdin) ProfileChoice(names []string) (string, error) {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Profile"})
	for i, name := range names {
		t.AppendRow(table.Row{i + 1, name})
	}
	t.Render()

	return s.ask("Please choose which profile to flash: ")
}

// BiosChoice asks for the firmware flavor.
func (s *Stdin) BiosChoice() (string, error) {
	return s.ask("Which bios type image do you want write to USB? ('bios' or 'efi'): ")
}

func (s *Stdin) ask(question string) (string, error) {
	fmt.Fprint(s.out, question)

	// A final answer without a trailing newline still counts. Any other
	// read failure must not be mistaken for an answer.
	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}
