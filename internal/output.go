package internal

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// Clipboard writes text to the system clipboard
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the platform clipboard via atotto/clipboard
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Destination describes where a rendered transcript goes
type Destination struct {
	File      string
	Clipboard bool
	Verbose   bool
}

// Output delivers rendered transcripts to the console, a file and/or the clipboard
type Output struct {
	ui        UIManager
	clipboard Clipboard
}

// NewOutput creates an output writer
func NewOutput(ui UIManager, cb Clipboard) *Output {
	if cb == nil {
		cb = SystemClipboard{}
	}
	return &Output{ui: ui, clipboard: cb}
}

// Deliver writes content to every requested sink. The clipboard goes first, then
// the file; stdout is used only when neither is requested.
func (o *Output) Deliver(content string, dest Destination) error {
	if dest.Clipboard {
		if err := o.CopyToClipboard(content); err != nil {
			return err
		}
	}

	if dest.File != "" {
		if err := o.SaveToFile(content, dest.File); err != nil {
			return err
		}
		if dest.Verbose {
			o.echo(content)
		}
	} else if !dest.Clipboard {
		fmt.Fprintln(o.ui.Output(), content)
	}

	if dest.Verbose && dest.Clipboard && dest.File == "" {
		o.echo(content)
	}
	return nil
}

// CopyToClipboard copies content and reports it
func (o *Output) CopyToClipboard(content string) error {
	if err := o.clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("%w: copying transcript to clipboard: %w", ErrIOFailure, err)
	}
	o.ui.Println("Transcript copied to clipboard")
	return nil
}

// SaveToFile writes content to path and reports it
func (o *Output) SaveToFile(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("%w: saving transcript: %w", ErrIOFailure, err)
	}
	o.ui.Printf("Transcript saved to %s\n", path)
	return nil
}

func (o *Output) echo(content string) {
	sep := separator()
	w := o.ui.Output()
	fmt.Fprintln(w, "\nTranscript content:")
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, content)
	fmt.Fprintln(w, sep)
}
