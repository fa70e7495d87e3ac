package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress runs fn while showing a spinner with message on out. The spinner
// only animates when out is a terminal and quiet is false; fn runs either
// way and its error is returned unchanged.
func Progress(out io.Writer, quiet bool, message string, fn func() error) error {
	if quiet {
		return fn()
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " " + message
	s.Start()

	err := fn()
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("✗ "+message) + "\n"
	} else {
		s.FinalMSG = text.FgGreen.Sprint("✓ "+message) + "\n"
	}
	s.Stop()
	return err
}
