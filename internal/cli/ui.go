package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func printInfo(w io.Writer, format string, args ...any) {
	_, _ = infoColor.Fprintf(w, format+"\n", args...)
}

func printItem(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "  %s %s\n", dimColor.Sprint("•"), name)
}
