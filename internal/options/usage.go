package options

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrintUsage prints the synopsis, one entry per option (bold
// `-x, --name ARG` header followed by its help text word-wrapped at 40
// columns), and the error taxonomy — the same three sections the
// original usage_options printed, reproduced with fatih/color instead
// of raw escape constants.
func PrintUsage(w io.Writer, synopsis string, opts []Option, errs []Error) {
	bold := color.New(color.Bold)
	underline := color.New(color.Underline)

	fmt.Fprintln(w, "Synopsis:")
	fmt.Fprintf(w, "\t%s\n\n", synopsis)
	fmt.Fprintln(w, "Options:")

	for _, opt := range opts {
		if opt.Role == Other {
			continue
		}

		switch {
		case opt.Short != "" && opt.Long != "":
			bold.Fprintf(w, "-%s, --%s", opt.Short, opt.Long)
		case opt.Short != "":
			bold.Fprintf(w, "-%s", opt.Short)
		case opt.Long != "":
			bold.Fprintf(w, "--%s", opt.Long)
		}

		if opt.Role == Joint {
			fmt.Fprint(w, " ")
			underline.Fprint(w, "ARG")
		}
		fmt.Fprintln(w)

		wrap(w, opt.Help, 40)
	}

	fmt.Fprintln(w, "Return results:")
	for _, e := range errs {
		underline.Fprintf(w, "%d", int(e.Code))
		fmt.Fprintf(w, "\t%s\n", e.Text)
	}
}

// wrap prints s word-wrapped to width columns, one tab-indented line
// per visual row, matching the original usage() helper's greedy
// line-breaking.
func wrap(w io.Writer, s string, width int) {
	words := strings.Fields(s)
	if len(words) == 0 {
		fmt.Fprintln(w)
		return
	}

	var line strings.Builder
	for _, word := range words {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			fmt.Fprintf(w, "\t%s\n", line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		fmt.Fprintf(w, "\t%s\n", line.String())
	}
	fmt.Fprintln(w)
}
