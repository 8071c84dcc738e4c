package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const LinkColor = "#87CEEB"

// stateColors maps job states to ANSI colors.
var stateColors = map[string]string{
	"DONE":   "2",
	"FAILED": "1",
}

type UI struct {
	Out          io.Writer
	Err          io.Writer
	Output       *termenv.Output
	ErrOutput    *termenv.Output
	ColorEnabled bool
}

func New(out io.Writer, err io.Writer, mode ColorMode, disableColor bool) *UI {
	output := termenv.NewOutput(out)
	errOutput := termenv.NewOutput(err)

	return &UI{
		Out:          out,
		Err:          err,
		Output:       output,
		ErrOutput:    errOutput,
		ColorEnabled: shouldEnableColor(output, mode, disableColor),
	}
}

func shouldEnableColor(output *termenv.Output, mode ColorMode, disableColor bool) bool {
	if disableColor {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return output.ColorProfile() != termenv.Ascii
	}
}

func (u *UI) print(w io.Writer, out *termenv.Output, color string, format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if u.ColorEnabled && color != "" {
		msg = out.String(msg).Foreground(out.Color(color)).String()
	}
	fmt.Fprintln(w, msg)
}

func (u *UI) Errorf(format string, args ...any) {
	u.print(u.Err, u.ErrOutput, "1", format, args...)
}

func (u *UI) Warnf(format string, args ...any) {
	u.print(u.Err, u.ErrOutput, "3", format, args...)
}

func (u *UI) Infof(format string, args ...any) {
	u.print(u.Out, u.Output, "4", format, args...)
}

func (u *UI) Successf(format string, args ...any) {
	u.print(u.Out, u.Output, "2", format, args...)
}

// State prints a job state change to stderr, e.g. "[SEARCHING] job 1a2b".
func (u *UI) State(state string, format string, args ...any) {
	label := "[" + state + "]"
	if u.ColorEnabled {
		color, ok := stateColors[state]
		if !ok {
			color = "6"
		}
		label = u.ErrOutput.String(label).Foreground(u.ErrOutput.Color(color)).Bold().String()
	}
	fmt.Fprintln(u.Err, label+" "+strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func ColorizeLink(output *termenv.Output, enabled bool, text string) string {
	if !enabled || output == nil {
		return text
	}
	return output.String(text).Foreground(output.Color(LinkColor)).String()
}

func (u *UI) LinkText(text string) string {
	return ColorizeLink(u.Output, u.ColorEnabled, text)
}

func NormalizeColorMode(value string) ColorMode {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case string(ColorAlways):
		return ColorAlways
	case string(ColorNever):
		return ColorNever
	default:
		return ColorAuto
	}
}
