package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/leadscout/internal/export"
	"github.com/jimezsa/leadscout/internal/seen"
)

type ExportCmd struct {
	Input string `arg:"" help:"Path to a leads JSON file (as written by --format json or the seen commands)."`
	Dir   string `help:"Output directory (default: export_dir from config)."`
}

func (e *ExportCmd) Run(ctx *Context) error {
	records, err := seen.ReadLeads(e.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", e.Input, err)
	}

	dir := firstNonEmpty(strings.TrimSpace(e.Dir), ctx.Config.ExportDir)
	path, err := export.WriteCSVFile(dir, records, time.Now())
	if err != nil {
		return err
	}

	ctx.Logger.Debug().Str("path", path).Int("records", len(records)).Msg("leads exported")
	_, err = fmt.Fprintln(ctx.Out, path)
	return err
}
