package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimezsa/leadscout/internal/driver"
)

type DriverCmd struct {
	Resolve DriverResolveCmd `cmd:"" help:"Locate (or download) a browser and print its path."`
}

type DriverResolveCmd struct {
	Path string `help:"Explicit browser path to try first (default: browser_path from config)."`
}

func (d *DriverResolveCmd) Run(ctx *Context) error {
	resolver := driver.NewResolver(
		driver.NewRodProvisioner(),
		ctx.Logger.With().Str("component", "driver").Logger(),
		driver.WithExplicitPath(firstNonEmpty(d.Path, ctx.Config.BrowserPath)),
	)

	path, err := resolver.Resolve(context.Background())
	if err != nil {
		var notFound *driver.DriverNotFoundError
		if errors.As(err, &notFound) {
			ctx.UI.Warnf("Tried:")
			for _, step := range notFound.Trail {
				ctx.UI.Warnf("  %s", step)
			}
			return fmt.Errorf("no usable browser found; set browser_path or CHROME_PATH")
		}
		return err
	}

	_, err = fmt.Fprintln(ctx.Out, path)
	return err
}
