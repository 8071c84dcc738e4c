package cmd

import (
	"encoding/json"
	"fmt"
)

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	if ctx.JSONOutput {
		return json.NewEncoder(ctx.Out).Encode(map[string]string{"name": "leadscout", "version": ctx.Version})
	}
	_, err := fmt.Fprintln(ctx.Out, "leadscout", ctx.Version)
	return err
}
