package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jimezsa/leadscout/internal/config"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config and proxies files."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print the effective configuration."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

// effectiveConfig is what `config show` prints. Secrets are reported as
// present or absent only.
type effectiveConfig struct {
	config.Config
	CredentialsSet bool `json:"credentials_set"`
	GeminiKeySet   bool `json:"gemini_key_set"`
}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

func (c *ShowConfigCmd) Run(ctx *Context) error {
	enc := json.NewEncoder(ctx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(effectiveConfig{
		Config:         ctx.Config,
		CredentialsSet: ctx.Credentials.Complete(),
		GeminiKeySet:   ctx.GeminiKey != "",
	})
}
