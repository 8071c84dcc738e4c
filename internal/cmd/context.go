package cmd

import (
	"io"

	"github.com/jimezsa/leadscout/internal/config"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode

	// Credentials and GeminiKey come from the environment (and .env files).
	Credentials models.Credentials
	GeminiKey   string
}
