package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jimezsa/leadscout/internal/cmd"
	"github.com/jimezsa/leadscout/internal/config"
	"github.com/jimezsa/leadscout/internal/ui"
	"github.com/rs/zerolog"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	// .env values must be visible before kong reads env-backed flags.
	envFiles, envErr := config.LoadDotEnv()

	cli := cmd.NewCLI()
	applyEnvDefaults(cli)
	versionString := buildVersion()

	parser, err := kong.New(cli,
		kong.Name("leadscout"),
		kong.Description("LinkedIn lead discovery CLI."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fallbackUI := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(os.Getenv("LEADSCOUT_COLOR")), false)
		fallbackUI.Errorf("%v", err)
		os.Exit(1)
	}

	colorMode := ui.NormalizeColorMode(cli.Color)
	disableColor := cli.JSON || cli.Plain
	userInterface := ui.New(os.Stdout, os.Stderr, colorMode, disableColor)

	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !userInterface.ColorEnabled}).
		With().Timestamp().Logger()
	if cli.JSON {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if envErr != nil {
		logger.Warn().Err(envErr).Msg("could not load .env file")
	}
	for _, path := range envFiles {
		logger.Debug().Str("path", path).Msg("loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}

	runCtx := &cmd.Context{
		Out:         os.Stdout,
		Err:         os.Stderr,
		UI:          userInterface,
		Config:      cfg,
		ConfigDir:   configDir,
		Logger:      logger,
		Verbose:     cli.Verbose,
		JSONOutput:  cli.JSON,
		PlainText:   cli.Plain,
		Version:     versionString,
		ColorMode:   colorMode,
		Credentials: config.Credentials(),
		GeminiKey:   config.GeminiAPIKey(),
	}

	if err := kctx.Run(runCtx); err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}
}

func buildVersion() string {
	switch {
	case commit == "" && date == "":
		return version
	case commit == "":
		return fmt.Sprintf("%s (%s)", version, date)
	case date == "":
		return fmt.Sprintf("%s (%s)", version, commit)
	default:
		return fmt.Sprintf("%s (%s, %s)", version, commit, date)
	}
}

func applyEnvDefaults(cli *cmd.CLI) {
	if envBool("LEADSCOUT_JSON") {
		cli.JSON = true
	}
	if envBool("LEADSCOUT_VERBOSE") {
		cli.Verbose = true
	}
	if value := os.Getenv("LEADSCOUT_COLOR"); value != "" {
		cli.Color = value
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
