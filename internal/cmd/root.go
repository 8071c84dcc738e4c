package cmd

import "github.com/alecthomas/kong"

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version  VersionCmd  `cmd:"" help:"Print version."`
	Config   ConfigCmd   `cmd:"" help:"Manage configuration."`
	Scrape   ScrapeCmd   `cmd:"" help:"Search LinkedIn people and extract leads."`
	Keywords KeywordsCmd `cmd:"" help:"Turn a free-text request into search keywords."`
	Driver   DriverCmd   `cmd:"" help:"Browser driver utilities."`
	Export   ExportCmd   `cmd:"" help:"Convert a leads JSON file to a timestamped CSV."`
	Seen     SeenCmd     `cmd:"" help:"Seen leads utilities."`
	Proxies  ProxiesCmd  `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
