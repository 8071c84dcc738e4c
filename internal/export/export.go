package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jimezsa/leadscout/internal/models"
	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

// FileTimeLayout is the timestamp part of exported file names.
const FileTimeLayout = "20060102_150405"

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

func WriteLeads(w io.Writer, leads []models.Lead, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, leads)
	case FormatCSV:
		return WriteCSV(w, leads)
	case FormatTSV:
		return writeDelimited(w, leads, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, leads)
	default:
		return writeTable(w, leads, opts)
	}
}

// WriteCSV writes the fixed name,title,company,location layout. Sentinel
// values are written as they are.
func WriteCSV(w io.Writer, leads []models.Lead) error {
	return writeDelimited(w, leads, ',')
}

// FileName returns the export file name for a run finished at t.
func FileName(t time.Time) string {
	return "leads_" + t.Format(FileTimeLayout) + ".csv"
}

// WriteCSVFile writes leads to a new CSV file in dir and returns its path.
func WriteCSVFile(dir string, leads []models.Lead, now time.Time) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(file, leads); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

func writeJSON(w io.Writer, leads []models.Lead) error {
	if leads == nil {
		leads = []models.Lead{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leads)
}

func writeDelimited(w io.Writer, leads []models.Lead, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(csvHeader()); err != nil {
		return err
	}
	for _, lead := range leads {
		if err := writer.Write(csvRow(lead)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, leads []models.Lead, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader(), "\t"))
	output := termenv.NewOutput(w)
	for _, lead := range leads {
		fmt.Fprintln(tw, strings.Join(tableRow(lead, output, opts), "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, leads []models.Lead) error {
	if len(leads) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for _, lead := range leads {
		lead = lead.Normalized()
		lines := []string{
			fmt.Sprintf("- **%s** (%s)", safe(lead.Name), safe(lead.Title)),
			fmt.Sprintf("  Company: %s", safe(lead.Company)),
			fmt.Sprintf("  Location: %s", safe(lead.Location)),
		}
		if u := safe(lead.URL); u != "" {
			lines = append(lines, fmt.Sprintf("  Profile: [Open profile](<%s>)", u))
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"name",
		"title",
		"company",
		"location",
	}
}

func csvRow(lead models.Lead) []string {
	lead = lead.Normalized()
	return []string{
		lead.Name,
		lead.Title,
		lead.Company,
		lead.Location,
	}
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func tableHeader() []string {
	return []string{
		"name",
		"title",
		"company",
		"location",
		"profile",
	}
}

func tableRow(lead models.Lead, output *termenv.Output, opts WriteOptions) []string {
	const linkColor = "#87CEEB"

	lead = lead.Normalized()
	u := safe(lead.URL)
	display := "-"
	if u != "" {
		display = u
		if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
			display = shortURLLabel(u)
		}
		if opts.ColorEnabled {
			display = output.String(display).Foreground(output.Color(linkColor)).String()
		}
		if opts.Hyperlinks {
			display = hyperlink(u, display)
		}
	}
	return []string{
		safe(lead.Name),
		safe(lead.Title),
		safe(lead.Company),
		safe(lead.Location),
		display,
	}
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
