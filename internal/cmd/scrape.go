package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jimezsa/leadscout/internal/config"
	"github.com/jimezsa/leadscout/internal/export"
	"github.com/jimezsa/leadscout/internal/keywords"
	"github.com/jimezsa/leadscout/internal/leads"
	"github.com/jimezsa/leadscout/internal/models"
	"github.com/jimezsa/leadscout/internal/network"
	"github.com/jimezsa/leadscout/internal/orchestrator"
	"github.com/jimezsa/leadscout/internal/seen"
	"github.com/muesli/termenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

type ScrapeCmd struct {
	Request      string `arg:"" optional:"" help:"Free-text description of the people to find. Turned into keywords unless --keywords is set."`
	Keywords     string `help:"Comma-separated search keywords; skips keyword extraction."`
	KeywordsFile string `help:"Path to a JSON5 file with keywords (string array or object with a \"keywords\" array)."`
	Limit        int    `help:"Maximum number of profiles to extract (default from config)."`
	Show         bool   `help:"Run the browser with a visible window."`
	Email        string `help:"LinkedIn login email (default: LINKEDIN_EMAIL)."`
	Password     string `help:"LinkedIn password (default: LINKEDIN_PASSWORD)."`
	Format       string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
	Links        string `help:"Table link display: short or full." enum:"short,full" default:"short"`
	Output       string `name:"output" short:"o" help:"Write output to a file."`
	Save         bool   `help:"Also write leads_<timestamp>.csv to the export directory."`
	ExportDir    string `help:"Directory for --save (default from config)."`
	Proxies      string `help:"Comma-separated proxy URLs." env:"LEADSCOUT_PROXIES"`
	Seen         string `help:"Path to seen leads JSON file."`
	NewOnly      bool   `help:"Output only leads missing from --seen."`
	SeenUpdate   bool   `help:"Merge newly found leads into --seen after the scrape."`
}

func (s *ScrapeCmd) Run(ctx *Context) error {
	seenPath := strings.TrimSpace(s.Seen)
	if s.NewOnly && seenPath == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if s.SeenUpdate && seenPath == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}
	if seenPath != "" && pathsEqual(s.Output, seenPath) {
		return fmt.Errorf("--output path must differ from --seen")
	}

	cfg := ctx.Config
	limit := defaultInt(s.Limit, cfg.DefaultLimit)
	if limit <= 0 {
		return fmt.Errorf("--limit must be greater than zero")
	}
	if dir := strings.TrimSpace(s.ExportDir); dir != "" {
		cfg.ExportDir = dir
	}

	terms, err := s.resolveKeywords(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Err, "keywords: %s\n", strings.Join(terms, ", "))

	rotator, err := buildRotator(s.Proxies)
	if err != nil {
		return err
	}

	progress := startProgress(ctx)
	svc := leads.New(leads.Options{
		Config:      cfg,
		Credentials: ctx.Credentials,
		Rotator:     rotator,
		Logger:      ctx.Logger,
		Observer:    progress.observe,
	})
	defer svc.Close()

	creds := models.Credentials{Identity: strings.TrimSpace(s.Email), Secret: s.Password}
	found, scrapeErr := svc.ScrapeAs(context.Background(), terms, limit, cfg.Headless && !s.Show, creds)
	progress.stop()
	if scrapeErr != nil {
		if len(found) == 0 {
			return scrapeErr
		}
		ctx.UI.Warnf("scrape ended early: %v", scrapeErr)
	}

	var unseen []models.Lead
	if seenPath != "" {
		history, err := seen.ReadLeadsAllowMissing(seenPath)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseen, _ = seen.Diff(found, history)
	}

	output := found
	if s.NewOnly {
		output = unseen
	}

	format, err := resolveFormat(ctx, s.Format, s.Output)
	if err != nil {
		return err
	}

	writer := ctx.Out
	if s.Output != "" {
		file, err := os.Create(s.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(s.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	if err := export.WriteLeads(writer, output, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && isTTY(writer),
		LinkStyle:    linkStyle,
	}); err != nil {
		return err
	}

	if s.Save {
		path, err := svc.Export(output)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Err, "saved: %s (%d leads)\n", path, len(output))
	}

	if s.SeenUpdate {
		if err := updateSeenHistory(seenPath, unseen); err != nil {
			return err
		}
	}

	printScrapeSummary(ctx, output)
	return nil
}

// resolveKeywords prefers explicit keywords (flag, then file) over the
// free-text request.
func (s *ScrapeCmd) resolveKeywords(ctx *Context) ([]string, error) {
	explicit := splitKeywords(s.Keywords)
	if strings.TrimSpace(s.KeywordsFile) != "" {
		fromFile, err := loadKeywordsFile(s.KeywordsFile)
		if err != nil {
			return nil, err
		}
		explicit = append(explicit, fromFile...)
	}
	if len(explicit) > 0 {
		return normalizeKeywords(explicit)
	}

	request := strings.TrimSpace(s.Request)
	if request == "" {
		return nil, fmt.Errorf("a request, --keywords or --keywords-file is required")
	}
	extractor, err := newKeywordExtractor(ctx)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(context.Background(), request), nil
}

// newKeywordExtractor uses Gemini when a key is configured and the local
// stopword fallback otherwise.
func newKeywordExtractor(ctx *Context) (*keywords.Extractor, error) {
	logger := ctx.Logger.With().Str("component", "keywords").Logger()
	if ctx.GeminiKey == "" {
		logger.Debug().Msg("GEMINI_API_KEY not set; using local keyword extraction")
		return keywords.NewExtractor(nil, logger), nil
	}
	client, err := network.NewClient(nil)
	if err != nil {
		return nil, err
	}
	return keywords.NewExtractor(keywords.NewGemini(client, ctx.GeminiKey, ctx.Config.GeminiModel), logger), nil
}

func buildRotator(flagValue string) (*network.Rotator, error) {
	proxies, err := config.LoadProxies(flagValue)
	if err != nil {
		return nil, err
	}
	if len(proxies) == 0 {
		return nil, nil
	}
	return network.NewRotator(proxies, 10*time.Minute)
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if keyword := strings.TrimSpace(part); keyword != "" {
			out = append(out, keyword)
		}
	}
	return out
}

// normalizeKeywords drops blanks and case-insensitive duplicates, keeping
// first-seen order.
func normalizeKeywords(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	seenKeywords := make(map[string]struct{}, len(values))
	for _, raw := range values {
		keyword := strings.TrimSpace(raw)
		if keyword == "" {
			continue
		}
		folded := strings.ToLower(keyword)
		if _, dup := seenKeywords[folded]; dup {
			continue
		}
		seenKeywords[folded] = struct{}{}
		out = append(out, keyword)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("at least one non-empty keyword is required")
	}
	if len(out) > keywords.MaxKeywords {
		return nil, fmt.Errorf("too many keywords: max %d", keywords.MaxKeywords)
	}
	return out, nil
}

func loadKeywordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --keywords-file %q: %w", path, err)
	}

	var decoded any
	if err := json5.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --keywords-file %q: %w", path, err)
	}

	var values []any
	switch value := decoded.(type) {
	case []any:
		values = value
	case map[string]any:
		list, ok := value["keywords"].([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --keywords-file %q: field \"keywords\" must be an array of strings", path)
		}
		values = list
	default:
		return nil, fmt.Errorf("invalid --keywords-file %q: expected string array or object with \"keywords\" array", path)
	}

	out := make([]string, 0, len(values))
	for idx, raw := range values {
		keyword, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --keywords-file %q: entry %d must be a string", path, idx)
		}
		out = append(out, keyword)
	}
	return out, nil
}

func updateSeenHistory(seenPath string, input []models.Lead) error {
	history, err := seen.ReadLeadsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	merged, _ := seen.Merge(history, input)
	if err := seen.WriteLeads(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}
	return nil
}

func printScrapeSummary(ctx *Context, records []models.Lead) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintln(ctx.Err, formatScrapeSummary(records))
}

func formatScrapeSummary(records []models.Lead) string {
	var withTitle, withCompany, withLocation int
	for _, lead := range records {
		if !models.IsSentinel(lead.Title) {
			withTitle++
		}
		if !models.IsSentinel(lead.Company) {
			withCompany++
		}
		if !models.IsSentinel(lead.Location) {
			withLocation++
		}
	}
	return fmt.Sprintf("summary: leads=%d with_title=%d with_company=%d with_location=%d",
		len(records), withTitle, withCompany, withLocation)
}

func resolveFormat(ctx *Context, format string, outputPath string) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if format != "" {
		return parseFormat(format)
	}
	if outputPath == "" && isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

// progress shows the job state. On a terminal it is a spinner labelled
// with the current state; elsewhere each transition is printed as a line.
type progress struct {
	ctx     *Context
	spinner bool

	mu    sync.Mutex
	state string

	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func startProgress(ctx *Context) *progress {
	p := &progress{ctx: ctx, state: string(models.StateInit)}
	if ctx == nil || ctx.Err == nil || ctx.UI == nil || !isTTY(ctx.Err) {
		return p
	}

	p.spinner = true
	p.done = make(chan struct{})
	p.stopped = make(chan struct{})
	go p.spin()
	return p
}

func (p *progress) observe(tr orchestrator.Transition) {
	p.mu.Lock()
	p.state = string(tr.To)
	p.mu.Unlock()

	if p.spinner || p.ctx == nil || p.ctx.UI == nil {
		return
	}
	if tr.Err != nil {
		p.ctx.UI.State(string(tr.To), "job %s: %v", shortID(tr.JobID), tr.Err)
		return
	}
	p.ctx.UI.State(string(tr.To), "job %s", shortID(tr.JobID))
}

func (p *progress) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *progress) spin() {
	defer close(p.stopped)
	start := time.Now()
	frames := []string{"|", "/", "-", "\\"}
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for index := 0; ; index++ {
		select {
		case <-p.done:
			fmt.Fprint(p.ctx.Err, "\r\033[2K")
			return
		case <-ticker.C:
			seconds := int(time.Since(start).Seconds())
			fmt.Fprintf(p.ctx.Err, "\r\033[2K%s... %ds %s", p.current(), seconds, frames[index%len(frames)])
		}
	}
}

func (p *progress) stop() {
	if !p.spinner {
		return
	}
	p.once.Do(func() {
		close(p.done)
		<-p.stopped
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
