// Command textsummarizer summarizes text from the command line or serves the
// summarizer over MCP stdio or HTTP.
//
//	textsummarizer serve [-config path] [-transport stdio|http] [-addr :8000]
//	textsummarizer summarize [-n 3] [-file path | -topic t] [-order score|source] [-format text|json|yaml] [text...]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/localrivet/textsummarizer"
	"github.com/localrivet/textsummarizer/internal/config"
	"github.com/localrivet/textsummarizer/internal/errortypes"
	"github.com/localrivet/textsummarizer/internal/logger"
	"github.com/localrivet/textsummarizer/internal/service"
	"gopkg.in/yaml.v3"
)

const usage = `Usage: textsummarizer <command> [flags]

Commands:
  serve      serve the summarizer over MCP stdio or HTTP
  summarize  summarize text, a file or a generated topic

Run "textsummarizer <command> -h" for the flags of a command.
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes a command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "serve":
		return serve(args[1:], stderr)
	case "summarize":
		return summarize(ctx, args[1:], stdin, stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// loadConfig loads the configuration and installs the process logger. Logs
// always go to stderr so stdout stays free for MCP frames and summaries.
func loadConfig(path, level string, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfigWithPath(path)
	if err != nil {
		return nil, nil, err
	}
	if level != "" {
		cfg.Logging.Level = level
	}
	log := logger.Init(&logger.Config{
		Level:       cfg.Logging.Level,
		Format:      logger.ParseFormat(cfg.Logging.Format),
		Output:      stderr,
		DefaultTags: map[string]any{"service": "textsummarizer"},
	})
	return cfg, log, nil
}

func serve(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigFilename, "path to the JSON config file")
	transport := fs.String("transport", "", "stdio or http (default from config)")
	addr := fs.String("addr", "", "HTTP listen address (default from config)")
	level := fs.String("log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, log, err := loadConfig(*configPath, *level, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if *addr != "" {
		cfg.Server.HTTPAddr = *addr
	}

	srv, err := textsummarizer.NewServer(textsummarizer.ServerOptions{
		Config:    cfg,
		Logger:    log,
		Transport: *transport,
	})
	if err != nil {
		errortypes.LogError(log, err)
		return 1
	}

	effective := *transport
	if effective == "" {
		effective = cfg.Server.Transport
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("Received shutdown signal, terminating gracefully...")
		if err := srv.Stop(); err != nil {
			errortypes.LogError(log, err)
		}
		// The stdio loop only returns when stdin closes.
		if !strings.EqualFold(effective, textsummarizer.TransportHTTP) {
			os.Exit(0)
		}
	}()

	if err := srv.Start(); err != nil {
		errortypes.LogError(log, err)
		return 1
	}
	return 0
}

// summaryOutput is the -format json|yaml rendering of a summary.
type summaryOutput struct {
	ID               string           `json:"id,omitempty" yaml:"id,omitempty"`
	Summary          string           `json:"summary" yaml:"summary"`
	Order            string           `json:"order" yaml:"order"`
	Iterations       int              `json:"iterations" yaml:"iterations"`
	Converged        bool             `json:"converged" yaml:"converged"`
	Sentences        []sentenceOutput `json:"sentences" yaml:"sentences"`
	SignLanguageData map[string]any   `json:"sign_language_data,omitempty" yaml:"sign_language_data,omitempty"`
	Warnings         []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type sentenceOutput struct {
	Index int     `json:"index" yaml:"index"`
	Rank  int     `json:"rank" yaml:"rank"`
	Score float64 `json:"score" yaml:"score"`
	Text  string  `json:"text" yaml:"text"`
}

func newSummaryOutput(resp *service.Response) summaryOutput {
	out := summaryOutput{
		ID:               resp.ID,
		Summary:          resp.Summary,
		Order:            resp.Order,
		Iterations:       resp.Iterations,
		Converged:        resp.Converged,
		SignLanguageData: resp.SignLanguageData,
		Warnings:         resp.Warnings,
		Sentences:        make([]sentenceOutput, 0, len(resp.Sentences)),
	}
	for _, s := range resp.Sentences {
		out.Sentences = append(out.Sentences, sentenceOutput{Index: s.Index, Rank: s.Rank, Score: s.Score, Text: s.Text})
	}
	return out
}

func summarize(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigFilename, "path to the JSON config file")
	n := fs.Int("n", 0, "number of sentences (default from config)")
	file := fs.String("file", "", "summarize a .txt, .md, .html or .docx file")
	topic := fs.String("topic", "", "generate text about a topic and summarize it")
	order := fs.String("order", "", "score or source (default from config)")
	format := fs.String("format", "text", "output format: text, json or yaml")
	save := fs.Bool("save", false, "store the summary in the history database")
	level := fs.String("log-level", "warn", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *n < 0 {
		fmt.Fprintln(stderr, "error: -n must not be negative")
		return 2
	}
	if *file != "" && *topic != "" {
		fmt.Fprintln(stderr, "error: -file and -topic are mutually exclusive")
		return 2
	}
	switch *format {
	case "text", "json", "yaml":
	default:
		fmt.Fprintf(stderr, "error: unknown format %q\n", *format)
		return 2
	}

	cfg, log, err := loadConfig(*configPath, *level, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cfg.Store.Enabled = *save

	components, err := textsummarizer.CreateComponents(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	svc, err := service.New(components)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var resp *service.Response
	switch {
	case *file != "":
		resp, err = svc.SummarizePath(ctx, *file, *n, *order)
	case *topic != "":
		resp, err = svc.Process(ctx, service.Request{Topic: *topic, NumSentences: *n, Order: *order})
	default:
		text := strings.Join(fs.Args(), " ")
		if text == "" {
			data, readErr := io.ReadAll(stdin)
			if readErr != nil {
				fmt.Fprintf(stderr, "error: reading stdin: %v\n", readErr)
				return 1
			}
			text = string(data)
		}
		resp, err = svc.Process(ctx, service.Request{Text: text, NumSentences: *n, Order: *order})
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errortypes.IsInvalidInputError(err) || errortypes.IsUnsupportedError(err) {
			return 2
		}
		return 1
	}

	for _, warning := range resp.Warnings {
		fmt.Fprintln(stderr, "warning:", warning)
	}
	if err := writeSummary(stdout, *format, resp); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func writeSummary(w io.Writer, format string, resp *service.Response) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSummaryOutput(resp))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newSummaryOutput(resp)); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, s := range resp.Sentences {
			if _, err := fmt.Fprintln(w, s.Text); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New("unknown format " + format)
	}
}
