package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arengifoc/logsort/internal/aggregator"
	"github.com/arengifoc/logsort/internal/classify"
	"github.com/arengifoc/logsort/internal/hub"
	"github.com/arengifoc/logsort/internal/model"
	"github.com/arengifoc/logsort/internal/output"
	"github.com/arengifoc/logsort/internal/pipeline"
	"github.com/arengifoc/logsort/internal/server"
	"github.com/arengifoc/logsort/internal/watcher"
)

var (
	assumeYes bool
	watchMode bool
	servePort string
)

var organizeCmd = &cobra.Command{
	Use:   "organize [source-dir]",
	Short: "Classify log files into per-service directories and audit them",
	Long: `Organize moves every <service>_<YYYY-MM-DD>.log file in the source
directory into <dest>/<service>/, audits the destination tree for the word
"error", and writes one report line per file.

Examples:
  logsort organize /var/log/incoming
  logsort organize /var/log/incoming --dest /var/log/sorted --report reporte.txt
  logsort organize /var/log/incoming --watch --serve 8080`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func init() {
	rootCmd.AddCommand(organizeCmd)

	organizeCmd.Flags().StringP("dest", "d", "", "destination root for classified logs")
	organizeCmd.Flags().StringP("report", "r", "reporte.txt", "report file path")
	organizeCmd.Flags().String("pattern", "", "custom classification regex (service in a capture group)")
	organizeCmd.Flags().Int("group", 1, "capture group holding the service name")
	organizeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to all prompts")
	organizeCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "keep running and re-organize when new logs arrive")
	organizeCmd.Flags().StringVar(&servePort, "serve", "", "serve the dashboard on this port")

	_ = viper.BindPFlag("dest", organizeCmd.Flags().Lookup("dest"))
	_ = viper.BindPFlag("report", organizeCmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("pattern", organizeCmd.Flags().Lookup("pattern"))
	_ = viper.BindPFlag("group", organizeCmd.Flags().Lookup("group"))
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nlogsort shutting down...")
		cancel()
	}()

	cfg, err := buildConfig(args[0])
	if err != nil {
		return err
	}

	renderer := newRenderer()

	// The hub fans events out to the dashboard; the terminal renderer is fed
	// synchronously so output ordering matches processing order.
	var h *hub.Hub
	var srv *server.Server
	if servePort != "" {
		h = hub.New()
		defer h.Close()

		agg := aggregator.New(h.Subscribe(), h.Dropped)
		go agg.Start(ctx)

		srv = server.New(h, agg, cfg.ReportPath, servePort)
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("dashboard server stopped: %v", err)
			}
		}()
	}
	cfg.Publish = func(ev model.Event) {
		if err := renderer.Event(ev); err != nil {
			log.Printf("render error: %v", err)
		}
		if h != nil {
			h.Publish(ev)
		}
	}

	run := func() error {
		res, err := pipeline.Run(ctx, cfg)
		if err != nil {
			return err
		}
		if srv != nil {
			srv.SetLastRun(res)
		}
		return renderer.Summary(res)
	}

	if err := run(); err != nil {
		return err
	}

	if !watchMode {
		return nil
	}

	// Prompts were already answered; re-runs must not block on stdin.
	cfg.Confirm = nil

	w, err := watcher.New(cfg.SourceDir, "*.log")
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	go w.Start(ctx)
	fmt.Fprintf(os.Stderr, "watching %s for new log files\n", cfg.SourceDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Trigger:
			if !ok {
				return nil
			}
			if err := run(); err != nil {
				// A vanished source between runs is fatal; log and keep
				// watching only if files simply raced away.
				log.Printf("run failed: %v", err)
			}
		}
	}
}

// buildConfig merges flags, config file, and environment into the pipeline
// configuration. Precedence is viper's: flag > env > config file.
func buildConfig(sourceDir string) (pipeline.Config, error) {
	cfg := pipeline.Config{
		SourceDir:  sourceDir,
		DestRoot:   viper.GetString("dest"),
		ReportPath: viper.GetString("report"),
	}
	if cfg.DestRoot == "" {
		return cfg, errors.New("no destination root configured (--dest flag or 'dest' in .logsort.yaml)")
	}

	if expr := viper.GetString("pattern"); expr != "" {
		p, err := classify.New(expr, viper.GetInt("group"))
		if err != nil {
			return cfg, err
		}
		cfg.Pattern = p
	}

	if !assumeYes {
		cfg.Confirm = stdinConfirmer{r: bufio.NewReader(os.Stdin)}
	}
	return cfg, nil
}

func newRenderer() output.Renderer {
	if strings.EqualFold(outputFmt, "json") {
		return output.NewJSONRenderer()
	}
	return output.NewTextRenderer()
}

// stdinConfirmer asks yes/no questions on the terminal. It lives in the CLI
// layer; the pipeline only sees the Confirmer interface.
type stdinConfirmer struct {
	r *bufio.Reader
}

func (c stdinConfirmer) Confirm(prompt string) bool {
	for {
		fmt.Fprintf(os.Stderr, "%s (yes/no): ", prompt)
		line, err := c.r.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		}
	}
}
