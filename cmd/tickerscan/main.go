// tickerscan: multi-source sentiment research for a stock ticker.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/api"
	"github.com/seenimoa/tickerscan/internal/config"
	"github.com/seenimoa/tickerscan/internal/logging"
	"github.com/seenimoa/tickerscan/internal/report"
	"github.com/seenimoa/tickerscan/internal/research"
	"github.com/seenimoa/tickerscan/pkg/models"
	"github.com/seenimoa/tickerscan/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickerscan",
	Short: "Multi-source sentiment research for a stock ticker",
	Long: `tickerscan plans research prompts with an orchestrator model, fans them
out to Grok, OpenAI, Gemini and a news feed in parallel, and merges
whatever comes back into one composite sentiment report with a cost
breakdown.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tickerscan %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Scan Command ---

var scanCmd = &cobra.Command{
	Use:   "scan [symbol]",
	Short: "Run a sentiment scan on a ticker",
	Long:  "Plan prompts, query every configured provider in parallel and print the composite report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		sector, _ := cmd.Flags().GetString("sector")
		price, _ := cmd.Flags().GetFloat64("price")
		formatName, _ := cmd.Flags().GetString("format")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		quiet, _ := cmd.Flags().GetBool("quiet")

		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		engine, err := research.NewEngineFromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("engine setup failed: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		req := models.NewResearchRequest(args[0], name, sector, price, cfg.Credentials())
		var progress research.Listener
		if !quiet {
			label := req.Symbol
			if req.CurrentPrice > 0 {
				label += " @ " + utils.FormatUSD(req.CurrentPrice)
			}
			fmt.Fprintf(os.Stderr, "🔍 Scanning %s across %d providers\n", label, len(engine.Providers()))
			progress = printProgress
		}

		rep, err := engine.Scan(ctx, req, progress)
		if err != nil {
			return err
		}
		out, err := report.Render(rep, format)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	scanCmd.Flags().String("name", "", "company name (defaults to the symbol)")
	scanCmd.Flags().String("sector", "", "sector hint for the orchestrator")
	scanCmd.Flags().Float64("price", 0, "current share price, if known")
	scanCmd.Flags().StringP("format", "f", "text", "output format: text, markdown, html, json")
	scanCmd.Flags().Duration("timeout", 0, "overall scan deadline (0 = per-stage timeouts only)")
	scanCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
}

// printProgress writes pipeline events to stderr so stdout carries only
// the report.
func printProgress(ev research.Event) {
	switch ev.Type {
	case research.EventPlanned:
		fmt.Fprintf(os.Stderr, "   plan: %s via %s\n", ev.Instructions.CompanyType, ev.Instructions.Source)
	case research.EventSettled:
		r := ev.Result
		line := fmt.Sprintf("   %-8s %-15s %s", r.Provider, r.Status, report.FormatDuration(r.Duration))
		if r.Error != nil && r.Status != models.StatusNotConfigured {
			line += "  " + r.Error.Error()
		}
		fmt.Fprintln(os.Stderr, line)
	}
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		engine, err := research.NewEngineFromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("engine setup failed: %w", err)
		}

		srv := api.NewServer(cfg, engine, logger)
		srv.SetVersion(version)
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("🌐 Starting tickerscan API server on %s:%d\n", cfg.API.Host, cfg.API.Port)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
	serveCmd.Flags().Bool("no-ui", false, "disable the embedded dashboard")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := research.NewEngineFromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("engine setup failed: %w", err)
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  tickerscan: System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time:          %s\n", time.Now().Format(time.RFC1123))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Orchestrator:  %s (tier %s, %ds)\n", engine.OrchestratorModel(), cfg.Orchestrator.Tier, cfg.Orchestrator.TimeoutSec)
		for _, id := range engine.Providers() {
			fmt.Printf("    %-14s timeout %s\n", string(id)+":", cfg.Providers.TimeoutFor(id))
		}
		fmt.Printf("    API Server:    %s:%d (cache %ds)\n", cfg.API.Host, cfg.API.Port, cfg.API.CacheTTL)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
