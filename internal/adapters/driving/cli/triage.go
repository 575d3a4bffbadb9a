package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/catalog/yamlfile"
	configfile "github.com/halcyon-forensics/imgtriage/internal/adapters/driven/config/file"
	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/introspect/sqlite"
	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/mount"
	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/report"
	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/runner"
	"github.com/halcyon-forensics/imgtriage/internal/adapters/driven/sandbox"
	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/services"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

var triageFlags struct {
	root       string
	image      string
	mountPoint string
	configPath string
	rulesFile  string
	reportDir  string
	workers    int
	rowLimit   int
	minRows    int64
	noSudo     bool
}

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Scan a device image for application databases and rank the evidence",
	Long: `Runs the full triage pipeline: discover candidate databases under the
per-app data root, stage each one into a readable sandbox copy, introspect
its tables, classify sampled content and rank the resulting evidence.

Either --root (an already-mounted data root) or --image (a decrypted
filesystem image, which will be loop-mounted for the duration of the run)
must be given.`,
	RunE: runTriage,
}

func init() {
	f := triageCmd.Flags()
	f.StringVar(&triageFlags.root, "root", "", "mounted per-app data root (e.g. /mnt/image/data/data)")
	f.StringVar(&triageFlags.image, "image", "", "decrypted filesystem image to loop-mount")
	f.StringVar(&triageFlags.mountPoint, "mount-point", "/mnt/imgtriage", "mount point used with --image")
	f.StringVar(&triageFlags.configPath, "config", "", "config file (default ~/.imgtriage/config.toml)")
	f.StringVar(&triageFlags.rulesFile, "rules", "", "YAML catalog rule file overriding the built-in table")
	f.StringVar(&triageFlags.reportDir, "report-dir", ".", "directory for the generated reports")
	f.IntVar(&triageFlags.workers, "workers", 0, "concurrent database analyses (default 1)")
	f.IntVar(&triageFlags.rowLimit, "row-limit", 0, "sample rows per table (default 10)")
	f.Int64Var(&triageFlags.minRows, "min-rows", 0, "aggregate-row inclusion threshold (default 50)")
	f.BoolVar(&triageFlags.noSudo, "no-sudo", false, "run privileged commands without sudo (already elevated)")
	rootCmd.AddCommand(triageCmd)
}

//nolint:gocyclo // wiring function with necessary sequential steps
func runTriage(cmd *cobra.Command, _ []string) error {
	if triageFlags.root == "" && triageFlags.image == "" {
		return fmt.Errorf("%w: either --root or --image is required", domain.ErrInvalidInput)
	}

	cfg, err := configfile.NewConfigStore(triageFlags.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := resolveOptions(cfg)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	run := runner.New(runner.Config{Sudo: !triageFlags.noSudo})

	// Ctrl-C stops new discovery/copy/query operations; in-flight work
	// drains to its next checkpoint and cleanup still runs.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := triageFlags.root
	if triageFlags.image != "" {
		mounter := mount.New(run, opts.commandTimeout)
		if err := mounter.Mount(ctx, triageFlags.image, triageFlags.mountPoint); err != nil {
			return err
		}
		// Unmount must run even on abort, so it gets a fresh context.
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := mounter.Unmount(cleanupCtx, triageFlags.mountPoint); err != nil {
				logger.Warn("unmount: %v", err)
			}
		}()
		if root == "" {
			root = filepath.Join(triageFlags.mountPoint, "data", "data")
		}
	}

	box, err := sandbox.New(run, "", opts.copyTimeout)
	if err != nil {
		return fmt.Errorf("creating sandbox: %w", err)
	}

	orchestrator := services.NewTriageOrchestrator(
		catalog,
		services.NewScanner(run, catalog, opts.commandTimeout),
		services.NewClassifier(opts.scriptLo, opts.scriptHi),
		services.NewScorer(opts.minRows, opts.denylist),
		box,
		sqlite.New(),
		services.TriageOptions{RowLimit: opts.rowLimit, Workers: opts.workers},
	)

	cmd.Printf("Scanning %s...\n", root)
	result, err := orchestrator.Run(ctx, root)
	if err != nil {
		if errors.Is(err, domain.ErrAborted) {
			return fmt.Errorf("triage cancelled: %w", err)
		}
		return fmt.Errorf("triage: %w", err)
	}

	if err := writeReports(ctx, result); err != nil {
		return err
	}

	cmd.Println(renderSummary(result))
	return nil
}

// triageOptions are the resolved settings: flag > config file > default.
type triageOptions struct {
	rowLimit       int
	minRows        int64
	workers        int
	commandTimeout time.Duration
	copyTimeout    time.Duration
	scriptLo       rune
	scriptHi       rune
	denylist       []string
}

func resolveOptions(cfg *configfile.ConfigStore) triageOptions {
	opts := triageOptions{
		rowLimit: firstPositive(triageFlags.rowLimit, cfg.GetInt("triage.row_limit")),
		minRows:  firstPositive64(triageFlags.minRows, int64(cfg.GetInt("triage.min_rows"))),
		workers:  firstPositive(triageFlags.workers, cfg.GetInt("triage.workers")),
		scriptLo: rune(cfg.GetInt("classifier.script_lo")),
		scriptHi: rune(cfg.GetInt("classifier.script_hi")),
		denylist: cfg.GetStringSlice("classifier.denylist"),
	}
	if secs := cfg.GetInt("triage.command_timeout_secs"); secs > 0 {
		opts.commandTimeout = time.Duration(secs) * time.Second
	}
	if secs := cfg.GetInt("triage.copy_timeout_secs"); secs > 0 {
		opts.copyTimeout = time.Duration(secs) * time.Second
	}
	return opts
}

func loadCatalog(cfg *configfile.ConfigStore) (*domain.Catalog, error) {
	rulesFile := triageFlags.rulesFile
	if rulesFile == "" {
		rulesFile = cfg.GetString("catalog.rules_file")
	}
	if rulesFile == "" {
		return domain.DefaultCatalog(), nil
	}
	catalog, err := yamlfile.Load(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading catalog rules: %w", err)
	}
	logger.Info("catalog rules loaded from %s", rulesFile)
	return catalog, nil
}

func writeReports(ctx context.Context, result *domain.TriageResult) error {
	mdPath := filepath.Join(triageFlags.reportDir, "triage_report.md")
	if err := report.NewMarkdown().Write(ctx, result, mdPath); err != nil {
		return err
	}
	htmlPath := filepath.Join(triageFlags.reportDir, "triage_report.html")
	if err := report.NewHTML().Write(ctx, result, htmlPath); err != nil {
		return err
	}
	logger.Info("reports written to %s and %s", mdPath, htmlPath)
	return nil
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstPositive64(vals ...int64) int64 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
