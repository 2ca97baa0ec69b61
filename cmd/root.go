// Package cmd implements the neongraph command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/neongraph/config"
	"github.com/TFMV/neongraph/ingest"
	"github.com/TFMV/neongraph/models"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	debug      bool
	seed       int64

	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "neongraph <command>",
		Short:         "Neon circuit intro and partnership graph visualizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file (.yaml or .toml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging with source locations")
	root.PersistentFlags().Int64Var(&a.seed, "seed", 0, "random seed (overrides config when non-zero)")

	root.AddCommand(
		newIntroCmd(a),
		newRenderCmd(a),
		newServeCmd(a),
		newConvertCmd(a),
		newDepartmentsCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", Bad.Sprint("error:"), err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	if a.seed != 0 {
		cfg.Seed = a.seed
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
	a.out = cmd.OutOrStdout()
	slog.SetDefault(a.logger)
	return nil
}

// dataset loads the configured data, falling back to the embedded set.
func (a *app) dataset(ctx context.Context, paths ...string) (*models.Dataset, error) {
	if len(paths) == 0 {
		paths = a.cfg.Data.Paths
	}
	return ingest.NewLoader(a.logger, paths...).Load(ctx)
}

// frameName numbers output files when more than one frame is written:
// out.png becomes out-000.png, out-001.png and so on.
func frameName(out string, i, total int) string {
	if total <= 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(out, ext), i, ext)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
