package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/config"
	"github.com/rgehrsitz/rpcore/internal/taxdata"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings is populated by the root command before any subcommand runs.
var settings *config.Settings

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rpcore",
		Short: "Retirement projection and Roth conversion calculator",
		Long: "Projects a household's retirement year by year (income, federal and state tax, " +
			"Medicare with IRMAA, RMDs and balances) and compares a baseline against a Roth conversion plan.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("config")
			v := config.NewViper(file)
			if err := config.BindFlags(v, cmd.Flags(), map[string]string{
				"tables_dir":         "tables-dir",
				"log.level":          "log-level",
				"log.format":         "log-format",
				"output.format":      "format",
				"compare.concurrent": "concurrent",
			}); err != nil {
				return err
			}
			return initSettings(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	root.PersistentFlags().String("config", "", "settings file (default: ./rpcore.yaml when present)")
	root.PersistentFlags().String("tables-dir", "", "directory of tax table CSVs (default: embedded tables)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (console, json)")

	root.AddCommand(calculateCmd())
	root.AddCommand(compareRothCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(tablesCmd())
	root.AddCommand(transformsCmd())
	root.AddCommand(versionCmd())
	return root
}

func initSettings(v *viper.Viper) error {
	s, err := config.LoadSettings(v)
	if err != nil {
		return eris.Wrap(err, "load settings")
	}
	logger, err := config.NewZapLogger(s.Log)
	if err != nil {
		return eris.Wrap(err, "init logger")
	}
	zap.ReplaceGlobals(logger)
	settings = s
	return nil
}

// newEngine builds an engine over the configured tables, logging through zap.
func newEngine() *calculation.CalculationEngine {
	var engine *calculation.CalculationEngine
	if settings != nil && settings.TablesDir != "" {
		zap.L().Debug("using tax tables from directory", zap.String("dir", settings.TablesDir))
		engine = calculation.NewCalculationEngineWithTables(taxdata.NewLoader(os.DirFS(settings.TablesDir)))
	} else {
		engine = calculation.NewCalculationEngine()
	}
	engine.SetLogger(calculation.NewZapLogger(zap.S()))
	return engine
}

func tableLoader() *taxdata.Loader {
	if settings != nil && settings.TablesDir != "" {
		return taxdata.NewLoader(os.DirFS(settings.TablesDir))
	}
	return taxdata.Default()
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	zap.L().Info("report written", zap.String("path", path))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rpcore %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "go %s\n", bi.GoVersion)
			}
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
