package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/rpcore/internal/compare"
	"github.com/rgehrsitz/rpcore/internal/config"
	"github.com/rgehrsitz/rpcore/internal/domain"
)

func compareRothCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare-roth [input-file]",
		Short: "Compare a baseline projection against a Roth conversion plan",
		Long: "Runs the scenario twice, once without conversions and once with the plan in the " +
			"input's conversion section, and reports lifetime metrics side by side.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("output")
			withSeries, _ := cmd.Flags().GetBool("series")

			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			params, err := cfg.ConversionParams()
			if err != nil {
				return err
			}

			comparator := compare.NewComparator(newEngine())
			comparator.Concurrent = settings.Compare.Concurrent
			zap.L().Info("running roth comparison",
				zap.Int("start_year", params.ConversionStartYear),
				zap.Int("years", params.YearsToConvert),
				zap.Bool("concurrent", comparator.Concurrent))

			result, err := comparator.Process(cmd.Context(), &cfg.Input, params)
			if err != nil {
				return eris.Wrap(err, "comparison failed")
			}
			return writeComparison(cmd, result, settings.Output.Format, outPath, withSeries)
		},
	}
	cmd.Flags().StringP("format", "f", "console", "output format (console, csv, json, xlsx)")
	cmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().Bool("series", false, "include the per-source balance series (csv and json)")
	cmd.Flags().Bool("concurrent", true, "run the two projections concurrently")
	return cmd
}

func writeComparison(cmd *cobra.Command, result *domain.ComparisonResult, format, outPath string, withSeries bool) error {
	var formatter compare.Formatter
	switch strings.ToLower(format) {
	case "", "console", "table":
		formatter = &compare.TableFormatter{}
	case "csv":
		formatter = &compare.CSVFormatter{}
	case "json":
		formatter = &compare.JSONFormatter{Pretty: true, Series: withSeries}
	case "xlsx":
		if outPath == "" {
			return eris.New("xlsx output needs --output")
		}
		xf := &compare.XLSXFormatter{}
		if err := xf.Save(result, outPath); err != nil {
			return err
		}
		zap.L().Info("report written", zap.String("path", outPath))
		return nil
	default:
		return eris.Errorf("unsupported format: %s", format)
	}

	text, err := formatter.Format(result)
	if err != nil {
		return err
	}
	if withSeries {
		if cf, ok := formatter.(*compare.CSVFormatter); ok {
			series, err := cf.FormatSeries(result.Series)
			if err != nil {
				return err
			}
			text = fmt.Sprintf("%s\n%s", text, series)
		}
	}
	return writeOutput(cmd.OutOrStdout(), outPath, []byte(text))
}
