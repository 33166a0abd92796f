package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/rpcore/internal/config"
	"github.com/rgehrsitz/rpcore/internal/domain"
	"github.com/rgehrsitz/rpcore/internal/output"
	"github.com/rgehrsitz/rpcore/internal/transform"
)

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Project a scenario year by year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("output")

			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			formatter, err := output.NewFormatter(settings.Output.Format)
			if err != nil {
				return err
			}
			if formatter.Name() == "xlsx" && outPath == "" {
				return eris.New("xlsx output needs --output")
			}

			templates, _ := cmd.Flags().GetStringSlice("template")
			specs, _ := cmd.Flags().GetStringArray("with")
			input, err := applyWhatIf(&cfg.Input, templates, specs)
			if err != nil {
				return err
			}

			zap.L().Info("running projection",
				zap.String("input", args[0]),
				zap.String("scenario", input.Scenario.Name))
			result, err := newEngine().RunScenario(cmd.Context(), input)
			if err != nil {
				return eris.Wrap(err, "projection failed")
			}
			for _, w := range result.Warnings() {
				zap.L().Warn("projection warning", zap.String("kind", string(w.Kind)),
					zap.Int("year", w.Year), zap.String("message", w.Message))
			}

			data, err := formatter.Format(result)
			if err != nil {
				return eris.Wrapf(err, "format %s", formatter.Name())
			}
			return writeOutput(cmd.OutOrStdout(), outPath, data)
		},
	}
	cmd.Flags().StringP("format", "f", "console", "output format (console, csv, json, xlsx)")
	cmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringSlice("template", nil, "apply built-in what-if templates (see 'rpcore transforms')")
	cmd.Flags().StringArray("with", nil, "apply a transform, e.g. postpone_retirement:years=2 (repeatable)")
	return cmd
}

// applyWhatIf applies templates then explicit transforms to a copy of input.
// The scenario name records what was applied.
func applyWhatIf(input *domain.Input, templates, specs []string) (*domain.Input, error) {
	if len(templates) == 0 && len(specs) == 0 {
		return input, nil
	}

	var transforms []transform.ScenarioTransform
	builtIn := transform.CreateBuiltInTemplates(input)
	for _, name := range templates {
		tmpl, ok := builtIn.Get(name)
		if !ok {
			return nil, eris.Wrapf(domain.ErrConfig, "unknown template %q", name)
		}
		transforms = append(transforms, tmpl.Transforms...)
	}
	parsed, err := transform.NewTransformRegistry().ParseAll(specs)
	if err != nil {
		return nil, err
	}
	transforms = append(transforms, parsed...)

	out, err := transform.ApplyTransforms(input, transforms)
	if err != nil {
		return nil, err
	}
	for _, t := range transforms {
		zap.L().Debug("applied transform", zap.String("transform", t.Name()), zap.String("description", t.Description()))
	}
	names := append(append([]string{}, templates...), specs...)
	out.Scenario.Name = fmt.Sprintf("%s (%s)", input.Scenario.Name, strings.Join(names, ", "))
	return out, nil
}

func transformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms [input-file]",
		Short: "List what-if transforms, and the templates available for an input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Transforms (use with --with name:key=value,...):")
			for _, name := range transform.NewTransformRegistry().List() {
				fmt.Fprintf(w, "  %s\n", name)
			}
			if len(args) == 0 {
				return nil
			}
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			templates := transform.CreateBuiltInTemplates(&cfg.Input)
			fmt.Fprintln(w, "Templates (use with --template name):")
			for _, name := range templates.List() {
				tmpl, _ := templates.Get(name)
				fmt.Fprintf(w, "  %-22s %s\n", tmpl.Name, tmpl.Description)
			}
			return nil
		},
	}
}
