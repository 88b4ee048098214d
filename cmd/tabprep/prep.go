package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"tabprep/pkg/data"
	"tabprep/pkg/dataprep"
	"tabprep/pkg/logger"
	"tabprep/pkg/pipeline"
)

func (a *app) prepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Encode categorical columns and add holiday distance features",
		Long: `The prep command reads a CSV table, encodes the configured categorical
columns and, unless disabled, adds one days_to_<holiday> column per holiday
of each row's account-creation year. The result is written as CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := a.loadTable(cmd)
			if err != nil {
				return err
			}
			out, err := a.prepare(cmd.Context(), df)
			if err != nil {
				return err
			}
			return a.writeTable(cmd, a.cfg.Output, out)
		},
	}
	a.inputFlags(cmd)
	cmd.Flags().StringVarP(&a.flags.output, "output", "o", "", "output CSV (default stdout)")
	return cmd
}

// loadTable reads the configured input, or stdin when none is set.
// Categorical columns are read as strings whatever they look like.
func (a *app) loadTable(cmd *cobra.Command) (dataframe.DataFrame, error) {
	var (
		df  dataframe.DataFrame
		err error
	)
	if a.cfg.Input == "" {
		df, err = data.ReadCSV(cmd.InOrStdin(), a.cfg.Categorical...)
	} else {
		df, err = data.LoadCSV(a.cfg.Input, a.cfg.Categorical...)
	}
	if err != nil {
		return df, err
	}
	a.metrics.RecordRows(df.Nrow())
	a.log.Info(cmd.Context(), "table loaded",
		logger.String("input", a.cfg.Input),
		logger.Int("rows", df.Nrow()),
		logger.Int("columns", df.Ncol()))
	return df, nil
}

func (a *app) writeTable(cmd *cobra.Command, path string, df dataframe.DataFrame) error {
	if path == "" {
		if err := df.WriteCSV(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}
	if err := data.WriteCSV(path, df); err != nil {
		return err
	}
	a.log.Info(cmd.Context(), "table written", logger.String("output", path), logger.Int("columns", df.Ncol()))
	return nil
}

// preparePipeline builds the configured steps: encoding first, then the
// holiday features.
func (a *app) preparePipeline() *pipeline.Pipeline {
	var steps []pipeline.Step
	if len(a.cfg.Categorical) > 0 {
		step := dataprep.EncodeStep{Columns: a.cfg.Categorical, Method: a.cfg.Encoding}
		if a.cfg.DummyNA {
			step.Options = append(step.Options, dataprep.WithDummyNA())
		}
		steps = append(steps, step)
	}
	if a.cfg.Holidays.Enabled {
		g := dataprep.NewHolidayGenerator()
		g.YearField = a.cfg.Holidays.YearField
		g.MonthField = a.cfg.Holidays.MonthField
		g.DayField = a.cfg.Holidays.DayField
		g.Prefix = a.cfg.Holidays.Prefix
		steps = append(steps, g)
	}
	return pipeline.NewPipeline(steps...).WithObserver(a.stepLogger())
}

func (a *app) prepare(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	p := a.preparePipeline()
	before := pipeline.SchemaOf(df)
	out, err := p.Run(ctx, df)
	if err != nil {
		return df, err
	}
	added := pipeline.SchemaOf(out).Added(before)
	a.log.Info(ctx, "table prepared",
		logger.Strings("steps", p.Steps()),
		logger.Int("columns", out.Ncol()),
		logger.Int("added", len(added)))
	a.log.Debug(ctx, "new columns", logger.Strings("names", added))
	return out, nil
}

// observerFunc adapts a function to pipeline.Observer.
type observerFunc func(step string, rows, addedCols int, elapsed time.Duration, err error)

func (f observerFunc) StepDone(step string, rows, addedCols int, elapsed time.Duration, err error) {
	f(step, rows, addedCols, elapsed, err)
}

// stepLogger records every step in the metrics and logs it.
func (a *app) stepLogger() pipeline.Observer {
	return observerFunc(func(step string, rows, addedCols int, elapsed time.Duration, err error) {
		a.metrics.StepDone(step, rows, addedCols, elapsed, err)
		fields := []logger.Field{
			logger.String("step", step),
			logger.Int("rows", rows),
			logger.Int("added_columns", addedCols),
			logger.Duration("elapsed", elapsed),
		}
		if err != nil {
			a.log.Error(context.Background(), "step failed", append(fields, logger.Error(err))...)
			return
		}
		a.log.Debug(context.Background(), "step done", fields...)
	})
}
