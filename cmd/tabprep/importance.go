package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tabprep/pkg/data"
	"tabprep/pkg/dataprep"
	"tabprep/pkg/loader"
	"tabprep/pkg/logger"
	"tabprep/pkg/model"
	"tabprep/pkg/report"
)

func (a *app) importanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Fit a tree model and report per-feature split counts",
		Long: `The importance command fits a gradient boosted tree classifier (or a random
forest) on every numeric column against the label column and reports how
often each feature was used to split. Features whose score reaches the
threshold are marked as selected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImportance(cmd)
		},
	}
	a.inputFlags(cmd)
	fs := cmd.Flags()
	fs.BoolVar(&a.flags.prep, "prep", false, "run the prep steps on the input first")
	fs.StringVarP(&a.flags.label, "label", "l", "", "label column (integer classes)")
	fs.StringVar(&a.flags.model, "model", "", "boost or forest")
	fs.StringVar(&a.flags.threshold, "threshold", "", `selection threshold: "mean", "median", "<scale>*mean" or a number`)
	fs.Float64Var(&a.flags.testRatio, "test-ratio", 0, "share of rows held out for scoring")
	fs.StringVar(&a.flags.report, "report", "", "write a YAML report to this path")
	fs.StringVar(&a.flags.plot, "plot", "", "save an importance bar chart (png, svg, pdf)")
	fs.StringVar(&a.flags.selected, "selected", "", "write the selected columns and the label as CSV")
	fs.IntVar(&a.flags.nEstimators, "n-estimators", 0, "boosting rounds or forest trees")
	fs.IntVar(&a.flags.maxDepth, "max-depth", 0, "maximum tree depth")
	fs.Float64Var(&a.flags.eta, "learning-rate", 0, "boosting learning rate")
	fs.Int64Var(&a.flags.seed, "seed", 0, "random seed")
	return cmd
}

// fitted is what the importance run needs from either model.
type fitted struct {
	model       model.Classifier
	importances func() ([]float64, error)
	gains       []float64
	proba       func([][]float64) ([][]float64, error)
	classes     []int
	trees       int
	rounds      int
}

func (f fitted) FeatureImportances() ([]float64, error) { return f.importances() }

func (a *app) runImportance(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if a.cfg.Label == "" {
		return fmt.Errorf("importance: a label column is required (--label or label:)")
	}
	df, err := a.loadTable(cmd)
	if err != nil {
		return err
	}
	if a.flags.prep {
		if df, err = a.prepare(ctx, df); err != nil {
			return err
		}
	}
	X, y, names, err := data.SplitXY(df, a.cfg.Label)
	if err != nil {
		return err
	}

	XTrain, yTrain := X, y
	var XTest [][]float64
	var yTest []int
	if a.cfg.TestRatio > 0 {
		XTrain, XTest, yTrain, yTest = loader.TrainTestSplit(X, y, a.cfg.TestRatio, a.cfg.Boost.RandomState)
	}

	start := time.Now()
	m, err := a.fit(XTrain, yTrain, len(names))
	if err != nil {
		return fmt.Errorf("importance: fit: %w", err)
	}
	elapsed := time.Since(start)
	a.metrics.RecordFit(elapsed, m.rounds)
	a.log.Info(ctx, "model fitted",
		logger.String("model", a.cfg.Model),
		logger.Int("rows", len(XTrain)),
		logger.Int("features", len(names)),
		logger.Int("trees", m.trees),
		logger.Duration("elapsed", elapsed))

	scores, err := m.FeatureImportances()
	if err != nil {
		return err
	}
	selected, err := dataprep.SelectFromModel(m, a.cfg.SelectThreshold)
	if err != nil {
		return err
	}
	features, err := report.NewFeatureScores(names, scores, m.gains, selected)
	if err != nil {
		return err
	}

	doc := &report.Importance{
		RunID:     a.runID,
		Input:     a.cfg.Input,
		Model:     a.cfg.Model,
		Label:     a.cfg.Label,
		Rows:      len(X),
		Trees:     m.trees,
		Threshold: a.cfg.SelectThreshold,
		Summary:   report.Summarize(scores),
		Features:  features,
	}
	if len(XTest) > 0 {
		if doc.Holdout, err = m.holdout(XTest, yTest); err != nil {
			return err
		}
		a.log.Info(ctx, "holdout scored",
			logger.Int("rows", doc.Holdout.Rows),
			logger.Float64("accuracy", doc.Holdout.Accuracy),
			logger.Float64("log_loss", doc.Holdout.LogLoss),
			logger.Float64("f1", doc.Holdout.F1))
	}

	if err := printImportances(cmd, features); err != nil {
		return err
	}
	if a.cfg.Report != "" {
		if err := doc.WriteYAML(a.cfg.Report); err != nil {
			return err
		}
		a.log.Info(ctx, "report written", logger.String("path", a.cfg.Report))
	}
	if a.cfg.Plot != "" {
		if err := report.PlotImportances(a.cfg.Plot, "Feature importance ("+a.cfg.Label+")", features); err != nil {
			return err
		}
		a.log.Info(ctx, "plot saved", logger.String("path", a.cfg.Plot))
	}
	if a.cfg.Selected != "" {
		keep := make([]string, 0, len(selected)+1)
		for _, i := range selected {
			keep = append(keep, names[i])
		}
		keep = append(keep, a.cfg.Label)
		out, err := dataprep.SelectColumns(df, keep)
		if err != nil {
			return err
		}
		if err := a.writeTable(cmd, a.cfg.Selected, out); err != nil {
			return err
		}
	}
	a.log.Info(ctx, "features selected",
		logger.Int("selected", len(selected)),
		logger.Int("features", len(names)),
		logger.String("threshold", a.cfg.SelectThreshold))
	return nil
}

func (a *app) fit(X [][]float64, y []int, nFeatures int) (fitted, error) {
	b := a.cfg.Boost
	if a.cfg.Model == "forest" {
		rf := model.NewRandomForest(
			model.WithTreeCount(b.NEstimators),
			model.WithForestMaxDepth(b.MaxDepth),
			model.WithForestRandomState(b.RandomState),
		)
		if err := rf.Fit(X, y); err != nil {
			return fitted{}, err
		}
		return fitted{
			model:       rf,
			importances: func() ([]float64, error) { return model.ImportancesFromFScore(rf, nFeatures) },
			classes:     rf.Classes(),
			trees:       len(rf.Trees),
		}, nil
	}

	params := model.DefaultBoostParams()
	params.NEstimators = b.NEstimators
	params.LearningRate = b.LearningRate
	params.MaxDepth = b.MaxDepth
	params.MinChildWeight = b.MinChildWeight
	params.Lambda = b.Lambda
	params.Gamma = b.Gamma
	params.Subsample = b.Subsample
	params.ColsampleByTree = b.ColsampleByTree
	params.RandomState = b.RandomState

	sel := model.NewFeatureSelector(nFeatures, model.WithBoostParams(params))
	if err := sel.Fit(X, y); err != nil {
		return fitted{}, err
	}
	booster, err := sel.Booster()
	if err != nil {
		return fitted{}, err
	}
	gains, err := booster.GainsByIndex(nFeatures)
	if err != nil {
		return fitted{}, err
	}
	return fitted{
		model:       sel,
		importances: sel.FeatureImportances,
		gains:       gains,
		proba:       sel.PredictProba,
		classes:     sel.Classes(),
		trees:       booster.NumTrees(),
		rounds:      len(booster.Rounds),
	}, nil
}

func (f fitted) holdout(X [][]float64, y []int) (*report.Holdout, error) {
	pred, err := f.model.Predict(X)
	if err != nil {
		return nil, err
	}
	h := &report.Holdout{Rows: len(y), Accuracy: model.Accuracy(y, pred)}
	if f.proba != nil {
		proba, err := f.proba(X)
		if err != nil {
			return nil, err
		}
		h.LogLoss = model.LogLoss(y, proba, f.classes)
	}
	if len(f.classes) == 2 {
		h.Precision, h.Recall, h.F1 = model.PrecisionRecallF1(y, pred, f.classes[1])
	}
	return h, nil
}

// printImportances writes the non-zero scores, highest first.
func printImportances(cmd *cobra.Command, features []report.FeatureScore) error {
	ranked := report.Ranked(features)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tFSCORE\tSELECTED")
	for _, f := range ranked {
		if f.FScore == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%g\t%t\n", f.Name, f.FScore, f.Selected)
	}
	return w.Flush()
}

var _ dataprep.ImportanceProvider = fitted{}
