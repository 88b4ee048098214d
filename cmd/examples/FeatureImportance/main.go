package main

import (
	"fmt"
	"log"
	"math/rand"

	"tabprep/pkg/dataprep"
	"tabprep/pkg/loader"
	"tabprep/pkg/model"
)

// generateBinaryData creates a dataset where only the first two of
// nFeatures columns carry signal.
// Rule: if x0 * x1 > 0 → class 1, else class 0.
func generateBinaryData(rnd *rand.Rand, n, nFeatures int) (X [][]float64, y []int) {
	X = make([][]float64, n)
	y = make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, nFeatures)
		for j := range row {
			row[j] = rnd.Float64()*2 - 1 // [-1,1]
		}
		X[i] = row
		if row[0]*row[1] > 0 {
			y[i] = 1
		}
	}
	return
}

func main() {
	rnd := rand.New(rand.NewSource(7))

	fmt.Println("=== Feature Importance Demo with Train/Test Split ===")

	// Step 1. Generate dataset
	const nFeatures = 6
	X, y := generateBinaryData(rnd, 1000, nFeatures)
	fmt.Printf("Generated %d samples with %d features each (only f0 and f1 matter).\n", len(X), nFeatures)

	// Step 2. Split into train/test sets
	XTrain, XTest, yTrain, yTest := loader.TrainTestSplit(X, y, 0.3, 7)
	fmt.Printf("Train size: %d, Test size: %d\n", len(XTrain), len(XTest))

	// Step 3. Fit the boosted trees
	sel := model.NewFeatureSelector(nFeatures,
		model.WithNEstimators(50),
		model.WithBoostMaxDepth(3),
		model.WithBoostRandomState(7),
	)
	if err := sel.Fit(XTrain, yTrain); err != nil {
		log.Fatalf("training failed: %v", err)
	}

	// Step 4. Importance vector and selection
	importances, err := sel.FeatureImportances()
	if err != nil {
		log.Fatalf("importances: %v", err)
	}
	fmt.Println("\nBoosted tree fscore per feature:")
	for i, v := range importances {
		fmt.Printf("  f%d: %4.0f\n", i, v)
	}
	keep, err := dataprep.SelectFromModel(sel, "mean")
	if err != nil {
		log.Fatalf("select: %v", err)
	}
	fmt.Printf("Selected (>= mean): %v\n", keep)

	// Step 5. Accuracy on the holdout, all features vs selected ones
	pred, err := sel.Predict(XTest)
	if err != nil {
		log.Fatalf("predict: %v", err)
	}
	fmt.Printf("\nAccuracy with all features: %.2f%%\n", model.Accuracy(yTest, pred)*100)

	XTrainSel, _ := dataprep.FeatureSelect(XTrain, keep)
	XTestSel, _ := dataprep.FeatureSelect(XTest, keep)
	small := model.NewGradientBoostingClassifier(model.WithNEstimators(50), model.WithBoostRandomState(7))
	if err := small.Fit(XTrainSel, yTrain); err != nil {
		log.Fatalf("training on selected features failed: %v", err)
	}
	pred, err = small.Predict(XTestSel)
	if err != nil {
		log.Fatalf("predict: %v", err)
	}
	fmt.Printf("Accuracy with selected features: %.2f%%\n", model.Accuracy(yTest, pred)*100)

	// Step 6. Same question asked of a random forest
	rf := model.NewRandomForest(model.WithTreeCount(50), model.WithForestMaxDepth(6), model.WithForestRandomState(7))
	if err := rf.Fit(XTrain, yTrain); err != nil {
		log.Fatalf("forest training failed: %v", err)
	}
	forest, err := model.ImportancesFromFScore(rf, nFeatures)
	if err != nil {
		log.Fatalf("forest importances: %v", err)
	}
	fmt.Printf("\nRandom forest split counts: %v\n", forest)
}
