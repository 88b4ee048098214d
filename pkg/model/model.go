package model

// Classifier is a supervised classifier over dense float features and
// integer class labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// ImportanceClassifier is a classifier that can report split counts.
type ImportanceClassifier interface {
	Classifier
	SplitCounter
}

var (
	_ ImportanceClassifier = (*GradientBoostingClassifier)(nil)
	_ ImportanceClassifier = (*DecisionTreeClassifier)(nil)
	_ ImportanceClassifier = (*RandomForest)(nil)
)
