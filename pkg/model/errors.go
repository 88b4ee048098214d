package model

import "errors"

// Sentinel errors returned by the models in this package.
var (
	ErrEmptyInput    = errors.New("model: empty X")
	ErrShapeMismatch = errors.New("model: X and y length mismatch")
	ErrRaggedInput   = errors.New("model: inconsistent number of features in X rows")
	ErrNotFitted     = errors.New("model: need to call fit beforehand")
	ErrFeatureIndex  = errors.New("model: feature score outside declared feature count")
	ErrFeatureCount  = errors.New("model: feature count must be positive")
	ErrInvalidParam  = errors.New("model: invalid hyperparameter")
)
