// Package assessment runs the model and the clinical guideline side by side
// for one patient sample.
package assessment

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"glucorisk/clinical"
	"glucorisk/db"
	"glucorisk/ml"
)

// Result is the outcome of one assessment. ModelLabel and GuidelineCategory
// are computed independently.
type Result struct {
	Sample            clinical.PatientSample `json:"sample"`
	ModelLabel        ml.Label               `json:"model_label"`
	ModelText         string                 `json:"model_prediction"`
	GuidelineCategory clinical.RiskCategory  `json:"guideline_category"`
	GuidelineText     string                 `json:"guideline_prediction"`
	Agree             bool                   `json:"agree"`
	EvaluatedAt       time.Time              `json:"evaluated_at"`
}

// Text renders the result the way it is shown to the user.
func (r Result) Text() string {
	return fmt.Sprintf("Prediction Results\n\nModel Prediction: %s\nMedical Reference Prediction: %s\n",
		r.ModelText, r.GuidelineText)
}

// Recorder persists assessments. *db.Store satisfies it.
type Recorder interface {
	SavePrediction(ctx context.Context, rec db.PredictionRecord) error
}

type Options struct {
	CacheSize int
	Recorder  Recorder
	Logger    *zap.Logger
	Now       func() time.Time
}

type Service struct {
	predictor *ml.Predictor
	cache     *lru.Cache[cacheKey, Result]
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

type cacheKey struct {
	sample clinical.PatientSample
	tree   *ml.DecisionTree
}

func NewService(predictor *ml.Predictor, opts Options) (*Service, error) {
	s := &Service{
		predictor: predictor,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[cacheKey, Result](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Service) Predictor() *ml.Predictor {
	return s.predictor
}

// Assess evaluates a sample that has already passed clinical validation.
// requestID is stored with the history row when a Recorder is configured;
// a failed write is logged and does not fail the assessment.
func (s *Service) Assess(ctx context.Context, requestID string, sample clinical.PatientSample) (Result, error) {
	result, err := s.evaluate(sample)
	if err != nil {
		return Result{}, err
	}
	result.EvaluatedAt = s.now().UTC()

	if s.recorder != nil {
		rec := db.PredictionRecord{
			RequestID:         requestID,
			HbA1cLevel:        sample.HbA1cLevel,
			BloodGlucoseLevel: sample.BloodGlucoseLevel,
			Age:               sample.Age,
			ModelLabel:        int(result.ModelLabel),
			GuidelineCategory: result.GuidelineCategory.String(),
			Agree:             result.Agree,
			CreatedAt:         result.EvaluatedAt,
		}
		if err := s.recorder.SavePrediction(ctx, rec); err != nil {
			s.logger.Warn("record prediction", zap.String("request_id", requestID), zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) evaluate(sample clinical.PatientSample) (Result, error) {
	tree := s.predictor.Tree()
	if tree == nil {
		return Result{}, ml.ErrModelUnavailable
	}
	key := cacheKey{sample: sample, tree: tree}
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	raw, err := tree.Predict(sample.Features())
	if err != nil {
		return Result{}, err
	}
	label := ml.Label(raw)
	category := clinical.Classify(sample)
	result := Result{
		Sample:            sample,
		ModelLabel:        label,
		ModelText:         label.Description(),
		GuidelineCategory: category,
		GuidelineText:     category.Description(),
		Agree:             (label == ml.LabelDiabetic) == (category == clinical.RiskHigh),
	}
	if s.cache != nil {
		s.cache.Add(key, result)
	}
	return result, nil
}
