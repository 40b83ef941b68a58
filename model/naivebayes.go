package model

import (
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
)

// NaiveBayesRouter is a multinomial naive Bayes classifier over
// character n-gram features. Training holds out a fifth of the data
// for validation metrics.
type NaiveBayesRouter struct {
	Vectorizer     *Vectorizer `json:"vectorizer"`
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`

	version string
	alpha   float64
}

func NewNaiveBayesRouter(cfg conf.Model) *NaiveBayesRouter {
	return &NaiveBayesRouter{
		Vectorizer: NewVectorizer(cfg.Features),
		version:    cfg.Version,
		alpha:      cfg.Alpha,
	}
}

func (r *NaiveBayesRouter) Type() conf.ModelType {
	return conf.NaiveBayes
}

func (r *NaiveBayesRouter) Version() string {
	return r.version
}

func (r *NaiveBayesRouter) Train(messages, labels []string) (*Metrics, error) {
	if len(messages) == 0 || len(messages) != len(labels) {
		return nil, ErrNotTrained
	}

	processed := make([]string, len(messages))
	for i, m := range messages {
		processed[i] = Preprocess(m)
	}

	r.Vectorizer.Fit(processed)
	xs := r.Vectorizer.TransformAll(processed)

	// Fixed-seed shuffle so training runs are reproducible.
	rng := rand.New(rand.NewSource(42))
	perm := rng.Perm(len(xs))

	valSize := len(xs) / 5
	trainX := make([][]float64, 0, len(xs)-valSize)
	trainY := make([]string, 0, len(xs)-valSize)
	valX := make([][]float64, 0, valSize)
	valY := make([]string, 0, valSize)

	for i, idx := range perm {
		if i < valSize {
			valX = append(valX, xs[idx])
			valY = append(valY, labels[idx])
		} else {
			trainX = append(trainX, xs[idx])
			trainY = append(trainY, labels[idx])
		}
	}

	r.fit(trainX, trainY)

	// Too little data to hold anything out; validate on the
	// training set instead.
	if valSize == 0 {
		valX, valY = trainX, trainY
	}

	predicted := make([]string, len(valX))
	for i, x := range valX {
		label, _ := r.classify(x)
		predicted[i] = label
	}

	metrics := validationMetrics(valY, predicted)
	zap.L().Info("naive bayes model trained",
		zap.Int("samples", len(messages)),
		zap.Int("features", len(r.Vectorizer.Vocabulary)),
		zap.Float64("accuracy", metrics.Accuracy),
	)

	return metrics, nil
}

func (r *NaiveBayesRouter) fit(xs [][]float64, labels []string) {
	classSet := make(map[string]struct{})
	for _, label := range labels {
		classSet[label] = struct{}{}
	}

	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	features := len(r.Vectorizer.Vocabulary)
	counts := make([]float64, len(classes))
	featureCounts := make([][]float64, len(classes))
	for i := range featureCounts {
		featureCounts[i] = make([]float64, features)
	}

	for i, x := range xs {
		c := index[labels[i]]
		counts[c]++
		for j, v := range x {
			featureCounts[c][j] += v
		}
	}

	prior := make([]float64, len(classes))
	logProb := make([][]float64, len(classes))
	total := float64(len(xs))

	for c := range classes {
		prior[c] = math.Log(counts[c] / total)

		var sum float64
		for _, v := range featureCounts[c] {
			sum += v
		}

		denom := math.Log(sum + r.alpha*float64(features))
		logProb[c] = make([]float64, features)
		for j, v := range featureCounts[c] {
			logProb[c][j] = math.Log(v+r.alpha) - denom
		}
	}

	r.Classes = classes
	r.ClassLogPrior = prior
	r.FeatureLogProb = logProb
}

func (r *NaiveBayesRouter) Predict(message string) (*Prediction, error) {
	if len(r.Classes) == 0 {
		return nil, ErrNotTrained
	}

	x := r.Vectorizer.Transform(Preprocess(message))
	label, confidence := r.classify(x)

	return &Prediction{Label: label, Confidence: confidence}, nil
}

// classify returns the best class and its posterior probability,
// normalized over the classes with log-sum-exp.
func (r *NaiveBayesRouter) classify(x []float64) (string, float64) {
	scores := make([]float64, len(r.Classes))
	for c := range r.Classes {
		score := r.ClassLogPrior[c]
		for j, v := range x {
			if v != 0 {
				score += v * r.FeatureLogProb[c][j]
			}
		}
		scores[c] = score
	}

	best := 0
	maxScore := scores[0]
	for c, score := range scores {
		if score > maxScore {
			best = c
			maxScore = score
		}
	}

	var total float64
	for _, score := range scores {
		total += math.Exp(score - maxScore)
	}

	return r.Classes[best], 1 / total
}
