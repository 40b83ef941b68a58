package model

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
)

var fieldTagRe = regexp.MustCompile(`:(\d+[A-Z]?):`)

// FrequencyRouter counts which field tags co-occur with which label
// during training and scores a message by summing the counts of the
// tags it carries. Confidence is the winning label's share of the
// total score.
type FrequencyRouter struct {
	TagCounts    map[string]map[string]int `json:"tag_counts"`
	Labels       []string                  `json:"labels"`
	DefaultLabel string                    `json:"default_label"`

	version string
}

func NewFrequencyRouter(cfg conf.Model) *FrequencyRouter {
	return &FrequencyRouter{
		TagCounts:    make(map[string]map[string]int),
		DefaultLabel: "UNKNOWN",
		version:      cfg.Version,
	}
}

func (r *FrequencyRouter) Type() conf.ModelType {
	return conf.Frequency
}

func (r *FrequencyRouter) Version() string {
	return r.version
}

func (r *FrequencyRouter) Train(messages, labels []string) (*Metrics, error) {
	if len(messages) == 0 || len(messages) != len(labels) {
		return nil, ErrNotTrained
	}

	labelSet := make(map[string]struct{})
	for _, label := range labels {
		labelSet[label] = struct{}{}
	}

	r.Labels = make([]string, 0, len(labelSet))
	for label := range labelSet {
		r.Labels = append(r.Labels, label)
	}
	sort.Strings(r.Labels)
	r.DefaultLabel = r.Labels[0]

	for i, msg := range messages {
		processed := Preprocess(msg)
		for _, groups := range fieldTagRe.FindAllStringSubmatch(processed, -1) {
			tag := groups[1]
			if r.TagCounts[tag] == nil {
				r.TagCounts[tag] = make(map[string]int)
			}
			r.TagCounts[tag][labels[i]]++
		}
	}

	predicted := make([]string, len(messages))
	for i, msg := range messages {
		p, _ := r.Predict(msg)
		predicted[i] = p.Label
	}

	metrics := validationMetrics(labels, predicted)
	zap.L().Info("frequency model trained",
		zap.Int("samples", len(messages)),
		zap.Int("tags", len(r.TagCounts)),
		zap.Float64("accuracy", metrics.Accuracy),
	)

	return metrics, nil
}

func (r *FrequencyRouter) Predict(message string) (*Prediction, error) {
	if len(r.Labels) == 0 {
		return &Prediction{Label: r.DefaultLabel, Confidence: 1.0}, nil
	}

	scores := make(map[string]float64, len(r.Labels))

	processed := Preprocess(message)
	for _, groups := range fieldTagRe.FindAllStringSubmatch(processed, -1) {
		for label, count := range r.TagCounts[groups[1]] {
			scores[label] += float64(count)
		}
	}

	var total float64
	for _, score := range scores {
		total += score
	}

	if total == 0 {
		return &Prediction{Label: r.DefaultLabel, Confidence: 0.5}, nil
	}

	best := r.DefaultLabel
	var bestScore float64
	for _, label := range r.Labels {
		if scores[label] > bestScore {
			best = label
			bestScore = scores[label]
		}
	}

	return &Prediction{Label: best, Confidence: bestScore / total}, nil
}
