package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/evaluation"
)

var ErrNotTrained = errors.New("model has not been trained yet")

type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Metrics summarizes a validation pass over held-out training data.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Router assigns a routing label to a message. Implementations are
// selected through the model configuration and snapshotted as JSON.
type Router interface {
	Type() conf.ModelType
	Version() string
	Train(messages, labels []string) (*Metrics, error)
	Predict(message string) (*Prediction, error)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Preprocess collapses runs of whitespace and uppercases the text, so
// that the routers see a canonical form of each message.
func Preprocess(message string) string {
	return strings.ToUpper(whitespaceRe.ReplaceAllString(strings.TrimSpace(message), " "))
}

// New builds the configured router. An unrecognized type falls back
// to the frequency router with a warning.
func New(cfg conf.Model) Router {
	switch cfg.Type {
	case conf.NaiveBayes:
		return NewNaiveBayesRouter(cfg)
	case conf.RuleBased:
		return NewRuleBasedRouter(cfg)
	case conf.Frequency:
		return NewFrequencyRouter(cfg)
	default:
		zap.L().Warn("unknown model type, falling back to frequency",
			zap.String("type", cfg.Type.String()),
		)
		return NewFrequencyRouter(cfg)
	}
}

func validationMetrics(trueLabels, predicted []string) *Metrics {
	precision, recall, f1 := evaluation.WeightedScores(trueLabels, predicted)

	return &Metrics{
		Accuracy:  evaluation.Accuracy(trueLabels, predicted),
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}
}

type snapshot struct {
	Type    string          `json:"type"`
	Version string          `json:"version"`
	State   json.RawMessage `json:"state"`
}

// SnapshotName returns the filename a model version is stored under.
func SnapshotName(version string) string {
	return "model_v" + version + ".json"
}

// Save writes the router state into dir and returns the file path.
func Save(r Router, dir string) (string, error) {
	state, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshal model state")
	}

	snap := snapshot{
		Type:    r.Type().String(),
		Version: r.Version(),
		State:   state,
	}

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create model dir")
	}

	path := filepath.Join(dir, SnapshotName(r.Version()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrap(err, "write model snapshot")
	}

	return path, nil
}

// Load restores the router snapshot for cfg.Version from dir. The
// snapshot's own type wins over the configured one, so a saved model
// keeps routing the way it was trained.
func Load(dir string, cfg conf.Model) (Router, error) {
	data, err := os.ReadFile(filepath.Join(dir, SnapshotName(cfg.Version)))
	if err != nil {
		return nil, errors.Wrap(err, "read model snapshot")
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "parse model snapshot")
	}

	t, err := conf.ParseModelType(snap.Type)
	if err != nil {
		return nil, err
	}

	cfg.Type = t
	cfg.Version = snap.Version

	r := New(cfg)
	if err := json.Unmarshal(snap.State, r); err != nil {
		return nil, errors.Wrap(err, "restore model state")
	}

	return r, nil
}
