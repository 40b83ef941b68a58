package evaluation

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
)

var (
	ErrNoLabels       = errors.New("empty label lists")
	ErrLengthMismatch = errors.New("label list length mismatch")
)

type Metrics struct {
	Accuracy               float64 `json:"accuracy"`
	Precision              float64 `json:"precision"`
	Recall                 float64 `json:"recall"`
	F1                     float64 `json:"f1"`
	CorrectCount           int     `json:"correct_count"`
	TotalCount             int     `json:"total_count"`
	AvgConfidence          float64 `json:"avg_confidence"`
	AvgConfidenceCorrect   float64 `json:"avg_confidence_correct"`
	AvgConfidenceIncorrect float64 `json:"avg_confidence_incorrect"`
}

type Report struct {
	Metrics         Metrics          `json:"metrics"`
	ConfusionMatrix *ConfusionMatrix `json:"confusion_matrix,omitempty"`
	OutputFiles     []string         `json:"output_files,omitempty"`
}

// Evaluator scores a set of predictions against their expected labels
// and writes the results in the configured formats.
type Evaluator struct {
	cfg conf.Evaluation
	log *zap.Logger
}

func NewEvaluator(cfg conf.Evaluation) *Evaluator {
	return &Evaluator{
		cfg: cfg,
		log: zap.L().With(zap.String("component", "evaluator")),
	}
}

func (e *Evaluator) enabled(metric string) bool {
	for _, m := range e.cfg.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

func (e *Evaluator) format(name string) bool {
	for _, f := range e.cfg.OutputFormats {
		if f == name {
			return true
		}
	}
	return false
}

// CalculateMetrics computes the configured metrics. confidences may be
// nil; when given it must align with the label slices.
func (e *Evaluator) CalculateMetrics(trueLabels, predicted []string, confidences []float64) (*Metrics, error) {
	if len(trueLabels) == 0 || len(predicted) == 0 {
		return nil, ErrNoLabels
	}

	if len(trueLabels) != len(predicted) {
		return nil, ErrLengthMismatch
	}

	if confidences != nil && len(confidences) != len(trueLabels) {
		return nil, ErrLengthMismatch
	}

	var m Metrics
	m.TotalCount = len(trueLabels)
	for i := range trueLabels {
		if trueLabels[i] == predicted[i] {
			m.CorrectCount++
		}
	}

	if e.enabled("accuracy") {
		m.Accuracy = Accuracy(trueLabels, predicted)
	}

	if e.enabled("precision") || e.enabled("recall") || e.enabled("f1") {
		p, r, f1 := WeightedScores(trueLabels, predicted)
		if e.enabled("precision") {
			m.Precision = p
		}
		if e.enabled("recall") {
			m.Recall = r
		}
		if e.enabled("f1") {
			m.F1 = f1
		}
	}

	if confidences != nil {
		var all, correct, incorrect float64
		var nCorrect, nIncorrect int

		for i, c := range confidences {
			all += c
			if trueLabels[i] == predicted[i] {
				correct += c
				nCorrect++
			} else {
				incorrect += c
				nIncorrect++
			}
		}

		m.AvgConfidence = all / float64(len(confidences))
		if nCorrect > 0 {
			m.AvgConfidenceCorrect = correct / float64(nCorrect)
		}
		if nIncorrect > 0 {
			m.AvgConfidenceIncorrect = incorrect / float64(nIncorrect)
		}
	}

	return &m, nil
}

// Evaluate computes metrics and writes all configured outputs into
// outputDir. Filenames carry the given prefix.
func (e *Evaluator) Evaluate(trueLabels, predicted []string, confidences []float64, outputDir, prefix string) (*Report, error) {
	metrics, err := e.CalculateMetrics(trueLabels, predicted, confidences)
	if err != nil {
		return nil, err
	}

	report := &Report{Metrics: *metrics}
	if e.cfg.ConfusionMatrix {
		report.ConfusionMatrix = NewConfusionMatrix(trueLabels, predicted)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create output dir")
	}

	if e.format("csv") {
		files, err := e.saveCSV(report, trueLabels, predicted, confidences, outputDir, prefix)
		if err != nil {
			return nil, err
		}
		report.OutputFiles = append(report.OutputFiles, files...)
	}

	if e.format("json") {
		file, err := e.saveJSON(report, trueLabels, predicted, confidences, outputDir, prefix)
		if err != nil {
			return nil, err
		}
		report.OutputFiles = append(report.OutputFiles, file)
	}

	e.log.Info("evaluation complete",
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Int("total", metrics.TotalCount),
		zap.Strings("files", report.OutputFiles),
	)

	return report, nil
}

func (e *Evaluator) saveCSV(report *Report, trueLabels, predicted []string, confidences []float64, dir, prefix string) ([]string, error) {
	var files []string

	metricsFile := filepath.Join(dir, prefix+"metrics.csv")
	if err := writeCSV(metricsFile, [][]string{
		{
			"accuracy", "precision", "recall", "f1",
			"correct_count", "total_count", "avg_confidence",
		},
		{
			formatFloat(report.Metrics.Accuracy),
			formatFloat(report.Metrics.Precision),
			formatFloat(report.Metrics.Recall),
			formatFloat(report.Metrics.F1),
			strconv.Itoa(report.Metrics.CorrectCount),
			strconv.Itoa(report.Metrics.TotalCount),
			formatFloat(report.Metrics.AvgConfidence),
		},
	}); err != nil {
		return nil, err
	}
	files = append(files, metricsFile)

	rows := [][]string{{"true_label", "predicted_label", "correct", "confidence"}}
	for i := range trueLabels {
		confidence := ""
		if confidences != nil {
			confidence = formatFloat(confidences[i])
		}

		rows = append(rows, []string{
			trueLabels[i],
			predicted[i],
			strconv.FormatBool(trueLabels[i] == predicted[i]),
			confidence,
		})
	}

	predictionsFile := filepath.Join(dir, prefix+"predictions.csv")
	if err := writeCSV(predictionsFile, rows); err != nil {
		return nil, err
	}
	files = append(files, predictionsFile)

	if report.ConfusionMatrix != nil {
		cm := report.ConfusionMatrix

		rows := [][]string{append([]string{"true\\predicted"}, cm.Labels...)}
		for i, label := range cm.Labels {
			row := []string{label}
			for _, count := range cm.Counts[i] {
				row = append(row, strconv.Itoa(count))
			}
			rows = append(rows, row)
		}

		cmFile := filepath.Join(dir, prefix+"confusion_matrix.csv")
		if err := writeCSV(cmFile, rows); err != nil {
			return nil, err
		}
		files = append(files, cmFile)
	}

	return files, nil
}

func (e *Evaluator) saveJSON(report *Report, trueLabels, predicted []string, confidences []float64, dir, prefix string) (string, error) {
	type prediction struct {
		TrueLabel      string  `json:"true_label"`
		PredictedLabel string  `json:"predicted_label"`
		Correct        bool    `json:"correct"`
		Confidence     float64 `json:"confidence,omitempty"`
	}

	predictions := make([]prediction, len(trueLabels))
	for i := range trueLabels {
		predictions[i] = prediction{
			TrueLabel:      trueLabels[i],
			PredictedLabel: predicted[i],
			Correct:        trueLabels[i] == predicted[i],
		}
		if confidences != nil {
			predictions[i].Confidence = confidences[i]
		}
	}

	payload := struct {
		Metrics         Metrics          `json:"metrics"`
		ConfusionMatrix *ConfusionMatrix `json:"confusion_matrix,omitempty"`
		Predictions     []prediction     `json:"predictions"`
	}{
		Metrics:         report.Metrics,
		ConfusionMatrix: report.ConfusionMatrix,
		Predictions:     predictions,
	}

	data, err := json.MarshalIndent(&payload, "", "  ")
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, prefix+"metrics.json")
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", errors.Wrap(err, "write metrics")
	}

	return file, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv")
	}

	return nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
