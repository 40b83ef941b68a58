package evaluation

import "sort"

// Accuracy is the fraction of predictions matching the true label.
func Accuracy(trueLabels, predicted []string) float64 {
	if len(trueLabels) == 0 {
		return 0
	}

	correct := 0
	for i := range trueLabels {
		if trueLabels[i] == predicted[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(trueLabels))
}

// WeightedScores returns precision, recall and F1 averaged over the
// classes, each class weighted by its support. Classes without
// predictions contribute zero.
func WeightedScores(trueLabels, predicted []string) (precision, recall, f1 float64) {
	support := make(map[string]int)
	truePos := make(map[string]int)
	predCount := make(map[string]int)

	for i := range trueLabels {
		support[trueLabels[i]]++
		predCount[predicted[i]]++
		if trueLabels[i] == predicted[i] {
			truePos[trueLabels[i]]++
		}
	}

	total := float64(len(trueLabels))
	if total == 0 {
		return 0, 0, 0
	}

	for label, count := range support {
		weight := float64(count) / total

		var p, r float64
		if predCount[label] > 0 {
			p = float64(truePos[label]) / float64(predCount[label])
		}
		if count > 0 {
			r = float64(truePos[label]) / float64(count)
		}

		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}

		precision += weight * p
		recall += weight * r
		f1 += weight * f
	}

	return precision, recall, f1
}

// ConfusionMatrix counts predictions per (true, predicted) label pair.
// Rows are true labels, columns predicted, both in Labels order.
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

func NewConfusionMatrix(trueLabels, predicted []string) *ConfusionMatrix {
	seen := make(map[string]struct{})
	for _, label := range trueLabels {
		seen[label] = struct{}{}
	}
	for _, label := range predicted {
		seen[label] = struct{}{}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}

	for i := range trueLabels {
		counts[index[trueLabels[i]]][index[predicted[i]]]++
	}

	return &ConfusionMatrix{Labels: labels, Counts: counts}
}
