package model

import (
	"regexp"

	"github.com/swiftlab/routing/conf"
)

type rule struct {
	pattern *regexp.Regexp
	label   string
}

// RuleBasedRouter matches messages against an ordered list of field
// patterns. The first matching rule wins with full confidence; a
// message matching no rule routes to "Unknown" with zero confidence.
type RuleBasedRouter struct {
	rules   []rule
	version string
}

func NewRuleBasedRouter(cfg conf.Model) *RuleBasedRouter {
	return &RuleBasedRouter{
		version: cfg.Version,
		rules: []rule{
			{regexp.MustCompile(`:23B:CRED`), "Customer Transfer"},
			{regexp.MustCompile(`:58A:|:58D:|FINANCIAL INSTITUTION`), "Financial Institution Transfer"},
			{regexp.MustCompile(`DOCUMENTARY CREDIT|LETTER OF CREDIT|:27:|:40A:`), "Documentary Credit"},
			{regexp.MustCompile(`FIXED LOAN|DEPOSIT|:22A:NEWT`), "Fixed Loan/Deposit"},
			{regexp.MustCompile(`STATEMENT|:60F:|:62F:`), "Statement"},
		},
	}
}

func (r *RuleBasedRouter) Type() conf.ModelType {
	return conf.RuleBased
}

func (r *RuleBasedRouter) Version() string {
	return r.version
}

// Train is a no-op; the rules are static.
func (r *RuleBasedRouter) Train(messages, labels []string) (*Metrics, error) {
	return &Metrics{}, nil
}

func (r *RuleBasedRouter) Predict(message string) (*Prediction, error) {
	processed := Preprocess(message)

	for _, rule := range r.rules {
		if rule.pattern.MatchString(processed) {
			return &Prediction{Label: rule.label, Confidence: 1.0}, nil
		}
	}

	return &Prediction{Label: "Unknown", Confidence: 0.0}, nil
}
