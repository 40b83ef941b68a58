package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
)

func testModel(t conf.ModelType) conf.Model {
	return conf.Model{
		Type:                t,
		Version:             "1.0.0",
		PredictionThreshold: 0.5,
		Alpha:               1.0,
		Features: conf.FeatureExtraction{
			Vectorizer:  "tfidf",
			MaxFeatures: 1000,
			NGramMin:    1,
			NGramMax:    3,
		},
	}
}

// trainingSet repeats every builtin template with a distinct suffix so
// that the split sees multiple samples per class.
func trainingSet(perTemplate int) (messages, labels []string) {
	for _, t := range message.BuiltinTemplates() {
		for i := 0; i < perTemplate; i++ {
			messages = append(messages, fmt.Sprintf("%s\nSAMPLE %d", t.Content, i))
			labels = append(labels, t.ExpectedLabel)
		}
	}
	return
}

type routerTestSuite struct {
	suite.Suite
}

func (suite *routerTestSuite) TestPreprocess() {
	suite.Equal("A B C", Preprocess("  a\n\tb   c  "))
}

func (suite *routerTestSuite) TestFactory() {
	suite.IsType(&NaiveBayesRouter{}, New(testModel(conf.NaiveBayes)))
	suite.IsType(&RuleBasedRouter{}, New(testModel(conf.RuleBased)))
	suite.IsType(&FrequencyRouter{}, New(testModel(conf.Frequency)))
}

func (suite *routerTestSuite) TestFactoryUnknownTypeFallsBack() {
	suite.IsType(&FrequencyRouter{}, New(testModel(conf.ModelType(99))))
}

func (suite *routerTestSuite) TestNaiveBayesPredictsOwnLabel() {
	r := NewNaiveBayesRouter(testModel(conf.NaiveBayes))

	messages, labels := trainingSet(8)
	metrics, err := r.Train(messages, labels)
	suite.Require().NoError(err)
	suite.Equal(1.0, metrics.Accuracy)

	for _, t := range message.BuiltinTemplates() {
		p, err := r.Predict(t.Content)
		suite.Require().NoError(err)
		suite.Equal(t.ExpectedLabel, p.Label)
		suite.Greater(p.Confidence, 1.0/3.0)
	}
}

func (suite *routerTestSuite) TestNaiveBayesNotTrained() {
	r := NewNaiveBayesRouter(testModel(conf.NaiveBayes))

	_, err := r.Predict("anything")
	suite.ErrorIs(err, ErrNotTrained)
}

func (suite *routerTestSuite) TestNaiveBayesTinyTrainingSet() {
	r := NewNaiveBayesRouter(testModel(conf.NaiveBayes))

	metrics, err := r.Train(
		[]string{":23B:CRED PAYMENT", ":60F:STATEMENT"},
		[]string{"PAYMENTS", "REPORTING"},
	)
	suite.Require().NoError(err)
	suite.Equal(1.0, metrics.Accuracy)
}

func (suite *routerTestSuite) TestSnapshotRoundTrip() {
	dir := suite.T().TempDir()

	r := NewNaiveBayesRouter(testModel(conf.NaiveBayes))
	messages, labels := trainingSet(8)
	_, err := r.Train(messages, labels)
	suite.Require().NoError(err)

	path, err := Save(r, dir)
	suite.Require().NoError(err)
	suite.Contains(path, "model_v1.0.0.json")

	loaded, err := Load(dir, testModel(conf.NaiveBayes))
	suite.Require().NoError(err)
	suite.Equal(conf.NaiveBayes, loaded.Type())
	suite.Equal("1.0.0", loaded.Version())

	for _, t := range message.BuiltinTemplates() {
		want, err := r.Predict(t.Content)
		suite.Require().NoError(err)

		got, err := loaded.Predict(t.Content)
		suite.Require().NoError(err)

		suite.Equal(want.Label, got.Label)
		suite.InDelta(want.Confidence, got.Confidence, 1e-9)
	}
}

func (suite *routerTestSuite) TestLoadMissingSnapshot() {
	_, err := Load(suite.T().TempDir(), testModel(conf.NaiveBayes))
	suite.Error(err)
}

func (suite *routerTestSuite) TestRuleBased() {
	r := NewRuleBasedRouter(testModel(conf.RuleBased))

	templates := message.BuiltinTemplates()

	p, err := r.Predict(templates[0].Content) // MT103 carries :23B:CRED
	suite.Require().NoError(err)
	suite.Equal("Customer Transfer", p.Label)
	suite.Equal(1.0, p.Confidence)

	p, err = r.Predict(templates[1].Content) // MT202 carries :58A:
	suite.Require().NoError(err)
	suite.Equal("Financial Institution Transfer", p.Label)

	p, err = r.Predict(templates[2].Content) // MT950 carries :60F:
	suite.Require().NoError(err)
	suite.Equal("Statement", p.Label)

	p, err = r.Predict("no swift content at all")
	suite.Require().NoError(err)
	suite.Equal("Unknown", p.Label)
	suite.Equal(0.0, p.Confidence)
}

func (suite *routerTestSuite) TestFrequencyPredictsOwnLabel() {
	r := NewFrequencyRouter(testModel(conf.Frequency))

	messages, labels := trainingSet(4)
	metrics, err := r.Train(messages, labels)
	suite.Require().NoError(err)
	suite.Greater(metrics.Accuracy, 0.5)

	p, err := r.Predict(message.BuiltinTemplates()[2].Content) // MT950
	suite.Require().NoError(err)
	suite.Equal("REPORTING", p.Label)
}

func (suite *routerTestSuite) TestFrequencyFallback() {
	r := NewFrequencyRouter(testModel(conf.Frequency))

	messages, labels := trainingSet(2)
	_, err := r.Train(messages, labels)
	suite.Require().NoError(err)

	p, err := r.Predict("nothing recognizable")
	suite.Require().NoError(err)
	suite.Equal(r.DefaultLabel, p.Label)
	suite.Equal(0.5, p.Confidence)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(routerTestSuite))
}
