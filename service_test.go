package routing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/model"
	"github.com/swiftlab/routing/persistence"
)

// recordingPublisher captures events so the suite can assert the run
// lifecycle was announced.
type recordingPublisher struct {
	names []string
}

func (p *recordingPublisher) Publish(runID, name string, payload map[string]any) error {
	p.names = append(p.names, name)
	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(runID, name string, payload map[string]any) error {
	return errors.New("event bus unavailable")
}

func (failingPublisher) Close() error {
	return nil
}

func testConfig(dir string) *conf.Config {
	return &conf.Config{
		Name: "routing-test",
		Persistence: conf.Persistence{
			Driver: conf.BadgerDB,
			Name:   "routing",
			InMem:  true,
		},
		Paths: conf.Paths{
			Output: filepath.Join(dir, "output"),
			Models: filepath.Join(dir, "models"),
		},
		Generation: conf.Generation{
			Seed:                     42,
			NumMessages:              12,
			MaxVariationsPerTemplate: 5,
			FieldSubstitutionRate:    0.5,
			Variate:                  true,
			FieldPatterns: map[string]string{
				"reference":            `(:20:|:21:)([A-Z0-9\-]+)`,
				"date_amount_currency": `(:32A:)(\d{6})([A-Z]{3})([\d,]+)`,
				"account_number":       `(/)(\d{8,12})`,
				"bank_code":            `(:5[2-8]A:)([A-Z0-9]{8,11})`,
			},
		},
		Model: conf.Model{
			Type:                conf.NaiveBayes,
			Version:             "1.0.0",
			PredictionThreshold: 0.5,
			Alpha:               1.0,
			Features: conf.FeatureExtraction{
				Vectorizer:  "tfidf",
				MaxFeatures: 1000,
				NGramMin:    1,
				NGramMax:    3,
			},
		},
		Evaluation: conf.Evaluation{
			Metrics:         []string{"accuracy", "precision", "recall", "f1"},
			OutputFormats:   []string{"csv", "json"},
			ConfusionMatrix: true,
		},
	}
}

type serviceTestSuite struct {
	suite.Suite
	svc    Service
	events *recordingPublisher
}

func (suite *serviceTestSuite) SetupTest() {
	cfg := testConfig(suite.T().TempDir())

	repo, err := persistence.NewRepository(cfg.Persistence)
	suite.Require().NoError(err)

	suite.events = &recordingPublisher{}

	svc, err := NewService(repo, suite.events, cfg)
	suite.Require().NoError(err)

	suite.Require().NoError(svc.SeedTemplates())
	suite.svc = svc
}

func (suite *serviceTestSuite) TearDownTest() {
	suite.svc.Close()
}

func (suite *serviceTestSuite) TestSeededTemplates() {
	templates, err := suite.svc.ListTemplates()
	suite.Require().NoError(err)
	suite.Len(templates, 3)

	t, err := suite.svc.Template("MT103")
	suite.Require().NoError(err)
	suite.Equal("PAYMENTS", t.ExpectedLabel)
}

func (suite *serviceTestSuite) TestTemplateLifecycle() {
	t, err := suite.svc.SaveTemplate("MT700", ":27:1/1\n:40A:IRREVOCABLE", "documentary credit", "TRADE")
	suite.Require().NoError(err)
	suite.Equal("TRADE", t.ExpectedLabel)

	suite.Require().NoError(suite.svc.DeleteTemplate("MT700"))

	_, err = suite.svc.Template("MT700")
	suite.ErrorIs(err, message.ErrTemplateNotFound)
}

func (suite *serviceTestSuite) TestGenerateMessages() {
	run, err := suite.svc.CreateRun("generation", "")
	suite.Require().NoError(err)

	messages, err := suite.svc.GenerateMessages(run.ID, 12)
	suite.Require().NoError(err)
	suite.Len(messages, 12)

	for _, m := range messages {
		suite.Equal(run.ID, m.RunID)
		suite.NotEmpty(m.Text)
	}

	suite.Contains(suite.events.names, "created")
	suite.Contains(suite.events.names, "messages_generated")
}

func (suite *serviceTestSuite) TestCompleteRun() {
	result, err := suite.svc.CompleteRun("end to end", "full workflow", 12, true)
	suite.Require().NoError(err)

	suite.Equal(12, result.NumMessages)
	suite.Equal(12, result.Report.Metrics.TotalCount)
	suite.GreaterOrEqual(result.Report.Metrics.Accuracy, 0.9)

	_, err = os.Stat(filepath.Join(result.OutputDir, "metrics.json"))
	suite.NoError(err)

	suite.Contains(suite.events.names, "model_trained")
	suite.Contains(suite.events.names, "tested")
	suite.Contains(suite.events.names, "evaluated")
	suite.Contains(suite.events.names, "completed")
}

func (suite *serviceTestSuite) TestTrainWithoutRun() {
	metrics, err := suite.svc.TrainModel(nil)
	suite.Require().NoError(err)
	suite.Greater(metrics.Accuracy, 0.5)

	p, err := suite.svc.Route(message.BuiltinTemplates()[0].Content)
	suite.Require().NoError(err)
	suite.Equal("PAYMENTS", p.Label)
}

func (suite *serviceTestSuite) TestRouteStoredMessage() {
	run, err := suite.svc.CreateRun("stored", "")
	suite.Require().NoError(err)

	messages, err := suite.svc.GenerateMessages(run.ID, 6)
	suite.Require().NoError(err)

	_, err = suite.svc.TrainModel(&run.ID)
	suite.Require().NoError(err)

	routed, err := suite.svc.RouteMessage(messages[0].ID)
	suite.Require().NoError(err)
	suite.Equal(messages[0].ID, routed.Message.ID)
	suite.Equal(routed.Expected, routed.Prediction.Label)
}

func (suite *serviceTestSuite) TestTestModelWithoutMessages() {
	run, err := suite.svc.CreateRun("empty", "")
	suite.Require().NoError(err)

	_, err = suite.svc.TestModel(run.ID)
	suite.ErrorIs(err, ErrNoMessages)
}

func (suite *serviceTestSuite) TestRunReportWithoutResults() {
	run, err := suite.svc.CreateRun("untested", "")
	suite.Require().NoError(err)

	_, err = suite.svc.GenerateMessages(run.ID, 6)
	suite.Require().NoError(err)

	_, err = suite.svc.RunReport(run.ID)
	suite.ErrorIs(err, ErrNoTestResults)
}

func (suite *serviceTestSuite) TestRouteUntrained() {
	_, err := suite.svc.Route(":20:REF")
	suite.ErrorIs(err, model.ErrNotTrained)
}

func (suite *serviceTestSuite) TestListRuns() {
	first, err := suite.svc.CreateRun("first", "")
	suite.Require().NoError(err)

	time.Sleep(2 * time.Millisecond)

	second, err := suite.svc.CreateRun("second", "")
	suite.Require().NoError(err)

	runs, err := suite.svc.ListRuns(10)
	suite.Require().NoError(err)
	suite.Require().Len(runs, 2)
	suite.Equal(second.ID, runs[0].ID)
	suite.Equal(first.ID, runs[1].ID)
}

func (suite *serviceTestSuite) TestPublishFailureDoesNotFailOperation() {
	cfg := testConfig(suite.T().TempDir())

	repo, err := persistence.NewRepository(cfg.Persistence)
	suite.Require().NoError(err)

	svc, err := NewService(repo, failingPublisher{}, cfg)
	suite.Require().NoError(err)
	defer svc.Close()

	suite.Require().NoError(svc.SeedTemplates())

	run, err := svc.CreateRun("flaky bus", "")
	suite.Require().NoError(err)

	messages, err := svc.GenerateMessages(run.ID, 6)
	suite.Require().NoError(err)
	suite.Len(messages, 6)
}

func (suite *serviceTestSuite) TestRefData() {
	suite.Require().NoError(suite.svc.SeedRefData())

	data, err := suite.svc.RefData()
	suite.Require().NoError(err)
	suite.NotEmpty(data["currencies"])
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(serviceTestSuite))
}
