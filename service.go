package routing

import (
	"errors"
	"math/rand"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/evaluation"
	"github.com/swiftlab/routing/events"
	"github.com/swiftlab/routing/generator"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/model"
	"github.com/swiftlab/routing/persistence"
	"github.com/swiftlab/routing/refdata"
)

var (
	ErrNoTemplates   = errors.New("no templates available")
	ErrNoMessages    = errors.New("no messages found for run")
	ErrNoTestResults = errors.New("no test results found for run")
)

// RoutedMessage pairs a stored message with the model's prediction
// and, when recorded, the expected label.
type RoutedMessage struct {
	Message    *message.Message  `json:"message"`
	Prediction *model.Prediction `json:"prediction"`
	Expected   string            `json:"expected,omitempty"`
}

// TestResult aggregates a run's outcome: how many messages were
// routed, the evaluation report, and where the report files live.
type TestResult struct {
	Run         *message.Run       `json:"run"`
	NumMessages int                `json:"num_messages"`
	Report      *evaluation.Report `json:"report"`
	OutputDir   string             `json:"output_dir"`
}

type Service interface {
	CreateRun(name string, description string) (*message.Run, error)
	Run(id message.RunID) (*message.Run, error)
	ListRuns(limit int) ([]*message.Run, error)
	GenerateMessages(runID message.RunID, numMessages int) ([]*message.Message, error)
	TrainModel(runID *message.RunID) (*model.Metrics, error)
	TestModel(runID message.RunID) (*TestResult, error)
	RunReport(runID message.RunID) (*TestResult, error)
	CompleteRun(name string, description string, numMessages int, train bool) (*TestResult, error)
	Route(text string) (*model.Prediction, error)
	RouteMessage(id message.MessageID) (*RoutedMessage, error)

	SaveTemplate(mtType string, content string, description string, label string) (*message.Template, error)
	Template(mtType string) (*message.Template, error)
	ListTemplates() ([]*message.Template, error)
	DeleteTemplate(mtType string) error
	SeedTemplates() error

	RefData() (refdata.Set, error)
	SeedRefData() error

	Close() error
}

type ServiceMiddleware func(Service) Service

func NewService(repo persistence.Repository, pub events.Publisher, cfg *conf.Config) (Service, error) {
	gen, err := generator.NewGenerator(cfg.Generation)
	if err != nil {
		return nil, err
	}

	svc := &service{
		cfg:       cfg,
		repo:      repo,
		generator: gen,
		evaluator: evaluation.NewEvaluator(cfg.Evaluation),
		events:    pub,
	}

	if cfg.Generation.Variate {
		data, err := repo.All()
		if err != nil {
			return nil, err
		}

		if len(data) == 0 {
			data = refdata.Builtin()
		}

		rng := rand.New(rand.NewSource(cfg.Generation.Seed))
		variator, err := generator.NewVariator(data, rng)
		if err != nil {
			return nil, err
		}

		svc.variator = variator
	}

	router, err := model.Load(cfg.Paths.Models, cfg.Model)
	if err != nil {
		router = model.New(cfg.Model)
	}
	svc.router = router

	return svc, nil
}

type service struct {
	cfg       *conf.Config
	repo      persistence.Repository
	generator *generator.Generator
	variator  *generator.Variator
	router    model.Router
	evaluator *evaluation.Evaluator
	events    events.Publisher
}

// publish is fire and forget: a lost event must not fail the
// operation that produced it.
func (svc *service) publish(runID string, name string, payload map[string]any) {
	if err := svc.events.Publish(runID, name, payload); err != nil {
		zap.L().Warn("publish event",
			zap.String("event", name),
			zap.Error(err),
		)
	}
}

func (svc *service) CreateRun(name string, description string) (*message.Run, error) {
	run := message.NewRun(name, description)
	if err := svc.repo.CreateRun(run); err != nil {
		return nil, err
	}

	svc.publish(run.ID.String(), events.RunCreated, map[string]any{
		"name": run.Name,
	})

	return run, nil
}

func (svc *service) Run(id message.RunID) (*message.Run, error) {
	return svc.repo.Run(id)
}

func (svc *service) ListRuns(limit int) ([]*message.Run, error) {
	return svc.repo.ListRuns(limit)
}

// GenerateMessages spreads numMessages evenly across the stored
// templates, applies variation when enabled, and records the expected
// routing label alongside each message.
func (svc *service) GenerateMessages(runID message.RunID, numMessages int) ([]*message.Message, error) {
	run, err := svc.repo.Run(runID)
	if err != nil {
		return nil, err
	}

	templates, err := svc.repo.ListTemplates()
	if err != nil {
		return nil, err
	}

	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	if numMessages <= 0 {
		numMessages = svc.cfg.Generation.NumMessages
	}

	perTemplate := numMessages / len(templates)
	if perTemplate < 1 {
		perTemplate = 1
	}

	messages := make([]*message.Message, 0, numMessages)
	for _, t := range templates {
		for _, text := range svc.variations(t.Content, perTemplate) {
			m := message.NewMessage(t.ID, run.ID, text)
			if err := svc.repo.StoreMessage(m); err != nil {
				return nil, err
			}

			expected := &message.ExpectedResult{
				MessageID: m.ID,
				Label:     t.ExpectedLabel,
			}
			if err := svc.repo.StoreExpected(expected); err != nil {
				return nil, err
			}

			messages = append(messages, m)
		}
	}

	svc.publish(run.ID.String(), events.MessagesGenerated, map[string]any{
		"count": len(messages),
	})

	return messages, nil
}

func (svc *service) variations(template string, count int) []string {
	base := template
	if svc.variator != nil {
		base = svc.variator.AddVariations(template)
	}

	return svc.generator.GenerateVariations(base, count)
}

// TrainModel fits the router either on a run's stored messages or,
// without a run, on fresh variations of every template. The trained
// model is snapshotted for later runs.
func (svc *service) TrainModel(runID *message.RunID) (*model.Metrics, error) {
	var texts, labels []string

	if runID != nil {
		messages, err := svc.repo.MessagesByRun(*runID)
		if err != nil {
			return nil, err
		}

		for _, m := range messages {
			expected, err := svc.repo.Expected(m.ID)
			if err != nil {
				continue
			}

			texts = append(texts, m.Text)
			labels = append(labels, expected.Label)
		}
	} else {
		templates, err := svc.repo.ListTemplates()
		if err != nil {
			return nil, err
		}

		for _, t := range templates {
			for _, text := range svc.variations(t.Content, 20) {
				texts = append(texts, text)
				labels = append(labels, t.ExpectedLabel)
			}
		}
	}

	if len(texts) == 0 {
		return nil, ErrNoMessages
	}

	metrics, err := svc.router.Train(texts, labels)
	if err != nil {
		return nil, err
	}

	path, err := model.Save(svc.router, svc.cfg.Paths.Models)
	if err != nil {
		return nil, err
	}

	zap.L().Info("model snapshot saved", zap.String("path", path))

	if runID != nil {
		svc.publish(runID.String(), events.ModelTrained, map[string]any{
			"model_version": svc.router.Version(),
			"accuracy":      metrics.Accuracy,
		})
	}

	return metrics, nil
}

// TestModel routes every message of the run, stores the predictions,
// and returns the evaluated report.
func (svc *service) TestModel(runID message.RunID) (*TestResult, error) {
	messages, err := svc.repo.MessagesByRun(runID)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	for _, m := range messages {
		p, err := svc.router.Predict(m.Text)
		if err != nil {
			return nil, err
		}

		actual := &message.ActualResult{
			MessageID:    m.ID,
			ModelVersion: svc.router.Version(),
			Label:        p.Label,
			Confidence:   p.Confidence,
			ClassifiedAt: time.Now(),
		}
		if err := svc.repo.StoreActual(actual); err != nil {
			return nil, err
		}
	}

	svc.publish(runID.String(), events.RunTested, map[string]any{
		"count": len(messages),
	})

	return svc.RunReport(runID)
}

// RunReport evaluates the stored outcomes of a run and writes the
// report files into a fresh output directory.
func (svc *service) RunReport(runID message.RunID) (*TestResult, error) {
	run, err := svc.repo.Run(runID)
	if err != nil {
		return nil, err
	}

	outcomes, err := svc.repo.OutcomesByRun(runID)
	if err != nil {
		return nil, err
	}

	if len(outcomes) == 0 {
		return nil, ErrNoTestResults
	}

	trueLabels := make([]string, len(outcomes))
	predicted := make([]string, len(outcomes))
	confidences := make([]float64, len(outcomes))
	for i, o := range outcomes {
		trueLabels[i] = o.ExpectedLabel
		predicted[i] = o.PredictedLabel
		confidences[i] = o.Confidence
	}

	outputDir := filepath.Join(
		svc.cfg.Paths.Output,
		"test_"+runID.String()+"_"+time.Now().Format("20060102_150405"),
	)

	report, err := svc.evaluator.Evaluate(trueLabels, predicted, confidences, outputDir, "")
	if err != nil {
		return nil, err
	}

	svc.publish(runID.String(), events.RunEvaluated, map[string]any{
		"accuracy": report.Metrics.Accuracy,
		"total":    report.Metrics.TotalCount,
	})

	return &TestResult{
		Run:         run,
		NumMessages: len(outcomes),
		Report:      report,
		OutputDir:   outputDir,
	}, nil
}

// CompleteRun executes the whole workflow: create a run, generate
// messages, optionally train, then test and evaluate.
func (svc *service) CompleteRun(name string, description string, numMessages int, train bool) (*TestResult, error) {
	run, err := svc.CreateRun(name, description)
	if err != nil {
		return nil, err
	}

	if _, err := svc.GenerateMessages(run.ID, numMessages); err != nil {
		return nil, err
	}

	if train {
		if _, err := svc.TrainModel(&run.ID); err != nil {
			return nil, err
		}
	}

	result, err := svc.TestModel(run.ID)
	if err != nil {
		return nil, err
	}

	svc.publish(run.ID.String(), events.RunCompleted, map[string]any{
		"accuracy": result.Report.Metrics.Accuracy,
	})

	return result, nil
}

func (svc *service) Route(text string) (*model.Prediction, error) {
	return svc.router.Predict(text)
}

// RouteMessage routes a stored message and reports the expected label
// alongside the prediction when one was recorded.
func (svc *service) RouteMessage(id message.MessageID) (*RoutedMessage, error) {
	m, err := svc.repo.Message(id)
	if err != nil {
		return nil, err
	}

	p, err := svc.router.Predict(m.Text)
	if err != nil {
		return nil, err
	}

	routed := &RoutedMessage{
		Message:    m,
		Prediction: p,
	}

	if expected, err := svc.repo.Expected(id); err == nil {
		routed.Expected = expected.Label
	}

	return routed, nil
}

func (svc *service) SaveTemplate(mtType string, content string, description string, label string) (*message.Template, error) {
	t := message.NewTemplate(mtType, content, description, label)
	if err := svc.repo.SaveTemplate(t); err != nil {
		return nil, err
	}

	return svc.repo.TemplateByType(mtType)
}

func (svc *service) Template(mtType string) (*message.Template, error) {
	return svc.repo.TemplateByType(mtType)
}

func (svc *service) ListTemplates() ([]*message.Template, error) {
	return svc.repo.ListTemplates()
}

func (svc *service) DeleteTemplate(mtType string) error {
	return svc.repo.DeleteTemplate(mtType)
}

// SeedTemplates stores the builtin MT templates, keeping any template
// a previous seed already created.
func (svc *service) SeedTemplates() error {
	for _, t := range message.BuiltinTemplates() {
		if err := svc.repo.SaveTemplate(t); err != nil {
			return err
		}
	}

	return nil
}

func (svc *service) RefData() (refdata.Set, error) {
	return svc.repo.All()
}

func (svc *service) SeedRefData() error {
	return svc.repo.ReplaceAll(refdata.Builtin())
}

func (svc *service) Close() error {
	if err := svc.events.Close(); err != nil {
		zap.L().Warn("close event publisher", zap.Error(err))
	}

	return svc.repo.Close()
}
