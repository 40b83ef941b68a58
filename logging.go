package routing

import (
	"go.uber.org/zap"

	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/model"
	"github.com/swiftlab/routing/refdata"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			log.With(
				zap.String("service", "routing"),
				zap.String("middleware", "logging"),
			),
			next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) CreateRun(name string, description string) (*message.Run, error) {
	log := mw.log.With(
		zap.String("action", "create_run"),
		zap.String("name", name),
	)

	run, err := mw.next.CreateRun(name, description)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("run created", zap.String("run_id", run.ID.String()))
	return run, nil
}

func (mw *loggingMiddleware) Run(id message.RunID) (*message.Run, error) {
	return mw.next.Run(id)
}

func (mw *loggingMiddleware) ListRuns(limit int) ([]*message.Run, error) {
	return mw.next.ListRuns(limit)
}

func (mw *loggingMiddleware) GenerateMessages(runID message.RunID, numMessages int) ([]*message.Message, error) {
	log := mw.log.With(
		zap.String("action", "generate_messages"),
		zap.String("run_id", runID.String()),
	)

	messages, err := mw.next.GenerateMessages(runID, numMessages)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("messages generated", zap.Int("count", len(messages)))
	return messages, nil
}

func (mw *loggingMiddleware) TrainModel(runID *message.RunID) (*model.Metrics, error) {
	log := mw.log.With(
		zap.String("action", "train_model"),
	)
	if runID != nil {
		log = log.With(zap.String("run_id", runID.String()))
	}

	metrics, err := mw.next.TrainModel(runID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("model trained",
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("f1", metrics.F1),
	)
	return metrics, nil
}

func (mw *loggingMiddleware) TestModel(runID message.RunID) (*TestResult, error) {
	log := mw.log.With(
		zap.String("action", "test_model"),
		zap.String("run_id", runID.String()),
	)

	result, err := mw.next.TestModel(runID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("model tested",
		zap.Int("messages", result.NumMessages),
		zap.Float64("accuracy", result.Report.Metrics.Accuracy),
	)
	return result, nil
}

func (mw *loggingMiddleware) RunReport(runID message.RunID) (*TestResult, error) {
	log := mw.log.With(
		zap.String("action", "run_report"),
		zap.String("run_id", runID.String()),
	)

	result, err := mw.next.RunReport(runID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("report written", zap.String("output_dir", result.OutputDir))
	return result, nil
}

func (mw *loggingMiddleware) CompleteRun(name string, description string, numMessages int, train bool) (*TestResult, error) {
	log := mw.log.With(
		zap.String("action", "complete_run"),
		zap.String("name", name),
	)

	result, err := mw.next.CompleteRun(name, description, numMessages, train)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("run completed",
		zap.String("run_id", result.Run.ID.String()),
		zap.Float64("accuracy", result.Report.Metrics.Accuracy),
	)
	return result, nil
}

func (mw *loggingMiddleware) Route(text string) (*model.Prediction, error) {
	log := mw.log.With(
		zap.String("action", "route"),
	)

	p, err := mw.next.Route(text)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("message routed",
		zap.String("label", p.Label),
		zap.Float64("confidence", p.Confidence),
	)
	return p, nil
}

func (mw *loggingMiddleware) RouteMessage(id message.MessageID) (*RoutedMessage, error) {
	log := mw.log.With(
		zap.String("action", "route_message"),
		zap.String("message_id", id.String()),
	)

	routed, err := mw.next.RouteMessage(id)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("message routed",
		zap.String("label", routed.Prediction.Label),
		zap.Float64("confidence", routed.Prediction.Confidence),
	)
	return routed, nil
}

func (mw *loggingMiddleware) SaveTemplate(mtType string, content string, description string, label string) (*message.Template, error) {
	log := mw.log.With(
		zap.String("action", "save_template"),
		zap.String("type", mtType),
	)

	t, err := mw.next.SaveTemplate(mtType, content, description, label)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("template saved", zap.String("label", t.ExpectedLabel))
	return t, nil
}

func (mw *loggingMiddleware) Template(mtType string) (*message.Template, error) {
	return mw.next.Template(mtType)
}

func (mw *loggingMiddleware) ListTemplates() ([]*message.Template, error) {
	return mw.next.ListTemplates()
}

func (mw *loggingMiddleware) DeleteTemplate(mtType string) error {
	log := mw.log.With(
		zap.String("action", "delete_template"),
		zap.String("type", mtType),
	)

	if err := mw.next.DeleteTemplate(mtType); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("template deleted")
	return nil
}

func (mw *loggingMiddleware) SeedTemplates() error {
	log := mw.log.With(
		zap.String("action", "seed_templates"),
	)

	if err := mw.next.SeedTemplates(); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("builtin templates seeded")
	return nil
}

func (mw *loggingMiddleware) RefData() (refdata.Set, error) {
	return mw.next.RefData()
}

func (mw *loggingMiddleware) SeedRefData() error {
	log := mw.log.With(
		zap.String("action", "seed_refdata"),
	)

	if err := mw.next.SeedRefData(); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("reference data seeded")
	return nil
}

func (mw *loggingMiddleware) Close() error {
	return mw.next.Close()
}
