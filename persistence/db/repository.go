package db

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/refdata"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(cfg conf.Persistence) (*repository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case conf.Postgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name)
		if cfg.SSLMode != "" {
			dsn += " sslmode=" + cfg.SSLMode
		}

		dialector = postgres.Open(dsn)

	default:
		filename := cfg.Host + "/" + cfg.Name + ".db"
		if cfg.InMem {
			filename = "file::memory:?cache=shared"
		}

		dialector = sqlite.Open(filename)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := db.AutoMigrate(
		&Template{}, &Run{}, &Message{},
		&ExpectedResult{}, &ActualResult{}, &RefEntry{},
	); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}

	repo := new(repository)
	repo.db = db
	return repo, nil
}

func (repo *repository) SaveTemplate(t *message.Template) error {
	template := NewTemplate(t)

	return repo.db.Transaction(func(tx *gorm.DB) error {
		var existing Template
		err := tx.Take(&existing, "type = ?", template.Type).Error
		if err == nil {
			// Keep the original row identity for an existing type.
			template.ID = existing.ID
			template.CreatedAt = existing.CreatedAt
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Save(template).Error
	})
}

func (repo *repository) DeleteTemplate(mtType string) error {
	result := repo.db.Delete(&Template{}, "type = ?", mtType)
	if err := result.Error; err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return message.ErrTemplateNotFound
	}

	return nil
}

func (repo *repository) Template(id message.TemplateID) (*message.Template, error) {
	var t *Template

	result := repo.db.Take(&t, "id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, message.ErrTemplateNotFound
		}

		return nil, err
	}

	return t.reconstitute()
}

func (repo *repository) TemplateByType(mtType string) (*message.Template, error) {
	var t *Template

	result := repo.db.Take(&t, "type = ?", mtType)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, message.ErrTemplateNotFound
		}

		return nil, err
	}

	return t.reconstitute()
}

func (repo *repository) ListTemplates() ([]*message.Template, error) {
	var templates []*Template

	result := repo.db.Order("type").Find(&templates)
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*message.Template, 0, len(templates))
	for _, t := range templates {
		template, err := t.reconstitute()
		if err != nil {
			return nil, err
		}

		results = append(results, template)
	}

	return results, nil
}

func (repo *repository) CreateRun(r *message.Run) error {
	return repo.db.Create(NewRun(r)).Error
}

func (repo *repository) Run(id message.RunID) (*message.Run, error) {
	var r *Run

	result := repo.db.Take(&r, "id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, message.ErrRunNotFound
		}

		return nil, err
	}

	return r.reconstitute()
}

func (repo *repository) ListRuns(limit int) ([]*message.Run, error) {
	var runs []*Run

	result := repo.db.Order("id desc").Limit(limit).Find(&runs)
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*message.Run, 0, len(runs))
	for _, r := range runs {
		run, err := r.reconstitute()
		if err != nil {
			return nil, err
		}

		results = append(results, run)
	}

	return results, nil
}

func (repo *repository) StoreMessage(m *message.Message) error {
	return repo.db.Create(NewMessage(m)).Error
}

func (repo *repository) Message(id message.MessageID) (*message.Message, error) {
	var m *Message

	result := repo.db.Take(&m, "id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, message.ErrMessageNotFound
		}

		return nil, err
	}

	return m.reconstitute()
}

func (repo *repository) MessagesByRun(id message.RunID) ([]*message.Message, error) {
	var messages []*Message

	result := repo.db.Order("id").Find(&messages, "run_id = ?", id.String())
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*message.Message, 0, len(messages))
	for _, m := range messages {
		msg, err := m.reconstitute()
		if err != nil {
			return nil, err
		}

		results = append(results, msg)
	}

	return results, nil
}

// LatestMessages returns the most recently generated messages across
// all runs, newest first. ULID ids order by creation time.
func (repo *repository) LatestMessages(limit int) ([]*message.Message, error) {
	var messages []*Message

	result := repo.db.Order("id desc").Limit(limit).Find(&messages)
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*message.Message, 0, len(messages))
	for _, m := range messages {
		msg, err := m.reconstitute()
		if err != nil {
			return nil, err
		}

		results = append(results, msg)
	}

	return results, nil
}

func (repo *repository) StoreExpected(r *message.ExpectedResult) error {
	expected := &ExpectedResult{
		MessageID: r.MessageID.String(),
		Label:     r.Label,
	}

	return repo.db.Save(expected).Error
}

func (repo *repository) StoreActual(r *message.ActualResult) error {
	actual := &ActualResult{
		MessageID:    r.MessageID.String(),
		ModelVersion: r.ModelVersion,
		Label:        r.Label,
		Confidence:   r.Confidence,
		ClassifiedAt: r.ClassifiedAt,
	}

	return repo.db.Save(actual).Error
}

func (repo *repository) Expected(id message.MessageID) (*message.ExpectedResult, error) {
	var expected *ExpectedResult

	result := repo.db.Take(&expected, "message_id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, message.ErrMessageNotFound
		}

		return nil, err
	}

	messageID, err := message.ParseMessageID(expected.MessageID)
	if err != nil {
		return nil, err
	}

	return &message.ExpectedResult{
		MessageID: messageID,
		Label:     expected.Label,
	}, nil
}

func (repo *repository) OutcomesByRun(id message.RunID) ([]*message.Outcome, error) {
	var rows []struct {
		MessageID      string
		ExpectedLabel  string
		PredictedLabel string
		Confidence     float64
		ModelVersion   string
	}

	err := repo.db.Table("messages").
		Select(`messages.id as message_id,
			expected_results.label as expected_label,
			actual_results.label as predicted_label,
			actual_results.confidence,
			actual_results.model_version`).
		Joins("INNER JOIN expected_results ON expected_results.message_id = messages.id").
		Joins("INNER JOIN actual_results ON actual_results.message_id = messages.id").
		Where("messages.run_id = ?", id.String()).
		Order("messages.id").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	outcomes := make([]*message.Outcome, 0, len(rows))
	for _, row := range rows {
		messageID, err := message.ParseMessageID(row.MessageID)
		if err != nil {
			return nil, err
		}

		outcomes = append(outcomes, &message.Outcome{
			MessageID:      messageID,
			ExpectedLabel:  row.ExpectedLabel,
			PredictedLabel: row.PredictedLabel,
			Confidence:     row.Confidence,
			ModelVersion:   row.ModelVersion,
		})
	}

	return outcomes, nil
}

func (repo *repository) Add(category, value string) error {
	var count int64
	err := repo.db.Model(&RefEntry{}).
		Where("category = ? AND value = ?", category, value).
		Count(&count).Error

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	return repo.db.Create(&RefEntry{Category: category, Value: value}).Error
}

func (repo *repository) Delete(category, value string) error {
	result := repo.db.Delete(&RefEntry{}, "category = ? AND value = ?", category, value)
	if err := result.Error; err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return refdata.ErrNoData
	}

	return nil
}

func (repo *repository) ReplaceAll(s refdata.Set) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ref_entries").Error; err != nil {
			return err
		}

		for category, values := range s {
			for _, value := range values {
				entry := &RefEntry{Category: category, Value: value}
				if err := tx.Create(entry).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (repo *repository) List(category string) ([]string, error) {
	var values []string

	err := repo.db.Model(&RefEntry{}).
		Where("category = ?", category).
		Order("id").
		Pluck("value", &values).Error

	if err != nil {
		return nil, err
	}

	return values, nil
}

func (repo *repository) All() (refdata.Set, error) {
	var entries []*RefEntry

	result := repo.db.Order("id").Find(&entries)
	if err := result.Error; err != nil {
		return nil, err
	}

	s := make(refdata.Set)
	for _, entry := range entries {
		s[entry.Category] = append(s[entry.Category], entry.Value)
	}

	return s, nil
}

func (repo *repository) Truncate() error {
	tables := []string{
		"actual_results", "expected_results", "messages",
		"runs", "templates", "ref_entries",
	}

	for _, table := range tables {
		if err := repo.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	return nil
}

func (repo *repository) Close() error {
	return nil
}
