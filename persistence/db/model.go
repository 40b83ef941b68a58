package db

import (
	"time"

	"github.com/swiftlab/routing/message"
)

// Data models kept separate from the domain structs; reconstitute()
// converts back after a query.

type Template struct {
	ID            string `gorm:"primaryKey"`
	Type          string `gorm:"uniqueIndex;not null"`
	Content       string `gorm:"type:text;not null"`
	Description   string
	ExpectedLabel string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewTemplate(t *message.Template) *Template {
	return &Template{
		ID:            t.ID.String(),
		Type:          t.Type,
		Content:       t.Content,
		Description:   t.Description,
		ExpectedLabel: t.ExpectedLabel,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (t *Template) reconstitute() (*message.Template, error) {
	id, err := message.ParseTemplateID(t.ID)
	if err != nil {
		return nil, err
	}

	return &message.Template{
		ID:            id,
		Type:          t.Type,
		Content:       t.Content,
		Description:   t.Description,
		ExpectedLabel: t.ExpectedLabel,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}, nil
}

type Run struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	CreatedAt   time.Time
}

func NewRun(r *message.Run) *Run {
	return &Run{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func (r *Run) reconstitute() (*message.Run, error) {
	id, err := message.ParseRunID(r.ID)
	if err != nil {
		return nil, err
	}

	return &message.Run{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}, nil
}

type Message struct {
	ID         string `gorm:"primaryKey"`
	TemplateID string `gorm:"index;not null"`
	RunID      string `gorm:"index"`
	Text       string `gorm:"type:text"`
	CreatedAt  time.Time
}

func NewMessage(m *message.Message) *Message {
	return &Message{
		ID:         m.ID.String(),
		TemplateID: m.TemplateID.String(),
		RunID:      m.RunID.String(),
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

func (m *Message) reconstitute() (*message.Message, error) {
	id, err := message.ParseMessageID(m.ID)
	if err != nil {
		return nil, err
	}

	templateID, err := message.ParseTemplateID(m.TemplateID)
	if err != nil {
		return nil, err
	}

	runID, err := message.ParseRunID(m.RunID)
	if err != nil {
		return nil, err
	}

	return &message.Message{
		ID:         id,
		TemplateID: templateID,
		RunID:      runID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}, nil
}

type ExpectedResult struct {
	MessageID string `gorm:"primaryKey"`
	Label     string
}

type ActualResult struct {
	MessageID    string `gorm:"primaryKey"`
	ModelVersion string
	Label        string
	Confidence   float64
	ClassifiedAt time.Time
}

type RefEntry struct {
	ID       uint   `gorm:"primaryKey"`
	Category string `gorm:"index;not null"`
	Value    string `gorm:"not null"`
}
