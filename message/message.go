package message

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrRunNotFound      = errors.New("run not found")
)

type TemplateID ulid.ULID

func MakeTemplateID() TemplateID {
	return TemplateID(ulid.Make())
}

func ParseTemplateID(id string) (TemplateID, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return TemplateID{}, err
	}
	return TemplateID(parsed), nil
}

func (id TemplateID) String() string {
	return ulid.ULID(id).String()
}

func (id *TemplateID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *TemplateID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseTemplateID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

type MessageID ulid.ULID

func MakeMessageID() MessageID {
	return MessageID(ulid.Make())
}

func ParseMessageID(id string) (MessageID, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return MessageID{}, err
	}
	return MessageID(parsed), nil
}

func (id MessageID) String() string {
	return ulid.ULID(id).String()
}

func (id MessageID) Time() time.Time {
	ms := ulid.ULID(id).Time()
	return ulid.Time(ms)
}

func (id *MessageID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *MessageID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseMessageID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

type RunID ulid.ULID

func MakeRunID() RunID {
	return RunID(ulid.Make())
}

func ParseRunID(id string) (RunID, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return RunID{}, err
	}
	return RunID(parsed), nil
}

func (id RunID) String() string {
	return ulid.ULID(id).String()
}

func (id *RunID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

func (id *RunID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseRunID(s)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Template is the base structure a SWIFT message is generated from.
// Type is the MT identifier ("MT103") and is unique across templates.
type Template struct {
	ID            TemplateID `json:"id"`
	Type          string     `json:"type"`
	Content       string     `json:"content"`
	Description   string     `json:"description"`
	ExpectedLabel string     `json:"expected_label"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewTemplate(mtType, content, description, expectedLabel string) *Template {
	now := time.Now()
	return &Template{
		ID:            MakeTemplateID(),
		Type:          mtType,
		Content:       content,
		Description:   description,
		ExpectedLabel: expectedLabel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Run groups the messages of one harness execution, so that results
// can be traced back to the parameter set that produced them.
type Run struct {
	ID          RunID     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRun(name, description string) *Run {
	return &Run{
		ID:          MakeRunID(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

type Message struct {
	ID         MessageID  `json:"id"`
	TemplateID TemplateID `json:"template_id"`
	RunID      RunID      `json:"run_id"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
}

func NewMessage(templateID TemplateID, runID RunID, text string) *Message {
	return &Message{
		ID:         MakeMessageID(),
		TemplateID: templateID,
		RunID:      runID,
		Text:       text,
		CreatedAt:  time.Now(),
	}
}

type ExpectedResult struct {
	MessageID MessageID `json:"message_id"`
	Label     string    `json:"label"`
}

type ActualResult struct {
	MessageID    MessageID `json:"message_id"`
	ModelVersion string    `json:"model_version"`
	Label        string    `json:"label"`
	Confidence   float64   `json:"confidence"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// Outcome joins a message's expected and predicted labels.
type Outcome struct {
	MessageID      MessageID `json:"message_id"`
	ExpectedLabel  string    `json:"expected_label"`
	PredictedLabel string    `json:"predicted_label"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `json:"model_version"`
}
