package message

type Repository interface {
	// Command

	SaveTemplate(t *Template) error
	DeleteTemplate(mtType string) error
	CreateRun(r *Run) error
	StoreMessage(m *Message) error
	StoreExpected(r *ExpectedResult) error
	StoreActual(r *ActualResult) error

	// Query

	Template(id TemplateID) (*Template, error)
	TemplateByType(mtType string) (*Template, error)
	ListTemplates() ([]*Template, error)
	Run(id RunID) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	Message(id MessageID) (*Message, error)
	MessagesByRun(id RunID) ([]*Message, error)
	LatestMessages(limit int) ([]*Message, error)
	Expected(id MessageID) (*ExpectedResult, error)
	OutcomesByRun(id RunID) ([]*Outcome, error)

	Truncate() error
	Close() error
}
