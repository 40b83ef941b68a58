package conf

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	Path string
	Port int

	global *Config
)

func G() *Config {
	if global == nil {
		panic("configuration not loaded")
	}

	return global
}

func ReplaceGlobals(cfg *Config) {
	global = cfg
}

func LoadEnv(cli *cli.Context) error {
	path := cli.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = homeDir + "/.swiftlab/routing"
	}

	Path = path
	Port = cli.Int("port")
	return nil
}

func LoadConfig() (*Config, error) {
	f, err := os.Open(Path + "/config.yaml")
	if err != nil {
		f, err = os.Open(Path + "/config.example.yaml")
		if err != nil {
			return nil, err
		}
	}
	defer f.Close()

	r := NewEnvExpandedReader(f)

	var cfg *Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

type Config struct {
	Name        string      `yaml:"name"`
	Persistence Persistence `yaml:"persistence"`
	Paths       Paths       `yaml:"paths"`
	Generation  Generation  `yaml:"generation"`
	Model       Model       `yaml:"model"`
	Evaluation  Evaluation  `yaml:"evaluation"`
	EventBus    EventBus    `yaml:"eventBus"`
}

type PersistenceDriver int

const (
	SQLite PersistenceDriver = iota
	Postgres
	BadgerDB
)

func ParsePersistenceDriver(driver string) (PersistenceDriver, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "postgres":
		return Postgres, nil
	case "badger":
		return BadgerDB, nil
	default:
		return -1, errors.New("driver not supported")
	}
}

func (driver PersistenceDriver) String() string {
	switch driver {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	case BadgerDB:
		return "badger"
	default:
		return "unknown"
	}
}

type Persistence struct {
	Driver   PersistenceDriver
	Name     string
	Host     string
	Port     int
	Username string
	Password string
	SSLMode  string
	InMem    bool
}

func (p *Persistence) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Driver   string `yaml:"driver"`
		Name     string `yaml:"name"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		InMem    bool   `yaml:"inmem"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	driver, err := ParsePersistenceDriver(raw.Driver)
	if err != nil {
		return err
	}

	p.Driver = driver
	p.Name = raw.Name

	p.Host = raw.Host
	if raw.Host == "" {
		p.Host = Path
	}

	p.Port = raw.Port
	p.Username = raw.Username
	p.Password = raw.Password
	p.SSLMode = raw.SSLMode
	p.InMem = raw.InMem

	return nil
}

type Paths struct {
	Output string `yaml:"output"`
	Models string `yaml:"models"`
}

func (p *Paths) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Output string `yaml:"output"`
		Models string `yaml:"models"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	p.Output = raw.Output
	if raw.Output == "" {
		p.Output = Path + "/output"
	}

	p.Models = raw.Models
	if raw.Models == "" {
		p.Models = Path + "/models"
	}

	return nil
}

type Generation struct {
	Seed                     int64               `yaml:"seed"`
	NumMessages              int                 `yaml:"numMessages"`
	MaxVariationsPerTemplate int                 `yaml:"maxVariationsPerTemplate"`
	FieldSubstitutionRate    float64             `yaml:"fieldSubstitutionRate"`
	PerturbationDegree       float64             `yaml:"perturbationDegree"`
	Variate                  bool                `yaml:"variate"`
	FieldPatterns            map[string]string   `yaml:"fieldPatterns"`
	Substitutions            map[string][]string `yaml:"substitutions"`
}

func (g *Generation) UnmarshalYAML(value *yaml.Node) error {
	type rawGeneration Generation

	var raw rawGeneration
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Seed == 0 {
		raw.Seed = 42
	}

	if raw.NumMessages <= 0 {
		raw.NumMessages = 100
	}

	if raw.MaxVariationsPerTemplate <= 0 {
		raw.MaxVariationsPerTemplate = 10
	}

	if raw.FieldSubstitutionRate <= 0 {
		raw.FieldSubstitutionRate = 0.3
	}

	if raw.PerturbationDegree <= 0 {
		raw.PerturbationDegree = 0.2
	}

	*g = Generation(raw)
	return nil
}

type ModelType int

const (
	NaiveBayes ModelType = iota
	RuleBased
	Frequency
)

// ParseModelType maps a config string to a model type. Unknown types
// fall back to the frequency router instead of failing the load.
func ParseModelType(model string) (ModelType, error) {
	switch model {
	case "naive_bayes":
		return NaiveBayes, nil
	case "rule_based":
		return RuleBased, nil
	case "frequency":
		return Frequency, nil
	default:
		zap.L().Warn("unknown model type, falling back to frequency",
			zap.String("type", model),
		)
		return Frequency, nil
	}
}

func (t ModelType) String() string {
	switch t {
	case NaiveBayes:
		return "naive_bayes"
	case RuleBased:
		return "rule_based"
	case Frequency:
		return "frequency"
	default:
		return "unknown"
	}
}

type Model struct {
	Type                ModelType
	Version             string
	PredictionThreshold float64
	Alpha               float64
	Features            FeatureExtraction
}

func (m *Model) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type                string            `yaml:"type"`
		Version             string            `yaml:"version"`
		PredictionThreshold float64           `yaml:"predictionThreshold"`
		Alpha               float64           `yaml:"alpha"`
		Features            FeatureExtraction `yaml:"features"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Type == "" {
		raw.Type = "naive_bayes"
	}

	t, err := ParseModelType(raw.Type)
	if err != nil {
		return err
	}

	m.Type = t

	m.Version = raw.Version
	if raw.Version == "" {
		m.Version = "1.0.0"
	}

	m.PredictionThreshold = raw.PredictionThreshold
	if raw.PredictionThreshold <= 0 {
		m.PredictionThreshold = 0.5
	}

	m.Alpha = raw.Alpha
	if raw.Alpha <= 0 {
		m.Alpha = 1.0
	}

	m.Features = raw.Features
	return nil
}

type FeatureExtraction struct {
	Vectorizer  string `yaml:"vectorizer"`
	MaxFeatures int    `yaml:"maxFeatures"`
	NGramMin    int    `yaml:"ngramMin"`
	NGramMax    int    `yaml:"ngramMax"`
}

func (f *FeatureExtraction) UnmarshalYAML(value *yaml.Node) error {
	type rawFeatures FeatureExtraction

	var raw rawFeatures
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Vectorizer == "" {
		raw.Vectorizer = "tfidf"
	}

	if raw.MaxFeatures <= 0 {
		raw.MaxFeatures = 1000
	}

	if raw.NGramMin <= 0 {
		raw.NGramMin = 1
	}

	if raw.NGramMax < raw.NGramMin {
		raw.NGramMax = 3
	}

	*f = FeatureExtraction(raw)
	return nil
}

type Evaluation struct {
	Metrics         []string `yaml:"metrics"`
	OutputFormats   []string `yaml:"outputFormats"`
	ConfusionMatrix bool     `yaml:"confusionMatrix"`
}

func (e *Evaluation) UnmarshalYAML(value *yaml.Node) error {
	type rawEvaluation Evaluation

	var raw rawEvaluation
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if len(raw.Metrics) == 0 {
		raw.Metrics = []string{"accuracy", "precision", "recall", "f1"}
	}

	if len(raw.OutputFormats) == 0 {
		raw.OutputFormats = []string{"csv", "json"}
	}

	*e = Evaluation(raw)
	return nil
}

type EventBusProvider int

const (
	Nop EventBusProvider = iota
	NATS
)

func ParseEventBusProvider(provider string) (EventBusProvider, error) {
	switch provider {
	case "", "nop":
		return Nop, nil
	case "nats":
		return NATS, nil
	default:
		return -1, errors.New("provider not supported")
	}
}

func (p EventBusProvider) String() string {
	switch p {
	case Nop:
		return "nop"
	case NATS:
		return "nats"
	default:
		return ""
	}
}

type EventBus struct {
	Provider EventBusProvider
	URL      string
	Subject  string
}

func (e *EventBus) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Provider string `yaml:"provider"`
		URL      string `yaml:"url"`
		Subject  string `yaml:"subject"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	provider, err := ParseEventBusProvider(raw.Provider)
	if err != nil {
		return err
	}

	e.Provider = provider
	e.URL = raw.URL

	e.Subject = raw.Subject
	if raw.Subject == "" {
		e.Subject = "swift"
	}

	return nil
}
