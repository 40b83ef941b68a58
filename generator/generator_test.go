package generator

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
)

func testGeneration(rate float64) conf.Generation {
	return conf.Generation{
		Seed:                     42,
		NumMessages:              10,
		MaxVariationsPerTemplate: 5,
		FieldSubstitutionRate:    rate,
		FieldPatterns: map[string]string{
			"reference":            `(:20:|:21:)([A-Z0-9\-]+)`,
			"date_amount_currency": `(:32A:)(\d{6})([A-Z]{3})([\d,]+)`,
			"account_number":       `(/)(\d{8,12})`,
			"bank_code":            `(:5[2-8]A:)([A-Z0-9]{8,11})`,
		},
		Substitutions: map[string][]string{
			"reference":  {"NEWREF123", "NEWREF456"},
			"dates":      {"240115", "240620"},
			"currencies": {"USD", "GBP", "CHF"},
			"amounts":    {"5000,00", "123456,78"},
			"bank_codes": {"CITIUS33", "DEUTDEFF"},
		},
	}
}

type generatorTestSuite struct {
	suite.Suite
	template string
}

func (suite *generatorTestSuite) SetupSuite() {
	suite.template = message.BuiltinTemplates()[0].Content
}

func (suite *generatorTestSuite) TestGenerateVariationsCount() {
	g, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	variations := g.GenerateVariations(suite.template, 3)
	suite.Len(variations, 3)

	for _, v := range variations {
		suite.NotEqual(suite.template, v)
	}
}

func (suite *generatorTestSuite) TestStructurePreserved() {
	g, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	out := g.GenerateMessage(suite.template)
	suite.Contains(out, "{1:")
	suite.Contains(out, "{4:")
	suite.Contains(out, "-}")
	suite.Contains(out, ":23B:CRED")
}

func (suite *generatorTestSuite) TestSubstitutionApplied() {
	g, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	out := g.GenerateMessage(suite.template)

	ref := regexp.MustCompile(`:20:([A-Z0-9]+)`).FindStringSubmatch(out)
	suite.Require().NotNil(ref)
	suite.Contains([]string{"NEWREF123", "NEWREF456"}, ref[1])
}

func (suite *generatorTestSuite) TestZeroRateKeepsTemplate() {
	g, err := NewGenerator(testGeneration(0))
	suite.Require().NoError(err)

	out := g.GenerateMessage(suite.template)
	suite.Equal(suite.template, out)
}

func (suite *generatorTestSuite) TestDeterministicWithFixedSeed() {
	first, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	second, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	suite.Equal(
		first.GenerateVariations(suite.template, 5),
		second.GenerateVariations(suite.template, 5),
	)
}

func (suite *generatorTestSuite) TestRepeatedValueSubstitutedConsistently() {
	g, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	template := ":20:SHAREDREF\n:20:SHAREDREF"
	out := g.GenerateMessage(template)

	lines := strings.Split(out, "\n")
	suite.Require().Len(lines, 2)
	suite.Equal(lines[0], lines[1])
}

func (suite *generatorTestSuite) TestInvalidPatternSkipped() {
	cfg := testGeneration(1.0)
	cfg.FieldPatterns["broken"] = `([unclosed`

	g, err := NewGenerator(cfg)
	suite.Require().NoError(err)

	out := g.GenerateMessage(suite.template)
	suite.NotEqual(suite.template, out)
}

func (suite *generatorTestSuite) TestPatternWithoutGroupsKeepsOriginal() {
	cfg := testGeneration(1.0)
	cfg.FieldPatterns = map[string]string{
		"reference":    `:20:[A-Z0-9]+`,
		"sender_block": `:50K:.*`,
	}

	g, err := NewGenerator(cfg)
	suite.Require().NoError(err)

	suite.NotPanics(func() {
		out := g.GenerateMessage(":20:REF123\n:50K:/12345678")
		suite.Equal(":20:REF123\n:50K:/12345678", out)
	})
}

func (suite *generatorTestSuite) TestNoUsablePatterns() {
	cfg := testGeneration(1.0)
	cfg.FieldPatterns = map[string]string{"broken": `([unclosed`}

	_, err := NewGenerator(cfg)
	suite.Error(err)
}

func (suite *generatorTestSuite) TestPlainTextPassesThrough() {
	g, err := NewGenerator(testGeneration(1.0))
	suite.Require().NoError(err)

	variations := g.GenerateVariations("no swift fields here", 2)
	suite.Len(variations, 2)
	suite.Equal("no swift fields here", variations[0])
}

func TestGeneratorTestSuite(t *testing.T) {
	suite.Run(t, new(generatorTestSuite))
}

type handlerTestSuite struct {
	suite.Suite
	rng *rand.Rand
}

func (suite *handlerTestSuite) SetupTest() {
	suite.rng = rand.New(rand.NewSource(42))
}

func (suite *handlerTestSuite) TestReferenceHandler() {
	h := NewHandler("reference", map[string][]string{
		"reference": {"NEWREF123"},
	}, suite.rng)

	out := h.Substitute([]string{":20:OLDREF789", ":20:", "OLDREF789"})
	suite.Equal(":20:NEWREF123", out)
}

func (suite *handlerTestSuite) TestReferenceHandlerFallback() {
	h := NewHandler("reference", map[string][]string{}, suite.rng)

	out := h.Substitute([]string{":20:OLDREF789", ":20:", "OLDREF789"})
	suite.True(strings.HasPrefix(out, ":20:"))
	suite.Len(out, len(":20:")+8)
}

func (suite *handlerTestSuite) TestDateAmountCurrencyHandler() {
	h := NewHandler("date_amount_currency", map[string][]string{
		"dates":      {"240115"},
		"currencies": {"USD"},
		"amounts":    {"5000,00"},
	}, suite.rng)

	out := h.Substitute([]string{":32A:230101EUR10000,00", ":32A:", "230101", "EUR", "10000,00"})
	suite.Equal(":32A:240115USD5000,00", out)
}

func (suite *handlerTestSuite) TestAccountNumberHandler() {
	h := NewHandler("account_number", map[string][]string{
		"account_numbers": {"99887766"},
	}, suite.rng)

	out := h.Substitute([]string{"/12345678", "/", "12345678"})
	suite.Equal("/99887766", out)
}

func (suite *handlerTestSuite) TestSenderBlockHandler() {
	h := NewHandler("sender_block", map[string][]string{
		"sender_names":     {"ACME GLOBAL LTD"},
		"sender_addresses": {"1 TRADE PLAZA"},
	}, suite.rng)

	out := h.Substitute([]string{
		":50K:OLD NAME\nOLD STREET\n", ":50K:", "OLD NAME", "OLD STREET", "\n",
	})
	suite.Equal(":50K:ACME GLOBAL LTD\n1 TRADE PLAZA\n", out)
}

func (suite *handlerTestSuite) TestDefaultHandlerKeepsLength() {
	h := NewHandler("unknown", nil, suite.rng)

	out := h.Substitute([]string{":71A:SHA"})
	suite.Len(out, len(":71A:SHA"))
	suite.True(strings.HasPrefix(out, ":"))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(handlerTestSuite))
}
