package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/refdata"
)

type repositoryTestSuite struct {
	suite.Suite
	repo     *repository
	template *message.Template
	run      *message.Run
}

func (suite *repositoryTestSuite) SetupSuite() {
	cfg := conf.Persistence{
		Driver: conf.BadgerDB,
		Name:   "routing",
		InMem:  true,
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.repo = repo
}

func (suite *repositoryTestSuite) SetupTest() {
	suite.repo.Truncate()

	t := message.NewTemplate("MT103", ":20:REF123\n:23B:CRED", "single customer credit transfer", "PAYMENTS")
	suite.NoError(suite.repo.SaveTemplate(t))
	suite.template = t

	r := message.NewRun("baseline", "baseline run")
	suite.NoError(suite.repo.CreateRun(r))
	suite.run = r
}

func (suite *repositoryTestSuite) TestTemplate() {
	t, err := suite.repo.Template(suite.template.ID)
	suite.NoError(err)
	suite.Equal("MT103", t.Type)
	suite.Equal("PAYMENTS", t.ExpectedLabel)
}

func (suite *repositoryTestSuite) TestTemplateByType() {
	t, err := suite.repo.TemplateByType("MT103")
	suite.NoError(err)
	suite.Equal(suite.template.ID.String(), t.ID.String())
}

func (suite *repositoryTestSuite) TestSaveTemplateUpsertsByType() {
	updated := message.NewTemplate("MT103", ":20:NEWREF\n:23B:CRED", "updated", "PAYMENTS")
	suite.NoError(suite.repo.SaveTemplate(updated))

	templates, err := suite.repo.ListTemplates()
	suite.NoError(err)
	suite.Len(templates, 1)
	suite.Equal(":20:NEWREF\n:23B:CRED", templates[0].Content)
	suite.Equal(suite.template.ID.String(), templates[0].ID.String())
}

func (suite *repositoryTestSuite) TestDeleteTemplate() {
	suite.NoError(suite.repo.DeleteTemplate("MT103"))

	_, err := suite.repo.TemplateByType("MT103")
	suite.ErrorIs(err, message.ErrTemplateNotFound)

	err = suite.repo.DeleteTemplate("MT103")
	suite.ErrorIs(err, message.ErrTemplateNotFound)
}

func (suite *repositoryTestSuite) TestRun() {
	r, err := suite.repo.Run(suite.run.ID)
	suite.NoError(err)
	suite.Equal("baseline", r.Name)
}

func (suite *repositoryTestSuite) TestListRuns() {
	second := message.NewRun("followup", "")
	suite.NoError(suite.repo.CreateRun(second))

	runs, err := suite.repo.ListRuns(10)
	suite.NoError(err)
	suite.Len(runs, 2)
	suite.Equal("followup", runs[0].Name)
}

func (suite *repositoryTestSuite) TestListRunsLimit() {
	for i := 0; i < 5; i++ {
		suite.NoError(suite.repo.CreateRun(message.NewRun("extra", "")))
	}

	runs, err := suite.repo.ListRuns(3)
	suite.NoError(err)
	suite.Len(runs, 3)
}

func (suite *repositoryTestSuite) TestMessagesByRun() {
	m1 := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF1")
	m2 := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF2")
	suite.NoError(suite.repo.StoreMessage(m1))
	suite.NoError(suite.repo.StoreMessage(m2))

	messages, err := suite.repo.MessagesByRun(suite.run.ID)
	suite.NoError(err)
	suite.Len(messages, 2)
	suite.Equal(m1.ID.String(), messages[0].ID.String())
}

func (suite *repositoryTestSuite) TestLatestMessages() {
	m1 := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF1")
	m2 := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF2")
	m3 := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF3")
	suite.NoError(suite.repo.StoreMessage(m1))
	suite.NoError(suite.repo.StoreMessage(m2))
	suite.NoError(suite.repo.StoreMessage(m3))

	messages, err := suite.repo.LatestMessages(2)
	suite.NoError(err)
	suite.Require().Len(messages, 2)
	suite.Equal(m3.ID.String(), messages[0].ID.String())
	suite.Equal(m2.ID.String(), messages[1].ID.String())
}

func (suite *repositoryTestSuite) TestOutcomesByRun() {
	m := message.NewMessage(suite.template.ID, suite.run.ID, ":20:REF1")
	suite.NoError(suite.repo.StoreMessage(m))

	suite.NoError(suite.repo.StoreExpected(&message.ExpectedResult{
		MessageID: m.ID,
		Label:     "PAYMENTS",
	}))

	suite.NoError(suite.repo.StoreActual(&message.ActualResult{
		MessageID:    m.ID,
		ModelVersion: "1.0.0",
		Label:        "TREASURY",
		Confidence:   0.72,
		ClassifiedAt: time.Now(),
	}))

	outcomes, err := suite.repo.OutcomesByRun(suite.run.ID)
	suite.NoError(err)
	suite.Len(outcomes, 1)
	suite.Equal("PAYMENTS", outcomes[0].ExpectedLabel)
	suite.Equal("TREASURY", outcomes[0].PredictedLabel)
	suite.Equal(0.72, outcomes[0].Confidence)
}

func (suite *repositoryTestSuite) TestRefData() {
	suite.NoError(suite.repo.Add(refdata.Currencies, "USD"))
	suite.NoError(suite.repo.Add(refdata.Currencies, "EUR"))
	suite.NoError(suite.repo.Add(refdata.Currencies, "USD")) // duplicate is a no-op

	values, err := suite.repo.List(refdata.Currencies)
	suite.NoError(err)
	suite.ElementsMatch([]string{"USD", "EUR"}, values)

	suite.NoError(suite.repo.Delete(refdata.Currencies, "EUR"))
	suite.ErrorIs(suite.repo.Delete(refdata.Currencies, "EUR"), refdata.ErrNoData)
}

func (suite *repositoryTestSuite) TestReplaceAll() {
	suite.NoError(suite.repo.Add(refdata.Currencies, "USD"))

	suite.NoError(suite.repo.ReplaceAll(refdata.Set{
		refdata.Currencies:   {"GBP"},
		refdata.PaymentTypes: {"SALARY"},
	}))

	all, err := suite.repo.All()
	suite.NoError(err)
	suite.Equal([]string{"GBP"}, all[refdata.Currencies])
	suite.Equal([]string{"SALARY"}, all[refdata.PaymentTypes])
}

func (suite *repositoryTestSuite) TearDownSuite() {
	suite.repo.Close()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(repositoryTestSuite))
}
