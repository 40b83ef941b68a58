package conf

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type configTestSuite struct {
	suite.Suite
}

func (suite *configTestSuite) TestParseModelType() {
	t, err := ParseModelType("naive_bayes")
	suite.NoError(err)
	suite.Equal(NaiveBayes, t)

	t, err = ParseModelType("rule_based")
	suite.NoError(err)
	suite.Equal(RuleBased, t)

	t, err = ParseModelType("frequency")
	suite.NoError(err)
	suite.Equal(Frequency, t)
}

func (suite *configTestSuite) TestParseModelTypeUnknownFallsBack() {
	t, err := ParseModelType("random_forest")
	suite.NoError(err)
	suite.Equal(Frequency, t)
}

func (suite *configTestSuite) TestParsePersistenceDriver() {
	d, err := ParsePersistenceDriver("badger")
	suite.NoError(err)
	suite.Equal(BadgerDB, d)

	_, err = ParsePersistenceDriver("mongo")
	suite.Error(err)
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(configTestSuite))
}
