package main

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type appTestSuite struct {
	suite.Suite
}

func (suite *appTestSuite) TestServeCommand() {
	app := newApp()

	cmd := app.Command("serve")
	suite.Require().NotNil(cmd)
	suite.NotNil(cmd.Action)
}

func (suite *appTestSuite) TestCommands() {
	app := newApp()

	for _, name := range []string{
		"version", "run", "generate", "train", "test",
		"report", "route", "templates", "refdata", "serve",
	} {
		suite.NotNil(app.Command(name), name)
	}

	// Bare invocation serves the HTTP transport.
	suite.NotNil(app.Action)
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(appTestSuite))
}
