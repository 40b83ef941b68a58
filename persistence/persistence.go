package persistence

import (
	"errors"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/persistence/db"
	"github.com/swiftlab/routing/persistence/kv"
	"github.com/swiftlab/routing/refdata"
)

// Repository bundles the message store and the reference data store,
// which live in the same backing database.
type Repository interface {
	message.Repository
	refdata.Repository
}

func NewRepository(cfg conf.Persistence) (Repository, error) {
	switch cfg.Driver {
	case conf.SQLite, conf.Postgres:
		return db.NewRepository(cfg)
	case conf.BadgerDB:
		return kv.NewRepository(cfg)
	default:
		return nil, errors.New("driver not supported")
	}
}
