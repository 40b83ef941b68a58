package kv

import (
	"encoding/json"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/swiftlab/routing/conf"
	"github.com/swiftlab/routing/message"
	"github.com/swiftlab/routing/refdata"
)

// Key layout:
//
//	template:<id>            -> Template JSON
//	template_type:<type>     -> template id
//	run:<id>                 -> Run JSON
//	message:<id>             -> Message JSON
//	msgrun:<run>:<id>        -> message id (index)
//	expected:<message>       -> ExpectedResult JSON
//	actual:<message>         -> ActualResult JSON
//	refdata:<category>:<val> -> value
const (
	prefixTemplate     = "template:"
	prefixTemplateType = "template_type:"
	prefixRun          = "run:"
	prefixMessage      = "message:"
	prefixMessageRun   = "msgrun:"
	prefixExpected     = "expected:"
	prefixActual       = "actual:"
	prefixRefData      = "refdata:"
)

type repository struct {
	db *badger.DB
}

func NewRepository(cfg conf.Persistence) (*repository, error) {
	var opts badger.Options
	if cfg.InMem {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Host + "/" + cfg.Name)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}

	repo := new(repository)
	repo.db = db
	return repo, nil
}

func (repo *repository) set(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return txn.Set([]byte(key), data)
}

func (repo *repository) get(key string, v any) error {
	return repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(data []byte) error {
			return json.Unmarshal(data, v)
		})
	})
}

func (repo *repository) SaveTemplate(t *message.Template) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		// An existing type keeps its row identity.
		item, err := txn.Get([]byte(prefixTemplateType + t.Type))
		if err == nil {
			err = item.Value(func(data []byte) error {
				id, err := message.ParseTemplateID(string(data))
				if err != nil {
					return err
				}

				t.ID = id
				return nil
			})
			if err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := repo.set(txn, prefixTemplate+t.ID.String(), t); err != nil {
			return err
		}

		return txn.Set([]byte(prefixTemplateType+t.Type), []byte(t.ID.String()))
	})
}

func (repo *repository) DeleteTemplate(mtType string) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixTemplateType + mtType))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return message.ErrTemplateNotFound
			}

			return err
		}

		var id string
		if err := item.Value(func(data []byte) error {
			id = string(data)
			return nil
		}); err != nil {
			return err
		}

		if err := txn.Delete([]byte(prefixTemplate + id)); err != nil {
			return err
		}

		return txn.Delete([]byte(prefixTemplateType + mtType))
	})
}

func (repo *repository) Template(id message.TemplateID) (*message.Template, error) {
	var t message.Template
	if err := repo.get(prefixTemplate+id.String(), &t); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, message.ErrTemplateNotFound
		}

		return nil, err
	}

	return &t, nil
}

func (repo *repository) TemplateByType(mtType string) (*message.Template, error) {
	var id string
	err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixTemplateType + mtType))
		if err != nil {
			return err
		}

		return item.Value(func(data []byte) error {
			id = string(data)
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, message.ErrTemplateNotFound
		}

		return nil, err
	}

	templateID, err := message.ParseTemplateID(id)
	if err != nil {
		return nil, err
	}

	return repo.Template(templateID)
}

func (repo *repository) ListTemplates() ([]*message.Template, error) {
	templates := make([]*message.Template, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixTemplate)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t message.Template
			err := it.Item().Value(func(data []byte) error {
				return json.Unmarshal(data, &t)
			})
			if err != nil {
				return err
			}

			templates = append(templates, &t)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return templates, nil
}

func (repo *repository) CreateRun(r *message.Run) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		return repo.set(txn, prefixRun+r.ID.String(), r)
	})
}

func (repo *repository) Run(id message.RunID) (*message.Run, error) {
	var r message.Run
	if err := repo.get(prefixRun+id.String(), &r); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, message.ErrRunNotFound
		}

		return nil, err
	}

	return &r, nil
}

func (repo *repository) ListRuns(limit int) ([]*message.Run, error) {
	runs := make([]*message.Run, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// ULID keys sort by creation time, so a reverse scan yields
		// the most recent runs first.
		prefix := []byte(prefixRun)
		seek := append([]byte(prefixRun), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(runs) >= limit {
				break
			}

			var r message.Run
			err := it.Item().Value(func(data []byte) error {
				return json.Unmarshal(data, &r)
			})
			if err != nil {
				return err
			}

			runs = append(runs, &r)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return runs, nil
}

func (repo *repository) StoreMessage(m *message.Message) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		if err := repo.set(txn, prefixMessage+m.ID.String(), m); err != nil {
			return err
		}

		indexKey := prefixMessageRun + m.RunID.String() + ":" + m.ID.String()
		return txn.Set([]byte(indexKey), []byte(m.ID.String()))
	})
}

func (repo *repository) Message(id message.MessageID) (*message.Message, error) {
	var m message.Message
	if err := repo.get(prefixMessage+id.String(), &m); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, message.ErrMessageNotFound
		}

		return nil, err
	}

	return &m, nil
}

func (repo *repository) MessagesByRun(id message.RunID) ([]*message.Message, error) {
	ids := make([]string, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixMessageRun + id.String() + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(data []byte) error {
				ids = append(ids, string(data))
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	messages := make([]*message.Message, 0, len(ids))
	for _, raw := range ids {
		messageID, err := message.ParseMessageID(raw)
		if err != nil {
			return nil, err
		}

		m, err := repo.Message(messageID)
		if err != nil {
			return nil, err
		}

		messages = append(messages, m)
	}

	return messages, nil
}

// LatestMessages returns the most recently generated messages across
// all runs, newest first. ULID keys sort by creation time, so a
// reverse scan yields them in order.
func (repo *repository) LatestMessages(limit int) ([]*message.Message, error) {
	messages := make([]*message.Message, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixMessage)
		seek := append([]byte(prefixMessage), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) >= limit {
				break
			}

			var m message.Message
			err := it.Item().Value(func(data []byte) error {
				return json.Unmarshal(data, &m)
			})
			if err != nil {
				return err
			}

			messages = append(messages, &m)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (repo *repository) StoreExpected(r *message.ExpectedResult) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		return repo.set(txn, prefixExpected+r.MessageID.String(), r)
	})
}

func (repo *repository) StoreActual(r *message.ActualResult) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		return repo.set(txn, prefixActual+r.MessageID.String(), r)
	})
}

func (repo *repository) Expected(id message.MessageID) (*message.ExpectedResult, error) {
	var r message.ExpectedResult
	if err := repo.get(prefixExpected+id.String(), &r); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, message.ErrMessageNotFound
		}

		return nil, err
	}

	return &r, nil
}

func (repo *repository) OutcomesByRun(id message.RunID) ([]*message.Outcome, error) {
	messages, err := repo.MessagesByRun(id)
	if err != nil {
		return nil, err
	}

	outcomes := make([]*message.Outcome, 0, len(messages))
	for _, m := range messages {
		expected, err := repo.Expected(m.ID)
		if err != nil {
			if errors.Is(err, message.ErrMessageNotFound) {
				continue
			}

			return nil, err
		}

		var actual message.ActualResult
		if err := repo.get(prefixActual+m.ID.String(), &actual); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}

			return nil, err
		}

		outcomes = append(outcomes, &message.Outcome{
			MessageID:      m.ID,
			ExpectedLabel:  expected.Label,
			PredictedLabel: actual.Label,
			Confidence:     actual.Confidence,
			ModelVersion:   actual.ModelVersion,
		})
	}

	return outcomes, nil
}

func (repo *repository) Add(category, value string) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		key := prefixRefData + category + ":" + value
		return txn.Set([]byte(key), []byte(value))
	})
}

func (repo *repository) Delete(category, value string) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixRefData + category + ":" + value)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return refdata.ErrNoData
			}

			return err
		}

		return txn.Delete(key)
	})
}

func (repo *repository) ReplaceAll(s refdata.Set) error {
	if err := repo.dropPrefix(prefixRefData); err != nil {
		return err
	}

	return repo.db.Update(func(txn *badger.Txn) error {
		for category, values := range s {
			for _, value := range values {
				key := prefixRefData + category + ":" + value
				if err := txn.Set([]byte(key), []byte(value)); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (repo *repository) List(category string) ([]string, error) {
	values := make([]string, 0)

	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRefData + category + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(data []byte) error {
				values = append(values, string(data))
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return values, nil
}

func (repo *repository) All() (refdata.Set, error) {
	s := make(refdata.Set)

	err := repo.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRefData)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			rest := strings.TrimPrefix(key, prefixRefData)
			idx := strings.Index(rest, ":")
			if idx < 0 {
				continue
			}

			category := rest[:idx]
			err := it.Item().Value(func(data []byte) error {
				s[category] = append(s[category], string(data))
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s, nil
}

func (repo *repository) dropPrefix(prefix string) error {
	return repo.db.DropPrefix([]byte(prefix))
}

func (repo *repository) Truncate() error {
	prefixes := []string{
		prefixTemplate, prefixTemplateType, prefixRun, prefixMessage,
		prefixMessageRun, prefixExpected, prefixActual, prefixRefData,
	}

	for _, prefix := range prefixes {
		if err := repo.dropPrefix(prefix); err != nil {
			return err
		}
	}

	return nil
}

func (repo *repository) Close() error {
	return repo.db.Close()
}
