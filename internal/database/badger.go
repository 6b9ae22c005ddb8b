package database

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/gofrs/uuid"
	"github.com/hushboard/hushboard/internal/model"
	"github.com/pkg/errors"
)

// BadgerDB holds a connection to a Badger backend.
//
// Uniqueness of usernames and provider subject ids is enforced with index
// keys written in the same transaction as the user record. Badger detects
// conflicting transactions at commit, so two racing writers for the same
// key can never both create a user: the loser retries and observes the
// winner's record.
type BadgerDB struct {
	InMemory bool
	DB       *badger.DB
}

const prefixUser = "user"

func makeUserKey(id string) []byte {
	return makeKey(prefixUser, id)
}

// makeIndexKey builds the unique-index pointer for a username or a
// provider subject id. The value stored under it is the owning user's id.
func makeIndexKey(field, value string) []byte {
	return makeKey(field, value)
}

func makeKey(prefix, id string) []byte {
	return []byte(fmt.Sprintf("%s_%s", prefix, id))
}

// InitializeBadgerDB opens a database with a Badger backend at dir.
// Pass `true` to create an in-memory database (useful in tests, for example).
func InitializeBadgerDB(dir string, inMemory bool) (*BadgerDB, error) {
	if inMemory {
		dir = ""
	}
	opts := badger.DefaultOptions(dir).WithInMemory(inMemory).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger database")
	}
	return &BadgerDB{DB: db, InMemory: inMemory}, nil
}

// Close handles closing all connections to the database.
func (db *BadgerDB) Close() error {
	return db.DB.Close()
}

// update runs fn in a read-write transaction, retrying on commit conflicts.
func (db *BadgerDB) update(fn func(txn *badger.Txn) error) error {
	for {
		err := db.DB.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
	}
}

func putUser(txn *badger.Txn, user *model.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "encoding user")
	}
	return txn.Set(makeUserKey(user.ID), b)
}

func getUser(txn *badger.Txn, id string) (*model.User, error) {
	item, err := txn.Get(makeUserKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var user model.User
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &user)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decoding user")
	}
	return &user, nil
}

// getUserByIndex follows an index pointer to the user record it names.
func getUserByIndex(txn *badger.Txn, key []byte) (*model.User, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return getUser(txn, string(id))
}

// RegisterUser persists a new user, claiming their username atomically.
func (db *BadgerDB) RegisterUser(ctx context.Context, user *model.User) error {
	if err := user.Valid(); err != nil {
		return err
	}
	return db.update(func(txn *badger.Txn) error {
		if user.Username != "" {
			key := makeIndexKey("username", user.Username)
			_, err := txn.Get(key)
			if err == nil {
				return ErrDuplicateUsername
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			if err := txn.Set(key, []byte(user.ID)); err != nil {
				return err
			}
		}
		return putUser(txn, user)
	})
}

// GetUserByID retrieves a user's record based off an id.
func (db *BadgerDB) GetUserByID(ctx context.Context, id string) (user *model.User, err error) {
	err = db.DB.View(func(txn *badger.Txn) error {
		user, err = getUser(txn, id)
		return err
	})
	return
}

// GetUserByUsername retrieves a user's record based off a username.
func (db *BadgerDB) GetUserByUsername(ctx context.Context, username string) (user *model.User, err error) {
	err = db.DB.View(func(txn *badger.Txn) error {
		user, err = getUserByIndex(txn, makeIndexKey("username", username))
		return err
	})
	return
}

// FindOrCreateBySubject returns the user owning the provider subject id,
// creating one when the subject id has never been seen. The index key and
// the user record are written in one transaction; a concurrent creator for
// the same subject id conflicts at commit and the retry finds the winner.
func (db *BadgerDB) FindOrCreateBySubject(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error) {
	if !provider.IsValid() {
		return nil, errors.Errorf("unsupported provider %q", provider)
	}
	if subjectID == "" {
		return nil, errors.New("empty subject id")
	}
	var user *model.User
	err := db.update(func(txn *badger.Txn) error {
		key := makeIndexKey(provider.String(), subjectID)
		existing, err := getUserByIndex(txn, key)
		if err == nil {
			user = existing
			return nil
		}
		if err != ErrNotFound {
			return err
		}
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		user = &model.User{ID: id.String()}
		user.SetSubjectID(provider, subjectID)
		if err := txn.Set(key, []byte(user.ID)); err != nil {
			return err
		}
		return putUser(txn, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateSecret replaces the published secret of the user with the given id.
func (db *BadgerDB) UpdateSecret(ctx context.Context, id, secret string) error {
	return db.update(func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}
		user.Secret = secret
		return putUser(txn, user)
	})
}

// ListUsersWithSecrets returns all users who have published a secret.
func (db *BadgerDB) ListUsersWithSecrets(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := db.DB.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixUser + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var user model.User
			err := item.Value(func(v []byte) error {
				return json.Unmarshal(v, &user)
			})
			if err != nil {
				return errors.Wrap(err, "decoding user")
			}

			if user.HasSecret() {
				u := user
				users = append(users, &u)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
