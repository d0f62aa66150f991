package keystore

import (
	"errors"
	"fmt"

	"github.com/allyabase/sessionless-go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const keyPrefix = "key:"

// LevelDB stores keys in a LevelDB database on disk.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens, creating if necessary, the database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open keystore %q: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) Save(name string, key *sessionless.KeyPair) error {
	if key == nil {
		return fmt.Errorf("cannot save nil key %q", name)
	}
	err := l.db.Put([]byte(keyPrefix+name), []byte(key.PrivateKeyHex()), &opt.WriteOptions{Sync: true})
	if err != nil {
		return fmt.Errorf("failed to save key %q: %w", name, err)
	}
	return nil
}

func (l *LevelDB) Load(name string) (*sessionless.KeyPair, error) {
	v, err := l.db.Get([]byte(keyPrefix+name), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load key %q: %w", name, err)
	}
	return sessionless.ParsePrivateKey(string(v))
}

// Names lists the names of all stored keys.
func (l *LevelDB) Names() ([]string, error) {
	it := l.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer it.Release()

	var names []string
	for it.Next() {
		names = append(names, string(it.Key()[len(keyPrefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate keystore: %w", err)
	}
	return names, nil
}
