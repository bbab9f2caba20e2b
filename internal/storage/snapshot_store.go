// Package storage хранит снимки пулов сущностей в BadgerDB для разбора
// рассинхронизаций после боя.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const keyPrefix = "snapshot:"

var (
	// ErrNotFound - снимка с таким ключом нет
	ErrNotFound = errors.New("snapshot not found")
	// ErrClosed - хранилище закрыто
	ErrClosed = errors.New("snapshot store closed")
)

// SnapshotInfo - ключ и заголовок снимка без содержимого
type SnapshotInfo struct {
	Key     string `json:"key"`
	Session string `json:"session"`
	Frame   uint64 `json:"frame"`
	Size    int    `json:"size"` // сжатый размер, байт
}

// SnapshotStore - хранилище снимков. Значения: JSON, сжатый zstd.
type SnapshotStore struct {
	db      *badger.DB
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	mu      sync.RWMutex
	isReady bool
}

// Open открывает хранилище в каталоге dataPath/snapshots; пустой путь - в памяти
func Open(dataPath string) (*SnapshotStore, error) {
	var opts badger.Options
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataPath, "snapshots"))
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}
	return &SnapshotStore{db: db, enc: enc, dec: dec, isReady: true}, nil
}

// Key строит ключ снимка: кадры одной сессии упорядочены
func Key(session string, frame uint64) string {
	return fmt.Sprintf("%s%s:%010d", keyPrefix, session, frame)
}

func parseKey(key string) (session string, frame uint64, ok bool) {
	rest := strings.TrimPrefix(key, keyPrefix)
	i := strings.LastIndexByte(rest, ':')
	if i < 0 || rest == key {
		return "", 0, false
	}
	frame, err := strconv.ParseUint(rest[i+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:i], frame, true
}

// Close закрывает хранилище
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.dec.Close()
	s.enc.Close()
	return s.db.Close()
}

// Save сохраняет снимок и возвращает его ключ
func (s *SnapshotStore) Save(snap entity.Snapshot) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return "", ErrClosed
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации снимка: %w", err)
	}
	packed := s.enc.EncodeAll(data, nil)

	key := Key(snap.Session, snap.Frame)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), packed)
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return key, nil
}

// Load читает снимок по ключу
func (s *SnapshotStore) Load(key string) (entity.Snapshot, error) {
	var snap entity.Snapshot
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return snap, ErrClosed
	}

	var packed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		packed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return snap, ErrNotFound
	}
	if err != nil {
		return snap, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := s.dec.DecodeAll(packed, nil)
	if err != nil {
		return snap, fmt.Errorf("распаковка снимка %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("разбор снимка %s: %w", key, err)
	}
	return snap, nil
}

// List перечисляет снимки сессии по возрастанию кадра; пустая сессия - все
func (s *SnapshotStore) List(session string) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return nil, ErrClosed
	}

	prefix := []byte(keyPrefix)
	if session != "" {
		prefix = []byte(keyPrefix + session + ":")
	}

	var out []SnapshotInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			sess, frame, ok := parseKey(key)
			if !ok {
				continue
			}
			out = append(out, SnapshotInfo{Key: key, Session: sess, Frame: frame, Size: int(item.ValueSize())})
		}
		return nil
	})
	return out, err
}

// Delete удаляет снимок
func (s *SnapshotStore) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
