package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"go.uber.org/zap"
)

// InMemoryPath opens a badger store without touching the filesystem
const InMemoryPath = ":memory:"

// Key layout:
//
//	company:<location>\x00<industry>\x00<radius>\x00<rank>\x00<place_id> -> JSON row
//	companyidx:<location>\x00<industry>\x00<radius>\x00<place_id>          -> primary key
//
// radius and rank are zero padded so iteration order is radius then rank.
const (
	companyPrefix      = "company:"
	companyIndexPrefix = "companyidx:"
	keySep             = "\x00"
)

// BadgerCompanyStore implements CompanyStore on an embedded badger database
type BadgerCompanyStore struct {
	db  *badger.DB
	log *zap.SugaredLogger
}

type badgerLogger struct {
	*zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.Warnf(msg, items...)
}

// badger is chatty at info level
func (l *badgerLogger) Infof(msg string, items ...any) {
	l.Debugf(msg, items...)
}

// badgerRow is the stored form of a company; models.Company hides its key
// fields from JSON
type badgerRow struct {
	PlaceID        string    `json:"place_id"`
	Name           string    `json:"name"`
	Contact        string    `json:"contact"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	Industry       string    `json:"industry"`
	SearchLocation string    `json:"search_location"`
	RadiusKm       int       `json:"radius_km"`
	Rank           int       `json:"rank"`
	CreatedAt      time.Time `json:"created_at"`
}

// OpenBadgerCompanyStore opens (creating if needed) a badger directory.
// Pass InMemoryPath or "" for an in-memory store.
func OpenBadgerCompanyStore(path string) (*BadgerCompanyStore, error) {
	log := logger.GetLogger("storage.badger")

	var opts badger.Options
	if path == "" || path == InMemoryPath {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLogger{log}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerCompanyStore{db: db, log: log}, nil
}

func (s *BadgerCompanyStore) FindByQuery(ctx context.Context, query models.SearchQuery) ([]models.Company, error) {
	prefix := []byte(companyPrefix + query.Location + keySep + query.Industry + keySep)

	var companies []models.Company
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: false})
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			parts := strings.Split(string(item.Key()[len(prefix):]), keySep)
			if len(parts) != 3 {
				continue
			}
			radius, err := strconv.Atoi(parts[0])
			if err != nil || radius < query.RadiusKm {
				continue
			}
			var row badgerRow
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				s.log.Warnf("Skipping unreadable row %q: %v", item.Key(), err)
				continue
			}
			companies = append(companies, row.company())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}
	return companies, nil
}

func (s *BadgerCompanyStore) InsertMany(ctx context.Context, records []models.Company) (int, error) {
	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	now := time.Now()
	inserted := 0
	for _, rec := range validRows(records) {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		idxKey := indexKey(rec)
		if _, err := txn.Get(idxKey); err == nil {
			continue
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return inserted, fmt.Errorf("failed to check company %s: %w", rec.PlaceID, err)
		}

		row := newBadgerRow(rec, now)
		val, err := json.Marshal(row)
		if err != nil {
			s.log.Warnf("Skipping company %s: %v", rec.PlaceID, err)
			continue
		}
		key := primaryKey(rec)

		if err := setPair(txn, key, val, idxKey); errors.Is(err, badger.ErrTxnTooBig) {
			if err := txn.Commit(); err != nil {
				return inserted, fmt.Errorf("failed to commit companies: %w", err)
			}
			txn = s.db.NewTransaction(true)
			if err := setPair(txn, key, val, idxKey); err != nil {
				return inserted, fmt.Errorf("failed to write company %s: %w", rec.PlaceID, err)
			}
		} else if err != nil {
			return inserted, fmt.Errorf("failed to write company %s: %w", rec.PlaceID, err)
		}
		inserted++
	}

	if err := txn.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit companies: %w", err)
	}
	return inserted, nil
}

func (s *BadgerCompanyStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(companyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: false})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

func (s *BadgerCompanyStore) DeleteByPlaceIDs(ctx context.Context, placeIDs []string) (int64, error) {
	if len(placeIDs) == 0 {
		return 0, nil
	}
	wanted := make(map[string]struct{}, len(placeIDs))
	for _, id := range placeIDs {
		wanted[id] = struct{}{}
	}

	var deleted int64
	err := s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(companyPrefix)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: false})
		var victims [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			parts := strings.Split(string(key[len(prefix):]), keySep)
			if len(parts) != 5 {
				continue
			}
			if _, ok := wanted[parts[4]]; ok {
				victims = append(victims, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range victims {
			parts := strings.Split(string(key[len(prefix):]), keySep)
			idx := []byte(companyIndexPrefix + strings.Join([]string{parts[0], parts[1], parts[2], parts[4]}, keySep))
			if err := txn.Delete(key); err != nil {
				return err
			}
			if err := txn.Delete(idx); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete companies: %w", err)
	}
	return deleted, nil
}

func (s *BadgerCompanyStore) Clear(ctx context.Context) (int64, error) {
	var keys [][]byte
	var cleared int64
	err := s.db.View(func(txn *badger.Txn) error {
		for _, prefix := range [][]byte{[]byte(companyPrefix), []byte(companyIndexPrefix)} {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: false})
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
				if string(prefix) == companyPrefix {
					cleared++
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan companies: %w", err)
	}

	wb := s.db.NewWriteBatch()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return 0, fmt.Errorf("failed to clear companies: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("failed to clear companies: %w", err)
	}
	return cleared, nil
}

func (s *BadgerCompanyStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return nil
}

func (s *BadgerCompanyStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

func setPair(txn *badger.Txn, key, val, idxKey []byte) error {
	if err := txn.Set(key, val); err != nil {
		return err
	}
	return txn.Set(idxKey, key)
}

func primaryKey(c models.Company) []byte {
	return []byte(companyPrefix + strings.Join([]string{
		c.SearchLocation, c.Industry, pad(c.RadiusKm), pad(c.Rank), c.PlaceID,
	}, keySep))
}

func indexKey(c models.Company) []byte {
	return []byte(companyIndexPrefix + strings.Join([]string{
		c.SearchLocation, c.Industry, pad(c.RadiusKm), c.PlaceID,
	}, keySep))
}

func pad(n int) string {
	return fmt.Sprintf("%010d", n)
}

func newBadgerRow(c models.Company, now time.Time) badgerRow {
	return badgerRow{
		PlaceID:        c.PlaceID,
		Name:           c.Name,
		Contact:        c.Contact,
		Location:       c.Location,
		Website:        c.Website,
		Industry:       c.Industry,
		SearchLocation: c.SearchLocation,
		RadiusKm:       c.RadiusKm,
		Rank:           c.Rank,
		CreatedAt:      now,
	}
}

func (r badgerRow) company() models.Company {
	return models.Company{
		PlaceID:        r.PlaceID,
		Name:           r.Name,
		Contact:        r.Contact,
		Location:       r.Location,
		Website:        r.Website,
		Industry:       r.Industry,
		SearchLocation: r.SearchLocation,
		RadiusKm:       r.RadiusKm,
		Rank:           r.Rank,
		CreatedAt:      r.CreatedAt,
	}
}
