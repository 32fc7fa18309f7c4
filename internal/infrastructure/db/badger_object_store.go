package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/repository"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

const (
	countryPrefix = "country:"
	travelPrefix  = "travel:"
)

var errCountryInUse = errors.New("country is referenced by a travel")

// BadgerObjectStore implements repository.ObjectStore on top of BadgerDB.
// Records are JSON encoded under "country:<name>" and "travel:<id>"; every call runs in
// one badger transaction and all calls are serialized by mu.
type BadgerObjectStore struct {
	db     *badger.DB
	mu     sync.Mutex
	hook   repository.TravelCreationHook
	logger logger.Logger
}

var _ repository.ObjectStore = (*BadgerObjectStore)(nil)

// NewBadgerObjectStore creates a new BadgerDB object store
func NewBadgerObjectStore(db *badger.DB, log logger.Logger) *BadgerObjectStore {
	return &BadgerObjectStore{
		db:     db,
		logger: logger.Component(log, "object_store"),
	}
}

// SetTravelCreationHook installs the hook run after each committed Travel creation.
func (s *BadgerObjectStore) SetTravelCreationHook(hook repository.TravelCreationHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

func countryKey(name string) []byte {
	return []byte(countryPrefix + name)
}

func travelKey(id uuid.UUID) []byte {
	return []byte(travelPrefix + id.String())
}

func prefixFor(kind entity.Kind) ([]byte, error) {
	switch kind {
	case entity.KindCountry:
		return []byte(countryPrefix), nil
	case entity.KindTravel:
		return []byte(travelPrefix), nil
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %d", apperrors.ErrValidation, kind)
	}
}

// Create inserts the record described by d
func (s *BadgerObjectStore) Create(ctx context.Context, d entity.Descriptor) (entity.Entity, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: nil descriptor", apperrors.ErrValidation)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	switch d := d.(type) {
	case entity.CountryDescriptor:
		return s.createCountry(d)
	case entity.TravelDescriptor:
		return s.createTravel(ctx, d)
	default:
		return nil, fmt.Errorf("%w: unsupported descriptor %T", apperrors.ErrValidation, d)
	}
}

func (s *BadgerObjectStore) createCountry(d entity.CountryDescriptor) (*entity.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	country := d.NewCountry()
	err := s.db.Update(func(txn *badger.Txn) error {
		key := countryKey(country.Name)
		if err := assertAbsent(txn, key); err != nil {
			return err
		}
		return putJSON(txn, key, country)
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("create country %q", country.Name))
	}

	s.logger.Debug("Country created", map[string]interface{}{
		"country":       country.Name,
		"currency_code": country.CurrencyCode,
		"exchange_rate": country.ExchangeRate,
	})

	return country, nil
}

// createTravel resolves the owning country, seeds the travel's rate from it and commits,
// then hands both to the creation hook outside the store lock.
func (s *BadgerObjectStore) createTravel(ctx context.Context, d entity.TravelDescriptor) (*entity.Travel, error) {
	s.mu.Lock()

	var country entity.Country
	var travel *entity.Travel
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, countryKey(d.CountryName), &country); err != nil {
			return err
		}
		key := travelKey(d.ID)
		if err := assertAbsent(txn, key); err != nil {
			return err
		}
		travel = d.NewTravel(&country)
		return putJSON(txn, key, travel)
	})
	hook := s.hook
	s.mu.Unlock()

	if err != nil {
		return nil, classify(err, fmt.Sprintf("create travel in country %q", d.CountryName))
	}

	s.logger.Debug("Travel created", map[string]interface{}{
		"id":            travel.ID.String(),
		"country":       travel.CountryName,
		"exchange_rate": travel.ExchangeRate,
	})

	if hook != nil {
		hook.TravelCreated(ctx, country, *travel)
	}

	return travel, nil
}

// FetchAll returns every record of kind in its natural order
func (s *BadgerObjectStore) FetchAll(ctx context.Context, kind entity.Kind) []entity.Entity {
	records, err := s.FetchWhere(ctx, kind, nil)
	if err != nil {
		s.logger.Error("Failed to fetch records", map[string]interface{}{
			"kind":  kind.String(),
			"error": err.Error(),
		})
		return []entity.Entity{}
	}
	return records
}

// FetchWhere returns the records of kind matched by pred
func (s *BadgerObjectStore) FetchWhere(ctx context.Context, kind entity.Kind, pred entity.Predicate) ([]entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []entity.Entity
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		records, err = scan(txn, kind, pred)
		return err
	})
	if err != nil {
		return nil, classify(err, "fetch "+kind.String())
	}

	sortRecords(records)
	return records, nil
}

// Update overwrites the fields set on p
func (s *BadgerObjectStore) Update(ctx context.Context, p entity.Patch) (entity.Entity, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil patch", apperrors.ErrValidation)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch p := p.(type) {
	case entity.CountryPatch:
		var country entity.Country
		applied := false
		err := s.db.Update(func(txn *badger.Txn) error {
			key := countryKey(p.Name)
			if err := getJSON(txn, key, &country); err != nil {
				return err
			}
			if applied = p.ApplyTo(&country); !applied {
				return nil
			}
			return putJSON(txn, key, &country)
		})
		if err != nil {
			return nil, classify(err, fmt.Sprintf("update country %q", p.Name))
		}
		if !applied {
			s.logger.Debug("Country patch older than stored record; skipped", map[string]interface{}{
				"country":      country.Name,
				"last_updated": country.LastUpdated.Format("2006-01-02"),
			})
		}
		return &country, nil

	case entity.TravelPatch:
		var travel entity.Travel
		err := s.db.Update(func(txn *badger.Txn) error {
			key := travelKey(p.ID)
			if err := getJSON(txn, key, &travel); err != nil {
				return err
			}
			if err := p.ApplyTo(&travel); err != nil {
				return err
			}
			return putJSON(txn, key, &travel)
		})
		if err != nil {
			return nil, classify(err, fmt.Sprintf("update travel %s", p.ID))
		}
		return &travel, nil

	default:
		return nil, fmt.Errorf("%w: unsupported patch %T", apperrors.ErrValidation, p)
	}
}

// Delete removes e and reports whether the removal was committed. A missing record
// or a Country still referenced by a Travel yields false.
func (s *BadgerObjectStore) Delete(ctx context.Context, e entity.Entity) bool {
	var key []byte
	var guard func(txn *badger.Txn) error

	switch e := e.(type) {
	case *entity.Travel:
		if e == nil {
			return false
		}
		key = travelKey(e.ID)
	case *entity.Country:
		if e == nil {
			return false
		}
		key = countryKey(e.Name)
		guard = func(txn *badger.Txn) error {
			refs, err := scan(txn, entity.KindTravel, entity.TravelsIn(e.Name))
			if err != nil {
				return err
			}
			if len(refs) > 0 {
				return fmt.Errorf("%w: %d travel(s)", errCountryInUse, len(refs))
			}
			return nil
		}
	default:
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(txn); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
	if err != nil {
		s.logger.Warn("Delete not committed", map[string]interface{}{
			"key":   string(key),
			"error": err.Error(),
		})
		return false
	}

	return true
}

// Count returns how many records of kind match pred
func (s *BadgerObjectStore) Count(ctx context.Context, kind entity.Kind, pred entity.Predicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.View(func(txn *badger.Txn) error {
		records, err := scan(txn, kind, pred)
		n = len(records)
		return err
	})
	if err != nil {
		return 0, classify(err, "count "+kind.String())
	}
	return n, nil
}

func scan(txn *badger.Txn, kind entity.Kind, pred entity.Predicate) ([]entity.Entity, error) {
	prefix, err := prefixFor(kind)
	if err != nil {
		return nil, err
	}

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var out []entity.Entity
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		record, err := decode(kind, it.Item())
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(record) {
			out = append(out, record)
		}
	}
	return out, nil
}

func decode(kind entity.Kind, item *badger.Item) (entity.Entity, error) {
	var record entity.Entity
	switch kind {
	case entity.KindCountry:
		record = &entity.Country{}
	case entity.KindTravel:
		record = &entity.Travel{}
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %d", apperrors.ErrValidation, kind)
	}

	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, record)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", item.Key(), err)
	}
	return record, nil
}

func sortRecords(records []entity.Entity) {
	sort.SliceStable(records, func(i, j int) bool {
		switch a := records[i].(type) {
		case *entity.Country:
			b := records[j].(*entity.Country)
			return a.Name < b.Name
		case *entity.Travel:
			b := records[j].(*entity.Travel)
			if !a.StartDate.Equal(b.StartDate) {
				return a.StartDate.Before(b.StartDate)
			}
			return strings.Compare(a.ID.String(), b.ID.String()) < 0
		default:
			return false
		}
	})
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func putJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

func assertAbsent(txn *badger.Txn, key []byte) error {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, key)
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil
	default:
		return err
	}
}

// classify maps a badger transaction error to the store's error kinds.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, op)
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrValidation):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%w: %s: %w", apperrors.ErrPersistence, op, err)
	}
}
