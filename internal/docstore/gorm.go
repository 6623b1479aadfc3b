package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealvalue_backend/internal/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// documentRow - одна строка таблицы documents
type documentRow struct {
	ID         string         `gorm:"primaryKey;size:64"`
	Rev        string         `gorm:"size:64;not null"`
	Collection string         `gorm:"size:64;not null;index"`
	Body       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"index"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

// GormStore - хранилище документов поверх SQL (postgres, mysql, sqlite)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore создает таблицу documents, если ее нет
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("failed to prepare documents table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(ctx context.Context, collection string, body []byte) (res Result, err error) {
	defer observe("create", collection, time.Now(), &err)

	f, err := decodeBody(body)
	if err != nil {
		return Result{}, err
	}
	id := f.split()
	if id == "" {
		id = newID()
	}
	f["collection"] = collection

	stored, err := f.encode()
	if err != nil {
		return Result{}, err
	}

	row := documentRow{ID: id, Rev: newRev(""), Collection: collection, Body: datatypes.JSON(stored)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Result{}, ErrConflict
		}
		return Result{}, err
	}

	return Result{OK: true, ID: row.ID, Rev: row.Rev}, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (doc *Doc, err error) {
	defer observe("get", "", time.Now(), &err)

	var row documentRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDoc()
}

func (s *GormStore) Replace(ctx context.Context, id, rev string, body []byte) (res Result, err error) {
	defer observe("replace", "", time.Now(), &err)

	f, err := decodeBody(body)
	if err != nil {
		return Result{}, err
	}
	f.split()

	if rev == "" {
		return Result{}, s.missOrConflict(ctx, id)
	}

	updates := map[string]any{
		"rev":        newRev(rev),
		"updated_at": time.Now(),
	}
	if c := f.collection(); c != "" {
		updates["collection"] = c
	} else {
		current, err := s.Get(ctx, id)
		if err != nil {
			return Result{}, err
		}
		f["collection"] = current.Collection
	}
	stored, err := f.encode()
	if err != nil {
		return Result{}, err
	}
	updates["body"] = datatypes.JSON(stored)

	// compare-and-swap по ревизии
	tx := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("id = ? AND rev = ?", id, rev).
		Updates(updates)
	if tx.Error != nil {
		return Result{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return Result{}, s.missOrConflict(ctx, id)
	}

	return Result{OK: true, ID: id, Rev: updates["rev"].(string)}, nil
}

func (s *GormStore) Delete(ctx context.Context, id, rev string) (res Result, err error) {
	defer observe("delete", "", time.Now(), &err)

	if rev == "" {
		return Result{}, s.missOrConflict(ctx, id)
	}

	tx := s.db.WithContext(ctx).Where("id = ? AND rev = ?", id, rev).Delete(&documentRow{})
	if tx.Error != nil {
		return Result{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return Result{}, s.missOrConflict(ctx, id)
	}

	return Result{OK: true, ID: id, Rev: newRev(rev)}, nil
}

func (s *GormStore) Find(ctx context.Context, collection string, filters ...Filter) (docs []Doc, err error) {
	defer observe("find", collection, time.Now(), &err)

	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, flt := range filters {
		if flt.Op == OpEq {
			q = q.Where(datatypes.JSONQuery("body").Equals(flt.Value, flt.Field))
		}
	}

	var rows []documentRow
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	docs = make([]Doc, 0, len(rows))
	for _, row := range rows {
		f, err := decodeBody(row.Body)
		if err != nil {
			return nil, err
		}
		// Ne и точное сравнение типов проверяем здесь
		if !f.match(filters) {
			continue
		}
		doc, err := row.toDoc()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// missOrConflict различает отсутствующий документ и устаревшую ревизию
func (s *GormStore) missOrConflict(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&documentRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *documentRow) toDoc() (*Doc, error) {
	body, err := render(r.ID, r.Rev, r.Body)
	if err != nil {
		return nil, err
	}
	return &Doc{ID: r.ID, Rev: r.Rev, Collection: r.Collection, Body: body}, nil
}

func observe(operation, collection string, start time.Time, err *error) {
	var e error
	if err != nil && *err != nil && !errors.Is(*err, ErrNotFound) {
		e = *err
	}
	logger.StoreLog(operation, collection, time.Since(start), e)
}
