// Package docstore хранит JSON-документы нескольких логических коллекций
// в одном физическом хранилище. Каждое изменение проверяет ревизию документа.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrConflict = errors.New("document update conflict")
)

// Doc - документ вместе с метаданными
type Doc struct {
	ID         string
	Rev        string
	Collection string
	Body       json.RawMessage // включает _id, _rev и collection
}

// Result - ответ на create/replace/delete
type Result struct {
	OK  bool
	ID  string
	Rev string
}

type Op string

const (
	OpEq Op = "eq"
	OpNe Op = "ne"
)

// Filter - условие по полю верхнего уровня
type Filter struct {
	Field string
	Op    Op
	Value string
}

func Eq(field, value string) Filter { return Filter{Field: field, Op: OpEq, Value: value} }
func Ne(field, value string) Filter { return Filter{Field: field, Op: OpNe, Value: value} }

type Store interface {
	// Create сохраняет новый документ. Id берется из поля _id или генерируется.
	Create(ctx context.Context, collection string, body []byte) (Result, error)

	// Get возвращает документ по id или ErrNotFound.
	Get(ctx context.Context, id string) (*Doc, error)

	// Replace полностью заменяет документ. rev должна совпадать с текущей,
	// иначе ErrConflict. Пустая rev тоже ErrConflict.
	Replace(ctx context.Context, id, rev string, body []byte) (Result, error)

	// Delete удаляет документ с той же проверкой ревизии, что и Replace.
	Delete(ctx context.Context, id, rev string) (Result, error)

	// Find возвращает документы коллекции в порядке создания.
	Find(ctx context.Context, collection string, filters ...Filter) ([]Doc, error)

	Close() error
}

// newRev - ревизия следующего поколения: "<gen>-<32 hex>"
func newRev(prev string) string {
	gen := 0
	if i := strings.IndexByte(prev, '-'); i > 0 {
		gen, _ = strconv.Atoi(prev[:i])
	}
	return fmt.Sprintf("%d-%s", gen+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// fields - тело документа без служебных полей _id и _rev
type fields map[string]any

func decodeBody(body []byte) (fields, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var f fields
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("document body must be a JSON object: %w", err)
	}
	if f == nil {
		return nil, errors.New("document body must be a JSON object")
	}
	return f, nil
}

// split отделяет _id от тела и убирает _rev
func (f fields) split() (id string) {
	if v, ok := f["_id"].(string); ok {
		id = v
	}
	delete(f, "_id")
	delete(f, "_rev")
	return id
}

func (f fields) collection() string {
	v, _ := f["collection"].(string)
	return v
}

func (f fields) encode() ([]byte, error) {
	return json.Marshal(map[string]any(f))
}

// render собирает тело для клиента вместе с _id и _rev
func render(id, rev string, stored []byte) (json.RawMessage, error) {
	f, err := decodeBody(stored)
	if err != nil {
		return nil, err
	}
	f["_id"] = id
	f["_rev"] = rev
	return json.Marshal(map[string]any(f))
}

// match проверяет фильтры по полям верхнего уровня
func (f fields) match(filters []Filter) bool {
	for _, flt := range filters {
		actual, ok := f[flt.Field]
		equal := ok && fmt.Sprint(actual) == flt.Value
		switch flt.Op {
		case OpEq:
			if !equal {
				return false
			}
		case OpNe:
			if equal {
				return false
			}
		}
	}
	return true
}
