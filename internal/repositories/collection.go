package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/models"
)

var ErrMissingID = errors.New("document id is required")

// document - указатель на модель со встроенным models.Document
type document[T any] interface {
	*T
	Meta() *models.Document
}

// collection - общая логика репозиториев одной логической коллекции
type collection[T any, P document[T]] struct {
	store    docstore.Store
	name     string
	notFound error
}

func newCollection[T any, P document[T]](store docstore.Store, name, entity string) collection[T, P] {
	return collection[T, P]{
		store:    store,
		name:     name,
		notFound: fmt.Errorf("%s: %w", entity, docstore.ErrNotFound),
	}
}

func (c *collection[T, P]) create(ctx context.Context, e P) (models.DocResponse, error) {
	meta := e.Meta()
	meta.Collection = c.name
	meta.Rev = ""

	body, err := json.Marshal(e)
	if err != nil {
		return models.DocResponse{}, err
	}

	res, err := c.store.Create(ctx, c.name, body)
	if err != nil {
		return models.DocResponse{}, err
	}
	meta.ID, meta.Rev = res.ID, res.Rev
	return toResponse(res), nil
}

func (c *collection[T, P]) get(ctx context.Context, id string) (P, error) {
	doc, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

func (c *collection[T, P]) replace(ctx context.Context, e P) (models.DocResponse, error) {
	meta := e.Meta()
	if meta.ID == "" {
		return models.DocResponse{}, ErrMissingID
	}
	if _, err := c.load(ctx, meta.ID); err != nil {
		return models.DocResponse{}, err
	}
	meta.Collection = c.name

	body, err := json.Marshal(e)
	if err != nil {
		return models.DocResponse{}, err
	}

	res, err := c.store.Replace(ctx, meta.ID, meta.Rev, body)
	if err != nil {
		return models.DocResponse{}, c.translate(err)
	}
	meta.Rev = res.Rev
	return toResponse(res), nil
}

func (c *collection[T, P]) delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	if _, err := c.load(ctx, id); err != nil {
		return models.DocResponse{}, err
	}
	res, err := c.store.Delete(ctx, id, rev)
	if err != nil {
		return models.DocResponse{}, c.translate(err)
	}
	return toResponse(res), nil
}

func (c *collection[T, P]) find(ctx context.Context, filters ...docstore.Filter) ([]T, error) {
	docs, err := c.store.Find(ctx, c.name, filters...)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		e, err := c.decode(&doc)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, nil
}

// load возвращает документ только если он принадлежит этой коллекции
func (c *collection[T, P]) load(ctx context.Context, id string) (*docstore.Doc, error) {
	if id == "" {
		return nil, c.notFound
	}
	doc, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, c.translate(err)
	}
	if doc.Collection != c.name {
		return nil, c.notFound
	}
	return doc, nil
}

func (c *collection[T, P]) decode(doc *docstore.Doc) (P, error) {
	var e T
	if err := json.Unmarshal(doc.Body, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s document %s: %w", c.name, doc.ID, err)
	}
	p := P(&e)
	meta := p.Meta()
	meta.ID, meta.Rev, meta.Collection = doc.ID, doc.Rev, doc.Collection
	return p, nil
}

func (c *collection[T, P]) translate(err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return c.notFound
	}
	return err
}

func toResponse(res docstore.Result) models.DocResponse {
	return models.DocResponse{OK: res.OK, ID: res.ID, Rev: res.Rev}
}
