package docstore

import (
	"context"
	"sort"
	"sync"
)

type memoryDoc struct {
	seq        int64
	rev        string
	collection string
	body       []byte
}

// MemoryStore - хранилище в памяти процесса
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	docs map[string]*memoryDoc
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*memoryDoc)}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, body []byte) (Result, error) {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; exists {
		return Result{}, ErrConflict
	}
	s.seq++
	rev := newRev("")
	s.docs[id] = &memoryDoc{seq: s.seq, rev: rev, collection: collection, body: stored}

	return Result{OK: true, ID: id, Rev: rev}, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Doc, error) {
	s.mu.RLock()
	d, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	body, err := render(id, d.rev, d.body)
	if err != nil {
		return nil, err
	}
	return &Doc{ID: id, Rev: d.rev, Collection: d.collection, Body: body}, nil
}

func (s *MemoryStore) Replace(ctx context.Context, id, rev string, body []byte) (Result, error) {
	f, err := decodeBody(body)
	if err != nil {
		return Result{}, err
	}
	f.split()

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	if rev == "" || rev != d.rev {
		return Result{}, ErrConflict
	}

	if f.collection() == "" {
		f["collection"] = d.collection
	}
	stored, err := f.encode()
	if err != nil {
		return Result{}, err
	}

	d.rev = newRev(rev)
	d.collection = f.collection()
	d.body = stored

	return Result{OK: true, ID: id, Rev: d.rev}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id, rev string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	if rev == "" || rev != d.rev {
		return Result{}, ErrConflict
	}
	delete(s.docs, id)

	return Result{OK: true, ID: id, Rev: newRev(rev)}, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Doc, error) {
	s.mu.RLock()
	type hit struct {
		id string
		d  memoryDoc
	}
	var hits []hit
	for id, d := range s.docs {
		if d.collection == collection {
			hits = append(hits, hit{id: id, d: *d})
		}
	}
	s.mu.RUnlock()

	// порядок создания
	sort.Slice(hits, func(i, j int) bool { return hits[i].d.seq < hits[j].d.seq })

	docs := make([]Doc, 0, len(hits))
	for _, h := range hits {
		f, err := decodeBody(h.d.body)
		if err != nil {
			return nil, err
		}
		if !f.match(filters) {
			continue
		}
		body, err := render(h.id, h.d.rev, h.d.body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Doc{ID: h.id, Rev: h.d.rev, Collection: collection, Body: body})
	}
	return docs, nil
}

func (s *MemoryStore) Close() error { return nil }
