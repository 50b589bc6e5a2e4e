package objectStore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
)

var errNoSuchKey = errors.New("no such key")

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process. Buckets spring into existence on
// first write.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]object)}
}

func (m *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := []string{}
	for k := range m.buckets[bucket] {
		if strings.HasPrefix(k, prefix) && !strings.HasSuffix(k, "/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Get(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.buckets[bucket][key]
	if !ok {
		return nil, &errs.StorageError{Kind: errs.StorageNotFound, Bucket: bucket, Key: key, Err: errNoSuchKey}
	}
	if maxBytes > 0 && int64(len(obj.data)) > maxBytes {
		return nil, tooLarge(key, int64(len(obj.data)), maxBytes)
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *MemoryStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string]object)
	}
	data := make([]byte, len(body))
	copy(data, body)
	m.buckets[bucket][key] = object{data: data, contentType: contentType}
	return nil
}

func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buckets[bucket][key].contentType
}

func (m *MemoryStore) DeleteMany(ctx context.Context, bucket string, keys []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := m.buckets[bucket][k]; ok {
			delete(m.buckets[bucket], k)
			deleted = append(deleted, k)
		}
	}
	return deleted, nil
}
