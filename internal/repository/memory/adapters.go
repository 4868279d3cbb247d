package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

// LookupCache keeps JSON encoded values in a map, matching how the Redis
// cache stores them. Expiry is not modelled.
type LookupCache struct {
	mu     sync.Mutex
	values map[string][]byte
	Err    error
}

var _ ports.LookupCache = (*LookupCache)(nil)

func NewLookupCache() *LookupCache {
	return &LookupCache{values: map[string][]byte{}}
}

func (c *LookupCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return false, c.Err
	}
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *LookupCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *LookupCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// ObjectStorage records uploaded objects by bucket/name.
type ObjectStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	RemoveErr error
}

var _ ports.ObjectStorage = (*ObjectStorage)(nil)

func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{objects: map[string][]byte{}}
}

func (o *ObjectStorage) Upload(_ context.Context, bucket, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[bucket+"/"+objectName] = data
	return fmt.Sprintf("memory://%s/%s", bucket, objectName), nil
}

func (o *ObjectStorage) Remove(_ context.Context, bucket, objectName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.RemoveErr != nil {
		return o.RemoveErr
	}
	delete(o.objects, bucket+"/"+objectName)
	return nil
}

func (o *ObjectStorage) Has(bucket, objectName string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.objects[bucket+"/"+objectName]
	return ok
}

func (o *ObjectStorage) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}
