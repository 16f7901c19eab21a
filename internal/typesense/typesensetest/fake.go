// Package typesensetest provides an in-memory typesense.Client for tests.
package typesensetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
)

type Fake struct {
	mu sync.Mutex

	Collections map[string]*api.CollectionSchema
	Documents   map[string]map[string]interface{}
	Dropped     []string

	Healthy   bool
	HealthErr error
	CreateErr error
	ImportErr error
	UpsertErr error
	// FailIDs makes Import report success=false for these document ids.
	FailIDs map[string]string
}

func New() *Fake {
	return &Fake{
		Collections: map[string]*api.CollectionSchema{},
		Documents:   map[string]map[string]interface{}{},
		Healthy:     true,
		FailIDs:     map[string]string{},
	}
}

func (f *Fake) Health(_ context.Context) (bool, error) {
	return f.Healthy, f.HealthErr
}

func (f *Fake) RetrieveCollections(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.HealthErr != nil {
		return nil, f.HealthErr
	}
	names := make([]string, 0, len(f.Collections))
	for n := range f.Collections {
		names = append(names, n)
	}
	return names, nil
}

func (f *Fake) DropCollection(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Collections[name]; !ok {
		return NotFound{}
	}
	delete(f.Collections, name)
	delete(f.Documents, name)
	f.Dropped = append(f.Dropped, name)
	return nil
}

func (f *Fake) CreateCollection(_ context.Context, schema *api.CollectionSchema) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.Collections[schema.Name]; ok {
		return errors.Errorf("collection %s already exists", schema.Name)
	}
	f.Collections[schema.Name] = schema
	f.Documents[schema.Name] = map[string]interface{}{}
	return nil
}

func (f *Fake) Import(_ context.Context, collection string, documents []interface{}) ([]*api.ImportDocumentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ImportErr != nil {
		return nil, f.ImportErr
	}
	out := make([]*api.ImportDocumentResponse, 0, len(documents))
	for _, d := range documents {
		id := docID(d)
		if msg, ok := f.FailIDs[id]; ok {
			out = append(out, &api.ImportDocumentResponse{Success: false, Error: msg, Document: id})
			continue
		}
		f.store(collection, id, d)
		out = append(out, &api.ImportDocumentResponse{Success: true})
	}
	return out, nil
}

func (f *Fake) Upsert(_ context.Context, collection string, document interface{}) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return nil, f.UpsertErr
	}
	id := docID(document)
	f.store(collection, id, document)
	return map[string]interface{}{"id": id}, nil
}

func (f *Fake) Create(_ context.Context, collection string, document interface{}) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := docID(document)
	if _, ok := f.Documents[collection][id]; ok && id != "" {
		return nil, errors.Errorf("document %s already exists", id)
	}
	if id == "" {
		id = fmt.Sprint(len(f.Documents[collection]))
	}
	f.store(collection, id, document)
	return map[string]interface{}{"id": id}, nil
}

func (f *Fake) Update(_ context.Context, collection, id string, document interface{}) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Documents[collection][id]; !ok {
		return nil, NotFound{}
	}
	f.store(collection, id, document)
	return map[string]interface{}{"id": id}, nil
}

// Doc returns a stored document.
func (f *Fake) Doc(collection, id string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Documents[collection][id]
}

func (f *Fake) store(collection, id string, d interface{}) {
	if f.Documents[collection] == nil {
		f.Documents[collection] = map[string]interface{}{}
	}
	f.Documents[collection][id] = d
}

// NotFound mimics a 404 from the HTTP API.
type NotFound struct{}

func (NotFound) Error() string { return "status: 404 not found" }

func (NotFound) NotFound() bool { return true }

func docID(d interface{}) string {
	switch v := d.(type) {
	case map[string]interface{}:
		if id, ok := v["id"]; ok {
			return fmt.Sprint(id)
		}
	case interface{ DocumentID() string }:
		return v.DocumentID()
	}
	return ""
}
