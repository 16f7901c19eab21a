// Package collections maps WooCommerce and WordPress data onto the
// per-store Typesense collections read by the storefront.
package collections

import (
	"context"

	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/pkg/logging"
)

// Base binds a logical collection ("product", "menu", ...) to one store.
type Base struct {
	client     typesense.Client
	collection string
	storeID    string
}

func NewBase(client typesense.Client, collection, storeID string) *Base {
	return &Base{client: client, collection: collection, storeID: storeID}
}

// Name is the Typesense collection name, <collection>-<storeID>.
func (b *Base) Name() string {
	return typesense.CollectionName(b.collection, b.storeID)
}

// Drop deletes the collection. A missing collection is not an error.
func (b *Base) Drop(ctx context.Context) error {
	err := b.client.DropCollection(ctx, b.Name())
	if err != nil && typesense.IsNotFound(err) {
		logging.GetLogger().Debugf("collection %s did not exist", b.Name())
		return nil
	}
	return err
}

func (b *Base) Create(ctx context.Context, schema *api.CollectionSchema) error {
	schema.Name = b.Name()
	return b.client.CreateCollection(ctx, schema)
}

func (b *Base) Import(ctx context.Context, documents []interface{}) ([]*api.ImportDocumentResponse, error) {
	return b.client.Import(ctx, b.Name(), documents)
}

func (b *Base) Upsert(ctx context.Context, document interface{}) (map[string]interface{}, error) {
	return b.client.Upsert(ctx, b.Name(), document)
}

func (b *Base) CreateDocument(ctx context.Context, document interface{}) (map[string]interface{}, error) {
	return b.client.Create(ctx, b.Name(), document)
}

func (b *Base) UpdateDocument(ctx context.Context, id string, document interface{}) (map[string]interface{}, error) {
	return b.client.Update(ctx, b.Name(), id, document)
}

type fieldOption func(*api.Field)

func facet(f *api.Field)    { f.Facet = pointer.True() }
func optional(f *api.Field) { f.Optional = pointer.True() }
func sortable(f *api.Field) { f.Sort = pointer.True() }

func field(name, typ string, opts ...fieldOption) api.Field {
	f := api.Field{Name: name, Type: typ}
	for _, o := range opts {
		o(&f)
	}
	return f
}

// FieldNames lists schema field names in order.
func FieldNames(fields []api.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}
