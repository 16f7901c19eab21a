package typesense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	ts "github.com/typesense/typesense-go/typesense"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/pkg/logging"
)

const (
	EnvironmentLive = "live"
	EnvironmentTest = "test"
)

// Client is the part of the Typesense HTTP API the collections use.
type Client interface {
	Health(ctx context.Context) (bool, error)
	RetrieveCollections(ctx context.Context) ([]string, error)
	DropCollection(ctx context.Context, name string) error
	CreateCollection(ctx context.Context, schema *api.CollectionSchema) error
	Import(ctx context.Context, collection string, documents []interface{}) ([]*api.ImportDocumentResponse, error)
	Upsert(ctx context.Context, collection string, document interface{}) (map[string]interface{}, error)
	Create(ctx context.Context, collection string, document interface{}) (map[string]interface{}, error)
	Update(ctx context.Context, collection, id string, document interface{}) (map[string]interface{}, error)
}

// Connection describes one store's Typesense cluster.
type Connection struct {
	APIKey      string
	StoreID     string
	Environment string
	HostLive    string
	HostTest    string
	Protocol    string
	Port        int
	Timeout     time.Duration
}

// ServerURL picks the host for the configured environment; anything but
// "live" goes to the test cluster.
func (c Connection) ServerURL() string {
	host := c.HostTest
	if strings.EqualFold(c.Environment, EnvironmentLive) {
		host = c.HostLive
	}
	protocol := c.Protocol
	if protocol == "" {
		protocol = "https"
	}
	if c.Port == 0 {
		return fmt.Sprintf("%s://%s", protocol, host)
	}
	return fmt.Sprintf("%s://%s:%d", protocol, host, c.Port)
}

type client struct {
	ts      *ts.Client
	timeout time.Duration
}

// NewClient connects to the cluster selected by c.Environment.
func NewClient(c Connection) (Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("typesense api key is empty")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	tsClient := ts.NewClient(
		ts.WithServer(c.ServerURL()),
		ts.WithAPIKey(c.APIKey),
		ts.WithConnectionTimeout(timeout),
	)
	return &client{ts: tsClient, timeout: timeout}, nil
}

func (c *client) Health(ctx context.Context) (bool, error) {
	ok, err := c.ts.Health(ctx, c.timeout)
	if err != nil {
		return false, errors.Wrap(err, "failed typesense health")
	}
	return ok, nil
}

func (c *client) RetrieveCollections(ctx context.Context) ([]string, error) {
	collections, err := c.ts.Collections().Retrieve(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed typesense Collections().Retrieve")
	}
	names := make([]string, 0, len(collections))
	for _, col := range collections {
		names = append(names, col.Name)
	}
	return names, nil
}

func (c *client) DropCollection(ctx context.Context, name string) error {
	logger := logging.GetLogger()
	logger.Debugf("DropCollection: %s", name)

	if _, err := c.ts.Collection(name).Delete(ctx); err != nil {
		return errors.Wrapf(err, "failed drop collection %s", name)
	}
	return nil
}

func (c *client) CreateCollection(ctx context.Context, schema *api.CollectionSchema) error {
	logger := logging.GetLogger()
	logger.Debugf("CreateCollection: %s (%d fields)", schema.Name, len(schema.Fields))

	if _, err := c.ts.Collections().Create(ctx, schema); err != nil {
		return errors.Wrapf(err, "failed create collection %s", schema.Name)
	}
	return nil
}

func (c *client) Import(ctx context.Context, collection string, documents []interface{}) ([]*api.ImportDocumentResponse, error) {
	params := &api.ImportDocumentsParams{
		Action: pointer.String("upsert"),
	}
	result, err := c.ts.Collection(collection).Documents().Import(ctx, documents, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed import %d documents into %s", len(documents), collection)
	}
	return result, nil
}

func (c *client) Upsert(ctx context.Context, collection string, document interface{}) (map[string]interface{}, error) {
	result, err := c.ts.Collection(collection).Documents().Upsert(ctx, document)
	if err != nil {
		return nil, errors.Wrapf(err, "failed upsert into %s", collection)
	}
	return result, nil
}

func (c *client) Create(ctx context.Context, collection string, document interface{}) (map[string]interface{}, error) {
	result, err := c.ts.Collection(collection).Documents().Create(ctx, document)
	if err != nil {
		return nil, errors.Wrapf(err, "failed create in %s", collection)
	}
	return result, nil
}

func (c *client) Update(ctx context.Context, collection, id string, document interface{}) (map[string]interface{}, error) {
	result, err := c.ts.Collection(collection).Document(id).Update(ctx, document)
	if err != nil {
		return nil, errors.Wrapf(err, "failed update %s/%s", collection, id)
	}
	return result, nil
}

// IsNotFound reports a 404 from the Typesense HTTP API.
func IsNotFound(err error) bool {
	var httpErr *ts.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == 404
	}
	if nf, ok := errors.Cause(err).(interface{ NotFound() bool }); ok {
		return nf.NotFound()
	}
	return false
}

// CollectionName is the per-store collection name, e.g. product-1234.
func CollectionName(collection, storeID string) string {
	if storeID == "" {
		return collection
	}
	return collection + "-" + storeID
}
