package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/typesense/typesense-go/typesense/api"
	"github.com/typesense/typesense-go/typesense/api/pointer"

	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/internal/wooapi"
	"WooWithTypesense/pkg/logging"
)

const VariantAsCardsName = "show_variant_as_separate_product_cards"

// fixed document ids the storefront looks up directly
var siteInfoIDs = map[string]string{
	VariantAsCardsName: "1002457",
}

// SiteInfo stores store-wide settings as {id, name, value, updated_at}
// documents; value is always a JSON encoded string.
type SiteInfo struct {
	*Base
	now func() time.Time
}

func NewSiteInfo(client typesense.Client, storeID string) *SiteInfo {
	return &SiteInfo{Base: NewBase(client, "site_info", storeID), now: time.Now}
}

func (s *SiteInfo) schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Fields: []api.Field{
			field("name", "string", facet),
			field("value", "string"),
			field("updated_at", "int64"),
		},
		DefaultSortingField: pointer.String("updated_at"),
	}
}

// DocumentID returns the id a site info entry is stored under.
func DocumentID(name string) string {
	if id, ok := siteInfoIDs[name]; ok {
		return id
	}
	return name
}

// Document JSON encodes value; a json.RawMessage is stored as given.
func (s *SiteInfo) Document(name string, value interface{}) map[string]interface{} {
	var encoded string
	if raw, ok := value.(json.RawMessage); ok && json.Valid(raw) {
		encoded = string(raw)
	} else {
		b, err := json.Marshal(value)
		if err != nil {
			b = []byte(fmt.Sprintf("%q", fmt.Sprint(value)))
		}
		encoded = string(b)
	}
	return map[string]interface{}{
		"id":         DocumentID(name),
		"name":       name,
		"value":      encoded,
		"updated_at": s.now().Unix(),
	}
}

func (s *SiteInfo) Set(ctx context.Context, name string, value interface{}) error {
	if _, err := s.Upsert(ctx, s.Document(name, value)); err != nil {
		return errors.Wrapf(err, "failed to upsert site info %s", name)
	}
	return nil
}

// IndexAll recreates the collection from entries (name => value).
func (s *SiteInfo) IndexAll(ctx context.Context, entries map[string]interface{}) (*IndexResult, error) {
	logger := logging.GetLogger()
	logger.Info("Start SiteInfo.IndexAll")
	defer logger.Info("End SiteInfo.IndexAll")

	if err := s.Drop(ctx); err != nil {
		logger.Debugf("drop %s: %v", s.Name(), err)
	}
	if err := s.Create(ctx, s.schema()); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", s.Name())
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	documents := make([]interface{}, 0, len(names))
	for _, name := range names {
		documents = append(documents, s.Document(name, entries[name]))
	}

	result := &IndexResult{}
	rows, err := s.Import(ctx, documents)
	if err != nil {
		return nil, errors.Wrap(err, "failed site info import")
	}
	for _, row := range rows {
		if row.Success {
			result.Indexed++
		} else {
			logger.Debugf("site info import failed: %s %s", row.Document, row.Error)
			result.Failed++
		}
	}
	return result, nil
}

// ResolveCurrency asks the store for woocommerce_currency and falls back to def.
func ResolveCurrency(woo wooapi.WOOAPI, def string) string {
	setting, err := woo.SettingGet("general", "woocommerce_currency")
	if err != nil {
		logging.GetLogger().Debugf("woocommerce_currency unavailable: %v", err)
		return def
	}
	if v, ok := setting.Value.(string); ok && v != "" {
		return v
	}
	return def
}
