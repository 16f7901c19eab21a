// Package settings keeps the store's general settings and the Typesense
// credentials derived from them.
package settings

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"WooWithTypesense/internal/collections"
	"WooWithTypesense/internal/database/model/option"
	"WooWithTypesense/internal/typesense"
	"WooWithTypesense/pkg/logging"
)

const (
	GeneralOptionsName = "wooless_general_settings_options"
	TypesenseAPIKey    = "typesense_api_key"
	StoreID            = "store_id"
	PrivateKeyMaster   = "private_key_master"

	// MaskedAPIKey replaces the stored portal key in settings responses.
	MaskedAPIKey = "********"
)

// GeneralOptions is the general settings tab.
type GeneralOptions struct {
	Environment                       string `json:"environment"`
	APIKey                            string `json:"api_key"`
	ShopDomain                        string `json:"shop_domain"`
	ShowFreeShippingBanner            bool   `json:"show_free_shipping_banner"`
	ShowFreeShippingMinicartComponent bool   `json:"show_free_shipping_minicart_component"`
	ShowVariantAsSeparateProductCards bool   `json:"show_variant_as_separate_product_cards"`
	EnableRedirect                    bool   `json:"enable_redirect"`
}

// Credentials select one store on a Typesense cluster.
type Credentials struct {
	APIKey      string
	StoreID     string
	Environment string
}

func (c Credentials) Empty() bool {
	return c.APIKey == "" || c.StoreID == "" || c.Environment == ""
}

// ConnectFunc opens a client for the given credentials.
type ConnectFunc func(c Credentials) (typesense.Client, error)

// ConnectionError is reported back to the settings form.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }

type Settings struct {
	db      *sqlx.DB
	connect ConnectFunc
	siteURL string
	homeURL string
}

func New(db *sqlx.DB, connect ConnectFunc, siteURL, homeURL string) *Settings {
	if homeURL == "" {
		homeURL = siteURL
	}
	return &Settings{db: db, connect: connect, siteURL: siteURL, homeURL: homeURL}
}

// Option returns a stored option, "" when not set.
func (s *Settings) Option(name string) (string, error) {
	o, err := option.SelectByName(s.db, name)
	if err != nil {
		return "", err
	}
	if o == nil {
		return "", nil
	}
	return o.Value, nil
}

func (s *Settings) SetOption(name, value string) error {
	return (&option.Option{Name: name, Value: value}).Upsert(s.db)
}

// General returns the stored general options; zero values when never saved.
func (s *Settings) General() (*GeneralOptions, error) {
	value, err := s.Option(GeneralOptionsName)
	if err != nil {
		return nil, err
	}
	opts := &GeneralOptions{}
	if value == "" {
		return opts, nil
	}
	if err := json.Unmarshal([]byte(value), opts); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", GeneralOptionsName)
	}
	return opts, nil
}

// Credentials reads the stored Typesense key, store id and environment.
func (s *Settings) Credentials() (Credentials, error) {
	var c Credentials
	var err error
	if c.APIKey, err = s.Option(TypesenseAPIKey); err != nil {
		return c, err
	}
	if c.StoreID, err = s.Option(StoreID); err != nil {
		return c, err
	}
	general, err := s.General()
	if err != nil {
		return c, err
	}
	c.Environment = general.Environment
	return c, nil
}

// Client opens a Typesense client with the stored credentials.
func (s *Settings) Client() (typesense.Client, Credentials, error) {
	c, err := s.Credentials()
	if err != nil {
		return nil, c, err
	}
	if c.Empty() {
		return nil, c, errors.New("typesense is not configured")
	}
	client, err := s.connect(c)
	if err != nil {
		return nil, c, errors.Wrap(err, "failed to connect to typesense")
	}
	return client, c, nil
}

// DecodeAPIKey splits the portal key, base64("<typesense key>:<store id>").
func DecodeAPIKey(encoded string) (apiKey, storeID string, err error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", errors.Wrap(err, "api key is not base64")
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("api key must decode to <key>:<store id>")
	}
	return parts[0], parts[1], nil
}

// TestConnection lists collections with the given credentials.
func (s *Settings) TestConnection(ctx context.Context, c Credentials) (typesense.Client, error) {
	client, err := s.connect(c)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	if _, err := client.RetrieveCollections(ctx); err != nil {
		return nil, &ConnectionError{Message: "Typesense connection failed: " + err.Error()}
	}
	return client, nil
}

// Save stores the general options. An empty or masked api key keeps the
// stored portal key. A set key is decoded and tested; on success its key
// and store id are persisted and the variant-cards flag is pushed to
// site_info. A failed connection returns a *ConnectionError after the
// options were saved.
func (s *Settings) Save(ctx context.Context, opts GeneralOptions) error {
	logger := logging.GetLogger()
	logger.Info("Start Settings.Save")
	defer logger.Info("End Settings.Save")

	opts.APIKey = strings.TrimSpace(opts.APIKey)
	if opts.APIKey == "" || opts.APIKey == MaskedAPIKey {
		stored, err := s.Option(PrivateKeyMaster)
		if err != nil {
			return err
		}
		opts.APIKey = stored
	}
	value, err := json.Marshal(opts)
	if err != nil {
		return errors.Wrap(err, "failed to encode general options")
	}
	if err := s.SetOption(GeneralOptionsName, string(value)); err != nil {
		return err
	}

	if opts.APIKey == "" {
		return nil
	}

	apiKey, storeID, err := DecodeAPIKey(opts.APIKey)
	if err != nil {
		return &ConnectionError{Message: err.Error()}
	}
	client, err := s.TestConnection(ctx, Credentials{APIKey: apiKey, StoreID: storeID, Environment: opts.Environment})
	if err != nil {
		logger.Errorf("settings connection test: %v", err)
		return err
	}

	for name, v := range map[string]string{
		PrivateKeyMaster: opts.APIKey,
		TypesenseAPIKey:  apiKey,
		StoreID:          storeID,
	} {
		if err := s.SetOption(name, v); err != nil {
			return err
		}
	}

	siteInfo := collections.NewSiteInfo(client, storeID)
	if err := siteInfo.Set(ctx, collections.VariantAsCardsName, opts.ShowVariantAsSeparateProductCards); err != nil {
		logger.Errorf("failed to update %s: %v", collections.VariantAsCardsName, err)
	}
	return nil
}

// Connected reports whether the stored credentials reach Typesense.
func (s *Settings) Connected(ctx context.Context) bool {
	c, err := s.Credentials()
	if err != nil || c.Empty() {
		return false
	}
	_, err = s.TestConnection(ctx, c)
	return err == nil
}

// AdditionalSiteInfo are the settings mirrored into site_info.
func (s *Settings) AdditionalSiteInfo() (map[string]interface{}, error) {
	general, err := s.General()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"show_free_shipping_banner":             general.ShowFreeShippingBanner,
		"show_free_shipping_minicart_component": general.ShowFreeShippingMinicartComponent,
		collections.VariantAsCardsName:          general.ShowVariantAsSeparateProductCards,
	}, nil
}

// OverwriteRestURL points REST urls built on the home url at the site url.
func (s *Settings) OverwriteRestURL(url string) string {
	newURL := strings.TrimRight(s.siteURL, "/") + "/wp-json"
	return strings.Replace(url, strings.TrimRight(s.homeURL, "/")+"/wp-json", newURL, -1)
}
