package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/gcfg.v1"
)

const DefaultPath = "./config/config.ini"

type (
	Config struct {
		SERVICE struct {
			PORT           int
			AdminToken     string
			AllowedOrigins []string
		}
		LOG struct {
			Debug int
		}
		DBSQLITE struct {
			DB string
		}
		WOOCOMMERCE struct {
			URL             string
			Key             string
			Secret          string
			QueryStringAuth int
			RPS             int
			Currency        string
			Currencies      []string
			WebhookSecret   string
			MyAccountPath   string
			AccountEndpoint []string
		}
		WORDPRESS struct {
			URL      string
			HomeURL  string
			User     string
			Password string
		}
		TYPESENSE struct {
			HostLive string
			HostTest string
			Protocol string
			Port     int
			Timeout  int
		}
		SYNC struct {
			BatchSize        int
			RelatedLimit     int
			ProductTypes     []string
			TaxonomyExclude  string
			TermOrder        int
			ProductBundles   int
			IntervalMinutes  int
			CategoryBase     string
			TagBase          string
			AttributeBase    string
			ExpandVariations int
		}
		REVALIDATE struct {
			FrontendURL  string
			DelaySeconds int
			PollSeconds  int
		}
		SESSION struct {
			CookieDomain string
			ExpiryHours  int
		}
		TELEGRAM struct {
			BotToken string
			ChatID   int64
			Debug    int
		}
	}
)

var cfg Config
var once sync.Once
var path = DefaultPath

// SetPath changes the file GetConfig reads. It has no effect after the first GetConfig.
func SetPath(p string) {
	if p != "" {
		path = p
	}
}

// GetConfig reads the configuration once; a failed read is fatal.
func GetConfig() *Config {
	once.Do(func() {
		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		var out io.Writer = os.Stdout
		file, err := os.OpenFile("logs/config.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
		} else {
			out = io.MultiWriter(file, os.Stdout)
		}

		logger := log.New(out, "MAIN ", log.Ldate|log.Ltime|log.Lshortfile)

		logger.Print("Config:>Read application configurations")

		loaded, err := Load(path)
		if err != nil {
			logger.Fatalf("Config:>Failed to parse gcfg data: %s", err)
		}
		cfg = *loaded
		logger.Print("Config:>Config is read")
	})

	return &cfg
}

// Load parses an INI file into a fresh Config, applies defaults and
// environment overrides. A missing .env is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	c := new(Config)
	if err := gcfg.ReadFileInto(c, path); err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

// LoadString is Load for inline INI text.
func LoadString(s string) (*Config, error) {
	c := new(Config)
	if err := gcfg.ReadStringInto(c, s); err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.WOOCOMMERCE.Key, "WOOLESS_WOO_KEY")
	override(&c.WOOCOMMERCE.Secret, "WOOLESS_WOO_SECRET")
	override(&c.WOOCOMMERCE.WebhookSecret, "WOOLESS_WOO_WEBHOOK_SECRET")
	override(&c.WORDPRESS.Password, "WOOLESS_WP_PASSWORD")
	override(&c.SERVICE.AdminToken, "WOOLESS_ADMIN_TOKEN")
	override(&c.TELEGRAM.BotToken, "WOOLESS_TELEGRAM_TOKEN")
}

func (c *Config) applyDefaults() {
	if c.SERVICE.PORT == 0 {
		c.SERVICE.PORT = 8080
	}
	if c.DBSQLITE.DB == "" {
		c.DBSQLITE.DB = "db.db"
	}
	if c.WOOCOMMERCE.RPS <= 0 {
		c.WOOCOMMERCE.RPS = 5
	}
	if c.WOOCOMMERCE.MyAccountPath == "" {
		c.WOOCOMMERCE.MyAccountPath = "/my-account/"
	}
	if len(c.WOOCOMMERCE.AccountEndpoint) == 0 {
		c.WOOCOMMERCE.AccountEndpoint = []string{
			"dashboard:Dashboard",
			"orders:Orders",
			"downloads:Downloads",
			"edit-address:Addresses",
			"edit-account:Account details",
			"customer-logout:Log out",
		}
	}
	if c.WORDPRESS.URL == "" {
		c.WORDPRESS.URL = c.WOOCOMMERCE.URL
	}
	if c.TYPESENSE.Protocol == "" {
		c.TYPESENSE.Protocol = "https"
	}
	if c.TYPESENSE.Port == 0 {
		c.TYPESENSE.Port = 443
	}
	if c.TYPESENSE.Timeout <= 0 {
		c.TYPESENSE.Timeout = 10
	}
	if c.SYNC.BatchSize <= 0 {
		c.SYNC.BatchSize = 50
	}
	if c.SYNC.RelatedLimit <= 0 {
		c.SYNC.RelatedLimit = 10
	}
	if len(c.SYNC.ProductTypes) == 0 {
		c.SYNC.ProductTypes = []string{"simple", "variable", "bundle", "composite", "variation"}
	}
	if c.SYNC.TaxonomyExclude == "" {
		c.SYNC.TaxonomyExclude = `^(ef_|elementor|nav_|ml-|ufaq|translation_priority|wpcode_)`
	}
	if c.SYNC.CategoryBase == "" {
		c.SYNC.CategoryBase = "product-category"
	}
	if c.SYNC.TagBase == "" {
		c.SYNC.TagBase = "product-tag"
	}
	if c.REVALIDATE.DelaySeconds <= 0 {
		c.REVALIDATE.DelaySeconds = 1
	}
	if c.REVALIDATE.PollSeconds <= 0 {
		c.REVALIDATE.PollSeconds = 1
	}
	if c.SESSION.ExpiryHours <= 0 {
		c.SESSION.ExpiryHours = 48
	}
}
