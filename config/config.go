package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	scrapeerrors "sjsage522/listingscraper/pkg/errors"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported parser names
const (
	ParserHTML        = "html"
	ParserHTMLCharset = "html-charset"
)

// SupportedParsers lists the parser names accepted by Validate and scraper.NewParser
var SupportedParsers = []string{ParserHTML, ParserHTMLCharset}

// DefaultRegions are the regions scraped when neither REGIONS nor a regions file is set
var DefaultRegions = []string{
	"denver", "boulder", "cosprings", "pueblo", "eastco", "westslope", "fortcollins", "rockies",
}

// DefaultHeaders are the static search filter headers sent with every page request
var DefaultHeaders = map[string]string{
	"bundleDuplicates": "1",
	"max_price":        "1100",
	"availabilityMode": "0",
	"sale_date":        "all+dates",
}

// Region is one target site, identified by slug
type Region struct {
	Slug    string
	BaseURL string
}

// Config represents the application configuration
type Config struct {
	// Scraping targets
	Regions         []string
	BaseURLTemplate string
	SearchPath      string
	Headers         map[string]string
	Parser          string
	Delay           time.Duration

	// Output
	OutputDir    string
	ErrorLogPath string

	// Scheduling; empty runs once
	Cron string

	// Redis configuration; empty address disables publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration; empty address disables the block cache
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Environment
	Environment string
}

// regionsFile is the YAML layout of REGIONS_FILE
type regionsFile struct {
	Regions         []string          `yaml:"regions"`
	Headers         map[string]string `yaml:"headers"`
	SearchPath      string            `yaml:"search_path"`
	BaseURLTemplate string            `yaml:"base_url_template"`
}

// LoadConfig loads the configuration from environment variables with defaults,
// then overlays the regions file when REGIONS_FILE is set.
func LoadConfig() (*Config, error) {
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	delay, err := getEnvInt("SCRAPE_DELAY_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	maxLen, err := getEnvInt("REDIS_STREAM_MAX_LENGTH", 10000)
	if err != nil {
		return nil, err
	}
	block, err := getEnvInt("RATE_LIMIT_BLOCK_SECONDS", 3600)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Regions:              splitList(getEnv("REGIONS", "")),
		BaseURLTemplate:      getEnv("BASE_URL_TEMPLATE", "https://%s.craigslist.org"),
		SearchPath:           getEnv("SEARCH_PATH", "/search/hhh?"),
		Headers:              copyHeaders(DefaultHeaders),
		Parser:               getEnv("PARSER", ParserHTML),
		Delay:                time.Duration(delay) * time.Second,
		OutputDir:            getEnv("OUTPUT_DIR", "data"),
		ErrorLogPath:         getEnv("ERROR_LOG_PATH", "error.log"),
		Cron:                 os.Getenv("SCRAPE_CRON"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLength: maxLen,
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:       time.Duration(block) * time.Second,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}

	if path := os.Getenv("REGIONS_FILE"); path != "" {
		if err := cfg.loadRegionsFile(path); err != nil {
			return nil, err
		}
	}

	if len(cfg.Regions) == 0 {
		cfg.Regions = append([]string(nil), DefaultRegions...)
	}

	return cfg, nil
}

func (c *Config) loadRegionsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return scrapeerrors.NewConfiguration("failed to read regions file "+path, err)
	}

	var rf regionsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return scrapeerrors.NewConfiguration("failed to parse regions file "+path, err)
	}

	if len(rf.Regions) > 0 {
		c.Regions = rf.Regions
	}
	if rf.Headers != nil {
		c.Headers = rf.Headers
	}
	if rf.SearchPath != "" {
		c.SearchPath = rf.SearchPath
	}
	if rf.BaseURLTemplate != "" {
		c.BaseURLTemplate = rf.BaseURLTemplate
	}
	return nil
}

// Validate reports configuration errors; it never touches the network
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return scrapeerrors.NewConfiguration("no regions configured", nil)
	}
	for _, r := range c.Regions {
		if strings.TrimSpace(r) == "" {
			return scrapeerrors.NewConfiguration("empty region identifier", nil)
		}
	}
	if !strings.Contains(c.BaseURLTemplate, "%s") {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("base url template %q has no %%s placeholder", c.BaseURLTemplate), nil)
	}
	if !IsSupportedParser(c.Parser) {
		return scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported parser %q, supported parsers: %v", c.Parser, SupportedParsers), nil)
	}
	for k := range c.Headers {
		if strings.TrimSpace(k) == "" {
			return scrapeerrors.NewConfiguration("header set contains an empty key", nil)
		}
	}
	if c.Delay < 0 {
		return scrapeerrors.NewConfiguration("scrape delay must not be negative", nil)
	}
	if c.Cron != "" {
		if _, err := cron.ParseStandard(c.Cron); err != nil {
			return scrapeerrors.NewConfiguration("invalid cron expression "+c.Cron, err)
		}
	}
	return nil
}

// ResolveRegions maps every configured slug to its base URL
func (c *Config) ResolveRegions() []Region {
	regions := make([]Region, 0, len(c.Regions))
	for _, slug := range c.Regions {
		regions = append(regions, Region{
			Slug:    slug,
			BaseURL: fmt.Sprintf(c.BaseURLTemplate, slug),
		})
	}
	return regions
}

// IsSupportedParser reports whether name is one of SupportedParsers
func IsSupportedParser(name string) bool {
	for _, p := range SupportedParsers {
		if p == name {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt reads an integer environment variable; a malformed value is a configuration error
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, scrapeerrors.NewConfiguration(fmt.Sprintf("%s must be a whole number, got %q", key, value), err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
