package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Similarity strategy names accepted by SIMILARITY_STRATEGY.
const (
	StrategyLocal   = "local"
	StrategyRemote  = "remote"
	StrategyElastic = "elastic"
)

// Common contains Elasticsearch parameters shared by the api and indexer.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// News configures the external news-search provider.
type News struct {
	URL            string
	APIKey         string
	DefaultLimit   int
	MaxLimit       int
	Window         time.Duration
	ExcludeDomains []string
}

// Markets configures the aggregated dataset source.
type Markets struct {
	DataURLs   []string
	PageWindow int
	CacheTTL   time.Duration
}

// Similarity configures headline matching.
type Similarity struct {
	Strategy  string
	Threshold float64
	Count     int
	EmbedURL  string
	MatchURL  string
	APIKey    string
}

// Auth configures the optional API-key gate.
type Auth struct {
	Required      bool
	RedisAddr     string
	RedisPassword string
	RequiredPlan  string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr   string
	News       News
	Markets    Markets
	Similarity Similarity
	Auth       Auth
}

// Indexer configures the market-title mirror daemon.
type Indexer struct {
	Common
	DataURLs []string
	Interval time.Duration
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "markets"),
		},
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		News: News{
			URL:            getEnv("NEWS_API_URL", "https://api.exa.ai/search"),
			APIKey:         getEnv("NEWS_API_KEY", ""),
			DefaultLimit:   getInt("NEWS_DEFAULT_LIMIT", 10),
			MaxLimit:       getInt("NEWS_MAX_LIMIT", 50),
			Window:         getDuration("NEWS_WINDOW", "168h"),
			ExcludeDomains: splitAndTrim(getEnv("NEWS_EXCLUDE_DOMAINS", "twitter.com,x.com,reddit.com,youtube.com,facebook.com")),
		},
		Markets: Markets{
			DataURLs:   splitAndTrim(getEnv("MARKET_DATA_URLS", "")),
			PageWindow: getInt("MARKET_PAGE_WINDOW", 100),
			CacheTTL:   getDuration("MARKET_CACHE_TTL", "5m"),
		},
		Similarity: Similarity{
			Strategy:  strings.ToLower(getEnv("SIMILARITY_STRATEGY", StrategyLocal)),
			Threshold: getFloat("SIMILARITY_THRESHOLD", 0.90),
			Count:     getInt("SIMILARITY_COUNT", 3),
			EmbedURL:  getEnv("EMBED_URL", ""),
			MatchURL:  getEnv("MATCH_URL", ""),
			APIKey:    getEnv("SIMILARITY_API_KEY", ""),
		},
		Auth: Auth{
			Required:      getBool("AUTH_REQUIRED", false),
			RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RequiredPlan:  getEnv("AUTH_REQUIRED_PLAN", "pro"),
		},
	}

	if len(c.Markets.DataURLs) == 0 {
		return nil, fmt.Errorf("MARKET_DATA_URLS must contain at least one URL")
	}
	if c.News.DefaultLimit <= 0 {
		return nil, fmt.Errorf("NEWS_DEFAULT_LIMIT must be positive")
	}
	if c.News.MaxLimit <= 0 {
		return nil, fmt.Errorf("NEWS_MAX_LIMIT must be positive")
	}
	if c.News.DefaultLimit > c.News.MaxLimit {
		return nil, fmt.Errorf("NEWS_DEFAULT_LIMIT cannot exceed NEWS_MAX_LIMIT")
	}
	if c.News.Window <= 0 {
		return nil, fmt.Errorf("NEWS_WINDOW must be positive")
	}
	if c.Markets.PageWindow <= 0 {
		return nil, fmt.Errorf("MARKET_PAGE_WINDOW must be positive")
	}
	if c.Similarity.Threshold <= 0 || c.Similarity.Threshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.Similarity.Count <= 0 {
		return nil, fmt.Errorf("SIMILARITY_COUNT must be positive")
	}

	switch c.Similarity.Strategy {
	case StrategyLocal, StrategyElastic:
	case StrategyRemote:
		if c.Similarity.EmbedURL == "" || c.Similarity.MatchURL == "" {
			return nil, fmt.Errorf("EMBED_URL and MATCH_URL are required for the remote strategy")
		}
	default:
		return nil, fmt.Errorf("unknown SIMILARITY_STRATEGY %q", c.Similarity.Strategy)
	}

	return c, nil
}

// LoadIndexer builds an Indexer config from environment variables.
func LoadIndexer() (*Indexer, error) {
	c := &Indexer{
		Common: Common{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "markets"),
		},
		DataURLs: splitAndTrim(getEnv("MARKET_DATA_URLS", "")),
		Interval: getDuration("INDEXER_INTERVAL", "1h"),
	}

	if len(c.DataURLs) == 0 {
		return nil, fmt.Errorf("MARKET_DATA_URLS must contain at least one URL")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("INDEXER_INTERVAL must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
