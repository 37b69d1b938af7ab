package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Jira configuration
	JiraServer string // Required: Jira base URL, e.g. https://yoursite.atlassian.net
	JiraUser   string // Required: Jira user identity (email or username)
	JiraToken  string // Required: Jira API token for the service identity

	JiraTimeout    time.Duration // Per-call timeout for Jira requests
	JiraMaxResults int           // Upper bound for page_size

	// HTTP server configuration
	Host string
	Port int

	// Slack notification configuration (optional; notifications disabled when empty)
	SlackBotToken string
	SlackChannel  string

	// S3 configuration for the personal token store (optional; store disabled when empty)
	TokenBucketName string
	TokenEncryptKey string // 32-byte key for AES-256

	// Log level
	LogLevel string
}

// DefaultPageSize is the page size used when a request does not supply one.
const DefaultPageSize = 20

var (
	// instance holds the singleton config instance
	instance *Config
)

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not initialized")
	}
	return instance
}

// Load creates a new Config instance from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Load required values
	requiredVars := map[string]*string{
		"JIRA_SERVER": &cfg.JiraServer,
		"JIRA_USER":   &cfg.JiraUser,
		"JIRA_TOKEN":  &cfg.JiraToken,
	}

	var missingVars []string
	for env, ptr := range requiredVars {
		*ptr = os.Getenv(env)
		if *ptr == "" {
			missingVars = append(missingVars, env)
		}
	}

	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	cfg.JiraTimeout = time.Duration(intEnv("JIRA_TIMEOUT", 30)) * time.Second
	cfg.JiraMaxResults = intEnv("JIRA_MAX_RESULTS", 50)
	cfg.Host = stringEnv("MCP_SERVER_HOST", "0.0.0.0")
	cfg.Port = intEnv("MCP_SERVER_PORT", 8000)
	cfg.LogLevel = stringEnv("LOG_LEVEL", "info")

	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")
	cfg.TokenBucketName = os.Getenv("TOKEN_BUCKET_NAME")
	cfg.TokenEncryptKey = os.Getenv("TOKEN_ENCRYPT_KEY")

	// Store the instance
	instance = cfg

	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func stringEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
