package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zulu-club/zulubot/internal/api"
	"github.com/zulu-club/zulubot/internal/genai"
	"github.com/zulu-club/zulubot/internal/messaging"
	"github.com/zulu-club/zulubot/internal/store"
	"github.com/zulu-club/zulubot/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for zulubot state data
	DefaultStateDir = "/var/lib/zulubot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "zulubot.db"
	// DefaultCatalogFile is the default product catalog CSV path
	DefaultCatalogFile = "catalog.csv"
	// DefaultBackend is the delivery backend used when none is configured
	DefaultBackend = "gallabox"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	msgService, err := buildMessagingService(flags)
	if err != nil {
		slog.Warn("Messaging backend unavailable, outbound messages will be dropped", "error", err, "backend", *flags.backend)
		msgService = messaging.NewNoopService()
	}

	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	slog.Info("Bootstrapping zulubot with configured modules", "backend", *flags.backend)
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "catalog", *flags.catalogFile)
	if err := api.Run(msgService, storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("zulubot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("zulubot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL   string
	StateDir      string
	OpenAIKey     string
	OpenAIModel   string
	APIAddr       string
	Backend       string
	CatalogFile   string
	KnowledgeFile string
	WhatsAppDSN   string
	GreetOnEmpty  bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir      *string
	dbDSN         *string
	openaiKey     *string
	openaiModel   *string
	apiAddr       *string
	backend       *string
	catalogFile   *string
	knowledgeFile *string
	waDSN         *string
	qrOutput      *string
	numeric       *bool
	greetOnEmpty  *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StateDir:      os.Getenv("ZULUBOT_STATE_DIR"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		APIAddr:       os.Getenv("API_ADDR"),
		Backend:       util.EnvOrDefault("MESSAGING_BACKEND", DefaultBackend),
		CatalogFile:   util.EnvOrDefault("CATALOG_FILE", DefaultCatalogFile),
		KnowledgeFile: os.Getenv("KNOWLEDGE_FILE"),
		WhatsAppDSN:   os.Getenv("WHATSAPP_DB_DSN"),
		GreetOnEmpty:  util.ParseBoolEnv("GREET_ON_EMPTY", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ZULUBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ZULUBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"MESSAGING_BACKEND", config.Backend,
		"CATALOG_FILE", config.CatalogFile,
		"GREET_ON_EMPTY", config.GreetOnEmpty)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for zulubot data (overrides $ZULUBOT_STATE_DIR)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "conversation store DSN (overrides $DATABASE_URL)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:   flag.String("openai-model", config.OpenAIModel, "OpenAI chat model (overrides $OPENAI_MODEL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		backend:       flag.String("backend", config.Backend, "delivery backend: gallabox, twilio or whatsapp (overrides $MESSAGING_BACKEND)"),
		catalogFile:   flag.String("catalog", config.CatalogFile, "product catalog CSV path (overrides $CATALOG_FILE)"),
		knowledgeFile: flag.String("knowledge", config.KnowledgeFile, "brand knowledge text path (overrides $KNOWLEDGE_FILE)"),
		waDSN:         flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "whatsmeow session database DSN (overrides $WHATSAPP_DB_DSN)"),
		qrOutput:      flag.String("qr-output", "", "path to write login QR code (whatsapp backend)"),
		numeric:       flag.Bool("numeric-code", false, "use numeric login code instead of QR code (whatsapp backend)"),
		greetOnEmpty:  flag.Bool("greet-on-empty", config.GreetOnEmpty, "send canned greeting for empty inbound messages (overrides $GREET_ON_EMPTY)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"backend", *flags.backend,
		"catalog", *flags.catalogFile)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return nil
	}
	stateDir := filepath.Dir(*flags.dbDSN)
	slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
		return err
	}
	return nil
}

// buildMessagingService constructs the configured delivery backend.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch strings.ToLower(*flags.backend) {
	case "gallabox":
		return messaging.NewGallaboxService()
	case "twilio":
		return messaging.NewTwilioService()
	case "whatsapp":
		var waOpts []messaging.WhatsAppOption
		waDSN := *flags.waDSN
		if waDSN == "" {
			waDSN = filepath.Join(*flags.stateDir, "whatsmeow.db")
		}
		waOpts = append(waOpts, messaging.WithWhatsAppDBDSN(waDSN))
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, messaging.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, messaging.WithNumericCode())
		}
		return messaging.NewWhatsAppService(waOpts...)
	default:
		return nil, fmt.Errorf("unknown messaging backend %q", *flags.backend)
	}
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	apiOpts := []api.Option{api.WithCatalogPath(*flags.catalogFile)}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.knowledgeFile != "" {
		apiOpts = append(apiOpts, api.WithKnowledgePath(*flags.knowledgeFile))
	}
	if *flags.greetOnEmpty {
		apiOpts = append(apiOpts, api.WithGreetOnEmpty())
	}
	return apiOpts
}
