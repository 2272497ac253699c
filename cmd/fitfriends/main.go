package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Shadowkot11/FitFriends-bot/internal/api"
	"github.com/Shadowkot11/FitFriends-bot/internal/bot"
	"github.com/Shadowkot11/FitFriends-bot/internal/flow"
	"github.com/Shadowkot11/FitFriends-bot/internal/genai"
	"github.com/Shadowkot11/FitFriends-bot/internal/messaging"
	"github.com/Shadowkot11/FitFriends-bot/internal/scheduler"
	"github.com/Shadowkot11/FitFriends-bot/internal/store"
	"github.com/Shadowkot11/FitFriends-bot/internal/telegram"
	"github.com/Shadowkot11/FitFriends-bot/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for FitFriends state data
	DefaultStateDir = "/var/lib/fitfriends"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "fitness_bot.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping FitFriends bot with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := run(flags); err != nil {
		slog.Error("FitFriends bot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("FitFriends bot exited successfully")
}

// run wires the modules together and blocks until a shutdown signal arrives.
func run(flags Flags) error {
	st, err := openStore(flags)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}()

	chat := flow.NewChatFlow(st, buildCompleter(flags))

	tgClient, err := telegram.NewClient(buildTelegramOptions(flags)...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := messaging.NewTelegramService(tgClient)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			slog.Error("Failed to stop messaging service", "error", err)
		}
	}()

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	automation := bot.NewSalesAutomation(svc, st)
	if err := automation.Register(sched, *flags.sweepCron); err != nil {
		return err
	}

	apiServer := api.NewServer(st, buildAPIOptions(flags)...)
	apiServer.Start()
	defer func() {
		if err := apiServer.Stop(); err != nil {
			slog.Error("Failed to stop API server", "error", err)
		}
	}()

	b := bot.New(svc, st, chat)
	b.Run(ctx)
	return nil
}

// Config holds environment configuration
type Config struct {
	BotToken    string
	DatabaseURL string
	StateDir    string
	APIKey      string
	BaseURL     string
	Model       string
	APIAddr     string
	SweepCron   string
}

// Flags holds command line flag values
type Flags struct {
	botToken  *string
	stateDir  *string
	dbDSN     *string
	apiKey    *string
	baseURL   *string
	model     *string
	apiAddr   *string
	sweepCron *string
	debug     *bool
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
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("FITFRIENDS_STATE_DIR"),
		APIKey:      os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:     os.Getenv("OPENROUTER_BASE_URL"),
		Model:       os.Getenv("AI_MODEL"),
		APIAddr:     os.Getenv("API_ADDR"),
		SweepCron:   os.Getenv("SALES_SWEEP_CRON"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No FITFRIENDS_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"BOT_TOKEN_SET", config.BotToken != "",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"FITFRIENDS_STATE_DIR", config.StateDir,
		"OPENROUTER_API_KEY_SET", config.APIKey != "",
		"OPENROUTER_BASE_URL", config.BaseURL,
		"AI_MODEL", config.Model,
		"API_ADDR", config.APIAddr,
		"SALES_SWEEP_CRON", config.SweepCron)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		botToken:  flag.String("bot-token", config.BotToken, "Telegram bot token (overrides $BOT_TOKEN)"),
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for FitFriends data (overrides $FITFRIENDS_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the user store (overrides $DATABASE_URL)"),
		apiKey:    flag.String("api-key", config.APIKey, "OpenRouter API key (overrides $OPENROUTER_API_KEY)"),
		baseURL:   flag.String("base-url", config.BaseURL, "OpenAI-compatible API base URL (overrides $OPENROUTER_BASE_URL)"),
		model:     flag.String("model", config.Model, "completion model (overrides $AI_MODEL)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "ops API server address (overrides $API_ADDR)"),
		sweepCron: flag.String("sweep-cron", config.SweepCron, "cron schedule for the hot-lead sweep (overrides $SALES_SWEEP_CRON)"),
		debug:     flag.Bool("debug", util.ParseBoolEnv("TELEGRAM_DEBUG", false), "enable Telegram API debug logging (overrides $TELEGRAM_DEBUG)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"botTokenSet", *flags.botToken != "",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiKeySet", *flags.apiKey != "",
		"baseURL", *flags.baseURL,
		"model", *flags.model,
		"apiAddr", *flags.apiAddr,
		"sweepCron", *flags.sweepCron,
		"debug", *flags.debug)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// openStore opens the user store matching the configured DSN.
func openStore(flags Flags) (store.Store, error) {
	if *flags.dbDSN == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildCompleter constructs the GenAI client, or nil when no API key is
// configured so the conversation falls back to canned replies.
func buildCompleter(flags Flags) flow.Completer {
	if *flags.apiKey == "" {
		slog.Info("No OpenRouter API key configured, conversation will use fallback replies only")
		return nil
	}
	genaiOpts := []genai.Option{genai.WithAPIKey(*flags.apiKey)}
	if *flags.baseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(*flags.baseURL))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Error("Failed to create GenAI client, conversation will use fallback replies only", "error", err)
		return nil
	}
	return client
}

// buildTelegramOptions constructs Telegram client configuration options
func buildTelegramOptions(flags Flags) []telegram.Option {
	var tgOpts []telegram.Option
	if *flags.botToken != "" {
		tgOpts = append(tgOpts, telegram.WithToken(*flags.botToken))
	}
	if *flags.debug {
		tgOpts = append(tgOpts, telegram.WithDebug())
	}
	return tgOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
