package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MapleStore/CatalogBot/internal/genai"
	"github.com/MapleStore/CatalogBot/internal/lockfile"
	"github.com/MapleStore/CatalogBot/internal/messaging"
	"github.com/MapleStore/CatalogBot/internal/models"
	"github.com/MapleStore/CatalogBot/internal/store"
	"github.com/MapleStore/CatalogBot/internal/telegram"
	"github.com/MapleStore/CatalogBot/internal/util"
	"github.com/MapleStore/CatalogBot/internal/whatsapp"
	"github.com/MapleStore/CatalogBot/internal/wizard"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CatalogBot state data
	DefaultStateDir = "/var/lib/catalogbot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "catalogbot.db"
	// DefaultSessionTTL is how long an idle wizard session lives before expiry
	DefaultSessionTTL = 30 * time.Minute
	// DefaultJanitorInterval is how often expired sessions are swept
	DefaultJanitorInterval = time.Minute
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if err := run(flags); err != nil {
		slog.Error("CatalogBot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("CatalogBot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL     string
	WhatsAppDSN     string
	StateDir        string
	TelegramToken   string
	OpenAIKey       string
	SessionTTL      string
	WhatsAppEnabled bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir       *string
	dbDSN          *string
	whatsappDSN    *string
	telegramToken  *string
	openaiKey      *string
	sessionTTL     *time.Duration
	enableWhatsApp *bool
	qrOutput       *string
	numeric        *bool
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
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		WhatsAppDSN:     os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:        os.Getenv("CATALOGBOT_STATE_DIR"),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		SessionTTL:      os.Getenv("SESSION_TTL"),
		WhatsAppEnabled: util.ParseBoolEnv("WHATSAPP_ENABLED", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No CATALOGBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	// The whatsmeow device store defaults to its own SQLite file next to ours
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, "whatsmeow.db")
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"CATALOGBOT_STATE_DIR", config.StateDir,
		"TELEGRAM_BOT_TOKEN_SET", config.TelegramToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"SESSION_TTL", config.SessionTTL,
		"WHATSAPP_ENABLED", config.WhatsAppEnabled)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	sessionTTL := DefaultSessionTTL
	if config.SessionTTL != "" {
		if d, err := time.ParseDuration(config.SessionTTL); err == nil {
			sessionTTL = d
		} else {
			slog.Warn("Invalid SESSION_TTL, using default", "value", config.SessionTTL, "default", DefaultSessionTTL)
		}
	}

	flags := Flags{
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for CatalogBot data (overrides $CATALOGBOT_STATE_DIR)"),
		dbDSN:          flag.String("db-dsn", config.DatabaseURL, "database DSN for the catalog store (overrides $DATABASE_URL)"),
		whatsappDSN:    flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the whatsmeow device store (overrides $WHATSAPP_DB_DSN)"),
		telegramToken:  flag.String("telegram-token", config.TelegramToken, "Telegram bot token (overrides $TELEGRAM_BOT_TOKEN)"),
		openaiKey:      flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for description suggestions (overrides $OPENAI_API_KEY)"),
		sessionTTL:     flag.Duration("session-ttl", sessionTTL, "idle wizard session lifetime (overrides $SESSION_TTL)"),
		enableWhatsApp: flag.Bool("enable-whatsapp", config.WhatsAppEnabled, "enable the WhatsApp transport (overrides $WHATSAPP_ENABLED)"),
		qrOutput:       flag.String("qr-output", "", "path to write WhatsApp login QR code"),
		numeric:        flag.Bool("numeric-code", false, "use numeric WhatsApp login code instead of QR code"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"telegramTokenSet", *flags.telegramToken != "",
		"openaiKeySet", *flags.openaiKey != "",
		"sessionTTL", *flags.sessionTTL,
		"enableWhatsApp", *flags.enableWhatsApp)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore opens the catalog store matching the DSN type.
func buildStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithDSN(dsn))
}

// buildSuggester constructs the optional GenAI description suggester.
func buildSuggester(flags Flags) *genai.Client {
	if *flags.openaiKey == "" {
		slog.Info("No OpenAI API key configured, description suggestions disabled")
		return nil
	}
	client, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
	if err != nil {
		slog.Warn("Failed to initialize GenAI client, description suggestions disabled", "error", err)
		return nil
	}
	return client
}

func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One poller per bot token: a second instance would steal updates.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	suggester := buildSuggester(flags)

	sessions := wizard.NewSessionStore()
	engine := wizard.NewEngine(st)
	assembler := wizard.NewAssembler(st)
	dispatcher := messaging.NewDispatcher(sessions, engine, assembler)
	mux := messaging.NewMux()

	// Telegram transport
	var bot *telegram.Bot
	if *flags.telegramToken != "" {
		var opts []telegram.Option
		if suggester != nil {
			opts = append(opts, telegram.WithSuggester(suggester))
		}
		bot, err = telegram.NewBot(*flags.telegramToken, dispatcher, opts...)
		if err != nil {
			return err
		}
		if err := bot.RegisterCommands(); err != nil {
			slog.Warn("Failed to register telegram commands", "error", err)
		}
		mux.Register(telegram.Scheme, bot.Transport())
		go bot.Run(ctx)
	}

	// WhatsApp transport
	if *flags.enableWhatsApp {
		waOpts := []whatsapp.Option{whatsapp.WithDBDSN(*flags.whatsappDSN)}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		waClient, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return err
		}
		waTransport := whatsapp.NewTransport(waClient)
		var waSuggester whatsapp.Suggester
		if suggester != nil {
			waSuggester = suggester
		}
		receiver := whatsapp.NewReceiver(waClient, waTransport, dispatcher, waSuggester)
		mux.Register(whatsapp.Scheme, waTransport)
		go receiver.Run(ctx)
	}

	if bot == nil && !*flags.enableWhatsApp {
		slog.Error("No transport configured: set TELEGRAM_BOT_TOKEN or enable WhatsApp")
		os.Exit(1)
	}

	// Expired sessions are cancelled implicitly: prompts retracted, operator told
	sessions.StartJanitor(ctx, *flags.sessionTTL, DefaultJanitorInterval, func(sess *models.Session) {
		messaging.ExpireSession(context.Background(), mux, sess)
	})

	slog.Info("CatalogBot started", "sessionTTL", *flags.sessionTTL)
	<-ctx.Done()
	slog.Info("Shutting down CatalogBot")
	return nil
}
