package cli

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/charles-muller/AspNetSessionState/internal/config"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

var rootCmd = &cobra.Command{
	Use:   "sessdb",
	Short: "SQL Server session-state database operations",
	Long: `sessdb runs operational commands against an ASP.NET session-state
database through the same resilient command layer the session provider
uses: transient faults are classified and retried, connectivity
failures carry the attempted identity.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var (
	flagConfigPath  string
	flagEnvFile     string
	flagServer      string
	flagPort        int
	flagDatabase    string
	flagUser        string
	flagAuthMethod  string
	flagRetryBudget time.Duration
	flagVerbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigPath, "config", "c", ".", "Directory containing "+config.ConfigFileName)
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Env file to load before resolving configuration")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "SQL Server host (overrides config file)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "SQL Server port (overrides config file)")
	rootCmd.PersistentFlags().StringVarP(&flagDatabase, "database", "d", "", "Session database name (overrides config file)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "U", "", "SQL login user ID (overrides config file)")
	rootCmd.PersistentFlags().StringVar(&flagAuthMethod, "auth-method", "", "Authentication method: sql, integrated, azure-entra-id")
	rootCmd.PersistentFlags().DurationVar(&flagRetryBudget, "retry-budget", 0, "Retry budget for fatal transient faults (overrides config file)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output for all commands")
}

// newLogger builds the console logger for commands.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// resolveSettings reads the config file, fills blanks from the
// environment, applies flag overrides, then records the result as the
// process-wide settings (first call wins; later attempts are reported
// at debug level).
func resolveSettings(log zerolog.Logger) (sessionstate.Settings, error) {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			return sessionstate.Settings{}, err
		}
	}

	var settings sessionstate.Settings
	fileCfg, err := config.Load(flagConfigPath)
	switch {
	case err == nil:
		settings, err = fileCfg.Resolve()
		if err != nil {
			return sessionstate.Settings{}, err
		}
	case errors.Is(err, config.ErrConfigNotFound):
		// Flags and environment can fully describe the target.
	default:
		return sessionstate.Settings{}, err
	}

	applyEnv(&settings)
	if err := applyFlags(&settings); err != nil {
		return sessionstate.Settings{}, err
	}

	if err := settings.Connection.Validate(); err != nil {
		return sessionstate.Settings{}, err
	}

	if !config.Initialize(settings) {
		log.Debug().Msg("process settings already initialized, keeping the first value")
		settings, _ = config.Current()
	}
	return settings, nil
}

func applyEnv(settings *sessionstate.Settings) {
	if v := os.Getenv("SESSDB_SERVER"); v != "" && settings.Connection.Server == "" {
		settings.Connection.Server = v
	}
	if v := os.Getenv("SESSDB_DATABASE"); v != "" && settings.Connection.Database == "" {
		settings.Connection.Database = v
	}
	if v := os.Getenv("SESSDB_USER"); v != "" && settings.Connection.UserID == "" {
		settings.Connection.UserID = v
	}
	if v := os.Getenv("SESSDB_PASSWORD"); v != "" && settings.Connection.Password == "" {
		settings.Connection.Password = v
	}
}

func applyFlags(settings *sessionstate.Settings) error {
	if flagServer != "" {
		settings.Connection.Server = flagServer
	}
	if flagPort != 0 {
		settings.Connection.Port = flagPort
	}
	if flagDatabase != "" {
		settings.Connection.Database = flagDatabase
	}
	if flagUser != "" {
		settings.Connection.UserID = flagUser
	}
	if flagAuthMethod != "" {
		method, err := sessionstate.ParseAuthMethod(flagAuthMethod)
		if err != nil {
			return err
		}
		settings.Connection.AuthMethod = method
	}
	if flagRetryBudget != 0 {
		settings.RetryBudget = flagRetryBudget
	}
	return nil
}
