package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/slotlink/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slotlink",
	Short: "Slotlink runs a packet link on leased radio time.",
	Long: `Slotlink runs a packet link that borrows short, periodic slots of a ` +
		`radio owned by an arbiter. The run command simulates the arbiter, the ` +
		`lease timer and the link driver and reports what the link achieved.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "TOML configuration file")
	flags.String("env-file", "", "dotenv file loaded before SLOTLINK_ variables are read")
	flags.String("log-level", "", "log level, overriding the configuration")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger := newLogger(zerolog.ErrorLevel)
		logger.Error().Err(err).Msg("slotlink failed")
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadConfig layers the flags of cmd over the configuration sources.
func loadConfig(cmd *cobra.Command) (config.File, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return config.File{}, err
	}

	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
		if err := cfg.Validate(); err != nil {
			return config.File{}, err
		}
	}

	return cfg, nil
}

func newLogger(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
