package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/slotlink/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the link on simulated hardware",
	Long: `Run the link against a simulated arbiter and peer for a span of ` +
		`virtual time, offering it packets at a fixed interval, then print ` +
		`what was delivered.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		applyRunFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := newLogger(cfg.Level())

		s, err := newSimulation(cfg, logger)
		if err != nil {
			return err
		}

		runErr := s.run()
		closeErr := s.close()

		s.report(cmd.OutOrStdout())

		if runErr != nil {
			return runErr
		}

		return closeErr
	},
}

func init() {
	flags := runCmd.Flags()
	flags.DurationP("duration", "d", 0, "virtual time to cover")
	flags.Duration("send-interval", 0, "time between two packets offered to the link")
	flags.String("trace", "", "SQLite file to record slots and packets in")
	flags.Bool("monitor", false, "serve the HTTP monitor while running")
	flags.Int("port", 0, "monitor port, 0 for any")
	flags.Bool("open-browser", false, "open the monitor in a browser")

	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.File) {
	flags := cmd.Flags()

	if flags.Changed("duration") {
		cfg.Sim.Duration, _ = flags.GetDuration("duration")
	}

	if flags.Changed("send-interval") {
		cfg.Sim.SendInterval, _ = flags.GetDuration("send-interval")
	}

	if flags.Changed("trace") {
		cfg.Sim.TracePath, _ = flags.GetString("trace")
	}

	if flags.Changed("monitor") {
		cfg.Monitor.Enabled, _ = flags.GetBool("monitor")
	}

	if flags.Changed("port") {
		cfg.Monitor.Port, _ = flags.GetInt("port")
	}

	if flags.Changed("open-browser") {
		cfg.Monitor.OpenBrowser, _ = flags.GetBool("open-browser")
	}
}
