// Package main provides the affectctl CLI for offline replays and
// recorded session management.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/affect_computer/internal/affect"
	"github.com/relabs-tech/affect_computer/internal/app"
	"github.com/relabs-tech/affect_computer/internal/config"
	"github.com/relabs-tech/affect_computer/internal/motion"
	"github.com/relabs-tech/affect_computer/internal/store"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "affectctl",
		Short: "Offline tools for the affect computer",
		Long: `affectctl replays recorded accelerometer sessions through the
affect pipeline and manages the sessions stored by the engine.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("affectctl v%s (%s)\n", version, commit)
		},
	})

	replayCmd := &cobra.Command{
		Use:   "replay [file.csv]",
		Short: "Run a ts,x,y,z recording through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().String("tuning", "", "YAML threshold overrides")
	replayCmd.Flags().Int("window", affect.DefaultExtractorConfig().WindowSize, "feature window size in samples")
	replayCmd.Flags().String("store", "", "SQLite database to record the replay into")
	replayCmd.Flags().Bool("quiet", false, "only print the summary")
	rootCmd.AddCommand(replayCmd)

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Write a mock motion profile as a CSV recording",
		RunE:  runRecord,
	}
	recordCmd.Flags().String("profile", "walk", "mock motion profile")
	recordCmd.Flags().Int("samples", 500, "number of samples")
	recordCmd.Flags().Duration("interval", 20*time.Millisecond, "time between samples")
	recordCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(recordCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "profiles",
		Short: "List mock motion profiles",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range motion.Profiles() {
				fmt.Println(name)
			}
		},
	})

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE:  runSessions,
	}
	sessionsCmd.Flags().String("store", "affect.db", "SQLite database")
	rootCmd.AddCommand(sessionsCmd)

	exportCmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Export a recorded session as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().String("store", "affect.db", "SQLite database")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	tuning, _ := cmd.Flags().GetString("tuning")
	window, _ := cmd.Flags().GetInt("window")
	storePath, _ := cmd.Flags().GetString("store")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg := affect.DefaultConfig()
	cfg.Extractor.WindowSize = window
	if tuning != "" {
		t, err := config.LoadTuning(tuning)
		if err != nil {
			return err
		}
		cfg.Thresholds = t
	}

	src, err := motion.LoadReplay(args[0], false)
	if err != nil {
		return err
	}

	var (
		sink      app.ResultSink
		sessionID string
	)
	if storePath != "" {
		st, err := store.Open(storePath)
		if err != nil {
			return err
		}
		defer st.Close()
		sess, err := st.StartSession("replay:" + args[0])
		if err != nil {
			return err
		}
		sink, sessionID = st, sess.ID
		fmt.Fprintf(cmd.ErrOrStderr(), "recording session %s\n", sess.ID)
	}

	out := cmd.OutOrStdout()
	if quiet {
		out = nil
	}
	snap, err := app.Replay(src, cfg, sink, sessionID, out)
	if err != nil {
		return err
	}
	app.WriteSummary(cmd.OutOrStdout(), snap)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	profile, _ := cmd.Flags().GetString("profile")
	samples, _ := cmd.Flags().GetInt("samples")
	interval, _ := cmd.Flags().GetDuration("interval")
	outPath, _ := cmd.Flags().GetString("out")
	if samples < 1 {
		return fmt.Errorf("--samples must be positive, got %d", samples)
	}

	src, err := motion.NewMockSource(profile, time.Now().UTC().Truncate(time.Second), interval)
	if err != nil {
		return err
	}
	data, err := motion.Drain(src, samples)
	if err != nil {
		return err
	}

	if outPath == "" {
		return motion.WriteCSV(cmd.OutOrStdout(), data)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := motion.WriteCSV(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runSessions(cmd *cobra.Command, args []string) error {
	storePath, _ := cmd.Flags().GetString("store")

	st, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", s.ID, s.StartedAt.Local().Format(time.DateTime), s.Source)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	storePath, _ := cmd.Flags().GetString("store")
	outPath, _ := cmd.Flags().GetString("out")

	st, err := store.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if outPath == "" {
		return st.ExportCSV(cmd.OutOrStdout(), args[0])
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := st.ExportCSV(f, args[0]); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
