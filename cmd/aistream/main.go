package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai-stream/internal/assistant"
	"ai-stream/internal/config"
	"ai-stream/internal/export"
	"ai-stream/internal/logging"
	"ai-stream/internal/openai"
	"ai-stream/internal/schema"
	"ai-stream/internal/state"
	"ai-stream/internal/store"
	"ai-stream/internal/ui"
)

const version = "0.1.0"

var (
	configPath string
	dataDir    string
	dbPath     string
	seed       int64
	verbose    bool

	cfg    config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aistream",
	Short: "Chat TUI with a simulated assistant and an OpenAI function-schema editor",
	Long: `aistream renders a chat conversation against a simulated assistant that
replies with text, data widgets and interactive input widgets, and ships a
second page for editing OpenAI function-calling schemas stored in a local
SQLite database. Saved schemas propagate to any OpenAI assistants that
reference them.

Run without arguments to start the TUI. Tab switches between the chat page
and the functions page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version needs no config, no data dir, no logger.
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.DataDir = filepath.Clean(dataDir)
			cfg.DBPath = filepath.Join(cfg.DataDir, config.DBFileName)
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if seed != 0 {
			cfg.Seed = seed
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(cfg.DataDir, level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the aistream version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aistream %s\n", version)
	},
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Inspect saved function schemas",
}

var functionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved function schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.List(store.KindFunction)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No functions saved yet.")
			return nil
		}

		fmt.Printf("%-36s  %-24s  %6s  %7s\n", "ID", "NAME", "PARAMS", "USED BY")
		for _, rec := range recs {
			fn, err := store.DecodeFunction(rec)
			if err != nil {
				return err
			}
			fmt.Printf("%-36s  %-24s  %6d  %7d\n",
				fn.ID, fn.SchemaName, len(fn.Parameters), len(fn.UsedBy))
		}
		return nil
	},
}

var functionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a function's OpenAI schema JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		fn, err := st.GetFunction(args[0])
		if err != nil {
			return err
		}
		_, text, err := fn.BuildSchema()
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

var assistantsCmd = &cobra.Command{
	Use:   "assistants",
	Short: "Manage assistant records",
}

var assistantID string

var assistantsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register an assistant by name",
	Long: `Registers an assistant row so function schemas can reference it as a
propagation target. Pass --id to store a real OpenAI assistant id; the
default is a generated one, which is fine for local use.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		id := assistantID
		if id == "" {
			id = schema.NewID()
		}

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()

		payload, err := json.Marshal(map[string]string{"id": id, "name": name})
		if err != nil {
			return fmt.Errorf("encode assistant record: %w", err)
		}
		if err := st.Put(store.KindAssistant, id, name, payload); err != nil {
			return err
		}
		logger.Info("assistant registered", zap.String("id", id), zap.String("name", name))
		fmt.Printf("Registered assistant %s (%s)\n", name, id)
		return nil
	},
}

func runTUI() error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	app, err := state.New(st)
	if err != nil {
		return err
	}
	exporter, err := export.New(cfg.ExportDir)
	if err != nil {
		return err
	}
	responder := assistant.New(cfg.Seed)
	client := openai.New(cfg.OpenAI)

	logger.Info("starting ui",
		zap.String("db", cfg.DBPath),
		zap.Int("functions", len(app.Functions)),
		zap.Int("assistants", len(app.Assistants)))

	p := tea.NewProgram(
		ui.New(cfg, app, st, responder, client, exporter, logger),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/aistream/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the database and log file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Responder RNG seed (0 seeds from the clock)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	assistantsAddCmd.Flags().StringVar(&assistantID, "id", "", "Assistant id (default: generated)")

	functionsCmd.AddCommand(functionsListCmd)
	functionsCmd.AddCommand(functionsShowCmd)
	assistantsCmd.AddCommand(assistantsAddCmd)

	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(assistantsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
