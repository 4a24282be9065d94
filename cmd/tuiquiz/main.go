// Package main provides the CLI entrypoint for tuiquiz.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiquiz/internal/config"
	"github.com/verte-zerg/tuiquiz/internal/history"
	"github.com/verte-zerg/tuiquiz/internal/logger"
	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/questions"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/store"
	"github.com/verte-zerg/tuiquiz/internal/tui"
)

const (
	defaultDuration  = time.Duration(model.DefaultTotalSeconds) * time.Second
	defaultStore     = "sqlite"
	defaultRedisAddr = "localhost:6379"
	defaultLogLevel  = "info"
	redisKeyPrefix   = "tuiquiz:"
)

var (
	quizQuestions string
	quizDuration  time.Duration
	quizStore     string
	quizRedisAddr string
	quizLogLevel  string

	historyLast int

	questionsInit bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiquiz",
		Short:         "Timed multiple-choice quiz in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runQuizCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&quizQuestions, "questions", config.DefaultQuestionsPath(), "question document (path or http(s) URL)")
	flags.DurationVar(&quizDuration, "duration", defaultDuration, "time allowed for the whole quiz")
	flags.StringVar(&quizStore, "store", defaultStore, "progress store: sqlite, redis or memory")
	flags.StringVar(&quizRedisAddr, "redis-addr", defaultRedisAddr, "redis address for --store redis")
	flags.StringVar(&quizLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newQuestionsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// loadConfig merges the config file into flags that were not set explicitly.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "questions", &quizQuestions, fileCfg.Quiz.Questions)
	if err := applyDurationConfig(cmd, "duration", &quizDuration, fileCfg.Quiz.Duration); err != nil {
		return model.Config{}, err
	}
	applyStringConfig(cmd, "store", &quizStore, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "redis-addr", &quizRedisAddr, fileCfg.Storage.RedisAddr)
	applyStringConfig(cmd, "log-level", &quizLogLevel, fileCfg.Log.Level)

	cfg := model.Config{
		QuestionsPath: quizQuestions,
		TotalSeconds:  int(quizDuration / time.Second),
		Store:         strings.ToLower(strings.TrimSpace(quizStore)),
		RedisAddr:     quizRedisAddr,
		LogLevel:      quizLogLevel,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.QuestionsPath == "" {
		return fmt.Errorf("--questions must not be empty")
	}
	if cfg.TotalSeconds <= 0 {
		return fmt.Errorf("--duration must be at least 1s")
	}
	switch cfg.Store {
	case "sqlite", "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			return fmt.Errorf("--redis-addr must not be empty with --store redis")
		}
	default:
		return fmt.Errorf("--store must be one of sqlite, redis, memory")
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func runQuizCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tuiquiz needs an interactive terminal")
	}

	log := newLogger(cfg)
	defer func() {
		_ = log.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	kv, closeKV, err := openKV(cfg, st)
	if err != nil {
		return err
	}
	defer closeKV()

	log.Info("starting quiz",
		zap.String("questions", cfg.QuestionsPath),
		zap.String("store", cfg.Store),
		zap.Int("seconds", cfg.TotalSeconds),
	)
	m := tui.NewModel(questions.Open(cfg.QuestionsPath), kv, quiz.Options{
		TotalSeconds: cfg.TotalSeconds,
		Logger:       log,
		Recorder:     st,
	})
	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newLogger(cfg model.Config) *zap.Logger {
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, File: config.DefaultLogPath()})
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		return zap.NewNop()
	}
	return log
}

// openKV returns the progress store selected by cfg. The SQLite store is
// shared with the attempt log and closed by the caller.
func openKV(cfg model.Config, st *store.Store) (quiz.KV, func(), error) {
	switch cfg.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		kv := store.NewRedisKV(client, redisKeyPrefix)
		return kv, func() {
			if cerr := kv.Close(); cerr != nil {
				logErrf("failed to close redis: %v\n", cerr)
			}
		}, nil
	case "memory":
		return store.NewMemory(), func() {}, nil
	default:
		return st, func() {}, nil
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the quiz in progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	kv, closeKV, err := openKV(cfg, st)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := kv.Delete(cmd.Context(), quiz.DefaultKey); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared."); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Validate the question document",
		Args:  cobra.NoArgs,
		RunE:  runQuestionsCmd,
	}
	cmd.Flags().BoolVar(&questionsInit, "init", false, "write a sample question document if none exists")
	return cmd
}

func runQuestionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if questionsInit {
		if err := writeSampleQuestions(cfg.QuestionsPath); err != nil {
			return err
		}
	}
	qs, err := questions.Open(cfg.QuestionsPath).Load(cmd.Context())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logErrf("No question document at %s. Create one with: tuiquiz questions --init\n", cfg.QuestionsPath)
		}
		return fmt.Errorf("failed to load questions: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d questions OK (%s)\n", len(qs), cfg.QuestionsPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writeSampleQuestions(path string) error {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return fmt.Errorf("--init needs a local path, got %s", path)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat questions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create questions directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleQuestions), 0o644); err != nil {
		return fmt.Errorf("failed to write questions: %w", err)
	}
	logErrf("Wrote %s\n", path)
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return history.Write(cmd.Context(), cmd.OutOrStdout(), st, historyLast)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# questions = %q   # Question document (path or http(s) URL)
# duration = %q            # Time allowed for the whole quiz

[storage]
# backend = %q          # sqlite, redis or memory
# redis-addr = %q  # Used with backend = "redis"

[log]
# level = %q              # debug, info, warn, error
`,
		config.DefaultQuestionsPath(),
		defaultDuration.String(),
		defaultStore,
		defaultRedisAddr,
		defaultLogLevel,
	)
}

const sampleQuestions = `[
  {"question": "What is the capital of France?", "options": ["Berlin", "Madrid", "Paris", "Rome"], "answer": "Paris"},
  {"question": "Which planet is known as the Red Planet?", "options": ["Earth", "Mars", "Jupiter", "Venus"], "answer": "Mars"},
  {"question": "What is 7 x 8?", "options": ["54", "56", "58", "64"], "answer": "56"},
  {"question": "Which gas do plants absorb from the air?", "options": ["Oxygen", "Nitrogen", "Carbon dioxide", "Helium"], "answer": "Carbon dioxide"},
  {"question": "How many continents are there?", "options": ["5", "6", "7", "8"], "answer": "7"},
  {"question": "Who wrote Romeo and Juliet?", "options": ["Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain"], "answer": "William Shakespeare"},
  {"question": "What is the largest ocean?", "options": ["Atlantic", "Indian", "Arctic", "Pacific"], "answer": "Pacific"},
  {"question": "What is the boiling point of water at sea level in Celsius?", "options": ["90", "100", "110", "120"], "answer": "100"},
  {"question": "Which language runs natively in web browsers?", "options": ["Go", "Python", "JavaScript", "C"], "answer": "JavaScript"},
  {"question": "What is the square root of 81?", "options": ["7", "8", "9", "10"], "answer": "9"}
]
`

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
