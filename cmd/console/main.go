package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/dialogue-engine/internal/config"
	"github.com/jwebster45206/dialogue-engine/internal/events"
	"github.com/jwebster45206/dialogue-engine/internal/logger"
	"github.com/jwebster45206/dialogue-engine/internal/storage"
	"github.com/jwebster45206/dialogue-engine/pkg/actor"
	"github.com/jwebster45206/dialogue-engine/pkg/dice"
	"github.com/jwebster45206/dialogue-engine/pkg/runner"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
	"github.com/jwebster45206/dialogue-engine/pkg/tags"
)

func main() {
	cfg := config.Load()

	logOut, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	log := logger.Setup(cfg, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = st.Close() // Ignore error in defer
	}()

	filename := ""
	if len(os.Args) > 1 {
		filename = os.Args[1]
	} else if filename, err = selectGraph(ctx, st); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	graph, err := st.GetGraph(ctx, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load dialogue: %v\n", err)
		os.Exit(1)
	}
	for _, problem := range graph.Problems() {
		log.Warn("Dialogue problem", "filename", filename, "problem", problem)
	}

	conversationID := uuid.New()
	log = logger.WithConversation(log, conversationID.String())

	sess := newSession()
	r := runner.New(
		runner.WithDicePrompt(sess),
		runner.WithActionTrigger(sess),
		runner.WithLogger(log),
	)
	r.Subscribe(sess)

	if client := st.Client(); client != nil {
		r.Subscribe(events.NewBroadcaster(ctx, client, conversationID, log))
		log.Info("Publishing dialogue events", "channel", events.Channel(conversationID))
	}

	var pcActor *d20.Actor
	if pc := loadPC(ctx, st, cfg.PCID, log); pc != nil {
		pcActor = pc.Actor
	}
	checker := dice.NewChecker(newResolver(cfg.DiceSeed), pcActor)
	barks := loadBarks(ctx, st, cfg, sess, log)

	if err := r.Begin(graph); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start dialogue: %v\n", err)
		os.Exit(1)
	}

	title := strings.TrimSuffix(filename, ".json")
	p := tea.NewProgram(NewConsoleUI(title, r, sess, checker, barks, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	r.End()
}

// openLog picks where log records go. The UI owns the terminal, so without a
// log file they are dropped.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage.RedisStorage, error) {
	if cfg.RedisURL == "" {
		return storage.NewFileStorage(cfg.DataDir, log), nil
	}

	st, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}
	if err := st.WaitForConnection(ctx, 5, time.Second); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func selectGraph(ctx context.Context, st store.Storage) (string, error) {
	names, err := st.ListGraphs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list dialogues: %w", err)
	}
	if len(names) == 0 {
		return "", errors.New("no dialogues found")
	}

	fmt.Println("Available Dialogues:")
	for i, name := range names {
		fmt.Printf("  %d - %s\n", i+1, strings.TrimSuffix(name, ".json"))
	}
	fmt.Print("\nSelect a dialogue by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(names) {
		return "", errors.New("invalid selection")
	}
	return names[choice-1], nil
}

func newResolver(seed uint64) *dice.Resolver {
	if seed == 0 {
		return dice.NewTimeSeededResolver()
	}
	return dice.NewSeededResolver(seed)
}

// loadPC returns the actor whose attributes modify dice checks, or nil when
// none is configured or it cannot be loaded
func loadPC(ctx context.Context, st store.Storage, pcID string, log *slog.Logger) *actor.PC {
	if pcID == "" {
		return nil
	}
	spec, err := st.GetPCSpec(ctx, pcID)
	if err != nil {
		log.Warn("Failed to load PC, rolling without modifiers", "pc_id", pcID, "error", err)
		return nil
	}
	pc, err := actor.NewPCFromSpec(spec)
	if err != nil {
		log.Warn("Invalid PC, rolling without modifiers", "pc_id", pcID, "error", err)
		return nil
	}
	log.Info("Loaded PC", "pc_id", pcID, "name", pc.DisplayName())
	return pc
}

func loadBarks(ctx context.Context, st store.Storage, cfg *config.Config, display tags.LineDisplay, log *slog.Logger) *tags.Player {
	if cfg.TagFile == "" {
		return nil
	}
	reg, err := st.GetTagRegistry(ctx, cfg.TagFile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("No tag registry", "filename", cfg.TagFile)
		} else {
			log.Warn("Failed to load tag registry", "filename", cfg.TagFile, "error", err)
		}
		return nil
	}
	return tags.NewPlayer(tags.NewTracker(reg, log), display, cfg.DefaultTag, cfg.BarkDuration)
}
