// Command termwire runs a shell (or any command) against a boundary
// terminal and shows the result. The terminal is either in-process or a
// guest bundle driven over the Wasm boundary; the picture on screen must
// not depend on which.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woxQAQ/termwire/internal/bundle"
	"github.com/woxQAQ/termwire/internal/config"
	"github.com/woxQAQ/termwire/internal/engine"
	"github.com/woxQAQ/termwire/internal/session"
	"github.com/woxQAQ/termwire/internal/term"
	"github.com/woxQAQ/termwire/internal/view"
	"github.com/woxQAQ/termwire/internal/wasm"
	"github.com/woxQAQ/termwire/pkg/wire"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// boundary is the full surface both terminal flavors expose: what a
// session writes into and a renderer reads from.
type boundary interface {
	view.Source
	session.Sink
	IsDirty() bool
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	cols := flag.Int("cols", 0, "Terminal columns (overrides config)")
	rows := flag.Int("rows", 0, "Terminal rows (overrides config)")
	bundleDir := flag.String("bundle-dir", "", "Guest bundle directory (overrides config)")
	bundleName := flag.String("bundle", "", "Drive the named guest bundle instead of the in-process terminal")
	withView := flag.Bool("view", false, "Attach the interactive screen renderer")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("termwire %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("Failed to load configuration", zap.Error(err))
	}

	if *cols > 0 {
		cfg.Terminal.Cols = *cols
	}
	if *rows > 0 {
		cfg.Terminal.Rows = *rows
	}
	if *bundleDir != "" {
		cfg.Bundles.Dir = *bundleDir
	}

	logger := buildLogger(cfg.Log, *withView)
	defer logger.Sync()

	logger.Info("Starting termwire",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("date", date),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	command, args := "", []string(nil)
	if rest := flag.Args(); len(rest) > 0 {
		command, args = rest[0], rest[1:]
	}

	if err := run(ctx, cfg, *bundleName, command, args, *withView, logger); err != nil {
		logger.Fatal("Session failed", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// buildLogger maps the log config onto a zap logger. With the screen
// renderer attached, log lines go to a file instead of fighting the
// renderer for the calling terminal.
func buildLogger(cfg config.LogConfig, withView bool) *zap.Logger {
	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	if withView {
		zc.OutputPaths = []string{"termwire.log"}
		zc.ErrorOutputPaths = []string{"termwire.log"}
	}

	logger, err := zc.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}

func run(ctx context.Context, cfg *config.Config, bundleName, command string, args []string, withView bool, logger *zap.Logger) error {
	wireCfg := cfg.Terminal.WireConfig()

	var (
		bt      boundary
		cleanup func()
	)

	if bundleName != "" {
		runtime, err := wasm.NewRuntime(ctx, logger, &wasm.RuntimeConfig{
			MemoryPages:  cfg.Wasm.MemoryPages,
			DebugEnabled: cfg.Wasm.Debug,
			CacheDir:     cfg.Wasm.CacheDir,
			MaxInstances: cfg.Wasm.MaxInstances,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize wasm runtime: %w", err)
		}

		manager := bundle.NewManager(cfg.Bundles.Dir, runtime, wasm.NewHostFunctions(logger), logger)
		if err := manager.LoadAll(ctx); err != nil {
			_ = runtime.Close(ctx)
			return err
		}

		inst, err := manager.Instantiate(ctx, bundleName)
		if err != nil {
			_ = manager.Shutdown(ctx)
			return err
		}

		remote, err := wasm.NewRemoteTerminal(ctx, inst,
			int32(cfg.Terminal.Cols), int32(cfg.Terminal.Rows), &wireCfg, logger)
		if err != nil {
			_ = manager.Shutdown(ctx)
			return err
		}

		bt = remote.Bind(ctx)
		cleanup = func() {
			_ = remote.Close(ctx)
			_ = manager.Shutdown(ctx)
		}
	} else {
		tc := term.ConfigFromWire(wireCfg)
		h, err := term.New(cfg.Terminal.Cols, cfg.Terminal.Rows, &tc, engine.New, logger)
		if err != nil {
			return fmt.Errorf("failed to construct terminal: %w", err)
		}
		bt = h
		cleanup = h.Close
	}
	defer cleanup()

	sess, err := session.Start(session.Config{
		Command: command,
		Args:    args,
		Cols:    cfg.Terminal.Cols,
		Rows:    cfg.Terminal.Rows,
	}, bt, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	if withView {
		return runView(ctx, bt, sess, logger)
	}
	return runHeadless(ctx, bt, sess)
}

// runView drives the interactive loop: key events go to the session, the
// session's output lands in the terminal, and dirty rows are repainted.
func runView(ctx context.Context, bt boundary, sess *session.Session, logger *zap.Logger) error {
	v, err := view.New(logger)
	if err != nil {
		return err
	}
	defer v.Close()

	// Adopt the real screen geometry before the first paint.
	if w, h := v.Screen().Size(); w > 0 && h > 0 {
		if err := sess.Resize(w, h); err != nil {
			logger.Warn("Initial resize failed", zap.Error(err))
		}
	}

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go v.Screen().ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			return sess.Wait()
		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventResize:
				w, h := tev.Size()
				if err := sess.Resize(w, h); err != nil {
					logger.Warn("Resize failed", zap.Error(err))
				}
				v.Screen().Sync()
			case *tcell.EventKey:
				if b := keyBytes(tev); len(b) > 0 {
					if _, err := sess.Write(b); err != nil {
						logger.Warn("Input write failed", zap.Error(err))
					}
				}
			}
		case <-ticker.C:
			if bt.IsDirty() {
				v.Render(bt)
			}
		}
	}
}

// runHeadless dumps dirty rows as plain text. Useful for watching what a
// guest bundle does to the screen without taking over the calling terminal.
func runHeadless(ctx context.Context, bt boundary, sess *session.Session) error {
	go func() {
		_, _ = io.Copy(sess, os.Stdin)
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			dumpDirty(bt, os.Stdout)
			return sess.Wait()
		case <-ticker.C:
			dumpDirty(bt, os.Stdout)
		}
	}
}

// dumpDirty prints every dirty row, then clears dirty state.
func dumpDirty(bt boundary, w io.Writer) {
	if !bt.IsDirty() {
		return
	}

	cols := bt.Cols()
	if cols <= 0 {
		return
	}
	cells := make([]wire.Cell, cols)

	for row := 0; row < bt.Rows(); row++ {
		if !bt.IsRowDirty(row) {
			continue
		}
		n, err := bt.Line(row, cells)
		if err != nil {
			continue
		}

		var sb strings.Builder
		for _, c := range cells[:n] {
			if c.Width == wire.WidthZero {
				continue
			}
			if c.Codepoint == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(rune(c.Codepoint))
		}
		fmt.Fprintf(w, "%3d|%s\n", row, strings.TrimRight(sb.String(), " "))
	}

	bt.ClearDirty()
}

// keyBytes translates a tcell key event into the byte sequence an xterm
// style terminal would send for it.
func keyBytes(ev *tcell.EventKey) []byte {
	var b []byte

	switch key := ev.Key(); key {
	case tcell.KeyRune:
		b = []byte(string(ev.Rune()))
	case tcell.KeyEnter:
		b = []byte{'\r'}
	case tcell.KeyTab:
		b = []byte{'\t'}
	case tcell.KeyBacktab:
		b = []byte("\x1b[Z")
	case tcell.KeyEsc:
		b = []byte{0x1b}
	case tcell.KeyBackspace:
		b = []byte{0x08}
	case tcell.KeyBackspace2:
		b = []byte{0x7f}
	case tcell.KeyUp:
		b = []byte("\x1b[A")
	case tcell.KeyDown:
		b = []byte("\x1b[B")
	case tcell.KeyRight:
		b = []byte("\x1b[C")
	case tcell.KeyLeft:
		b = []byte("\x1b[D")
	case tcell.KeyHome:
		b = []byte("\x1b[H")
	case tcell.KeyEnd:
		b = []byte("\x1b[F")
	case tcell.KeyInsert:
		b = []byte("\x1b[2~")
	case tcell.KeyDelete:
		b = []byte("\x1b[3~")
	case tcell.KeyPgUp:
		b = []byte("\x1b[5~")
	case tcell.KeyPgDn:
		b = []byte("\x1b[6~")
	case tcell.KeyF1:
		b = []byte("\x1bOP")
	case tcell.KeyF2:
		b = []byte("\x1bOQ")
	case tcell.KeyF3:
		b = []byte("\x1bOR")
	case tcell.KeyF4:
		b = []byte("\x1bOS")
	case tcell.KeyF5:
		b = []byte("\x1b[15~")
	case tcell.KeyF6:
		b = []byte("\x1b[17~")
	case tcell.KeyF7:
		b = []byte("\x1b[18~")
	case tcell.KeyF8:
		b = []byte("\x1b[19~")
	case tcell.KeyF9:
		b = []byte("\x1b[20~")
	case tcell.KeyF10:
		b = []byte("\x1b[21~")
	case tcell.KeyF11:
		b = []byte("\x1b[23~")
	case tcell.KeyF12:
		b = []byte("\x1b[24~")
	default:
		// Control combinations arrive as their raw byte (KeyCtrlA == 0x01).
		if key < 0x80 {
			b = []byte{byte(key)}
		}
	}

	if len(b) > 0 && ev.Modifiers()&tcell.ModAlt != 0 {
		return append([]byte{0x1b}, b...)
	}
	return b
}
