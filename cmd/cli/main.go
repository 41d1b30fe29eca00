package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wichananm65/slopeselector/internal/infrastructure/backend"
	"github.com/wichananm65/slopeselector/internal/infrastructure/config"
	"github.com/wichananm65/slopeselector/internal/infrastructure/database/sqlite"
	"github.com/wichananm65/slopeselector/internal/infrastructure/logging"
	"github.com/wichananm65/slopeselector/internal/interface/presenter"
	"github.com/wichananm65/slopeselector/internal/usecase"
)

// scope is the single local storage scope a terminal uses.
const scope = "local"

const helpText = `Type what you are looking for and press enter.
  /history   list past recommendations
  /open N    reopen history entry N
  /back      start a new search
  /home      clear the prompt and go home
  /help      show this help
  /quit      exit
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	storagePath := flag.String("storage", defaultStoragePath(), "sqlite file holding the local user id")
	backendURL := flag.String("backend", cfg.BackendURL, "recommendation backend base URL")
	logLevel := flag.String("log-level", "warn", "log level (written to stderr)")
	flag.Parse()

	log, err := logging.New(*logLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := sqlite.Open(*storagePath)
	if err != nil {
		log.WithError(err).Fatal("open local storage")
	}
	defer store.Close()

	client := backend.NewClient(*backendURL, cfg.RequestTimeout, log)
	sessions := usecase.NewSessions(store, client, log, cfg.RequestTimeout)
	ctrl, err := sessions.Controller(ctx, scope)
	if err != nil {
		log.WithError(err).Fatal("resolve user id")
	}
	renderer, err := presenter.NewRenderer()
	if err != nil {
		log.WithError(err).Fatal("load templates")
	}

	log.WithField("user_id", ctrl.UserID()).Debug("session ready")
	if err := run(ctx, os.Stdin, os.Stdout, ctrl, renderer, log); err != nil {
		log.WithError(err).Error("terminal loop")
	}
	ctrl.Wait()
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "slopeselector.db"
	}
	return filepath.Join(dir, "slopeselector", "local.db")
}

// run reads one command per line until EOF, /quit or ctx ends.
func run(ctx context.Context, in io.Reader, out io.Writer, ctrl *usecase.Controller, renderer *presenter.Renderer, log logrus.FieldLogger) error {
	if err := renderer.RenderText(out, ctrl.State()); err != nil {
		return err
	}
	fmt.Fprint(out, "> ")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		quit, show := apply(ctx, out, ctrl, line)
		if quit {
			return nil
		}
		if show {
			if err := renderer.RenderText(out, ctrl.State()); err != nil {
				log.WithError(err).Error("render")
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

// apply executes one input line and reports whether to quit and whether the state
// should be drawn again.
func apply(ctx context.Context, out io.Writer, ctrl *usecase.Controller, line string) (quit, show bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
		return false, false
	case "/quit", "/exit":
		return true, false
	case "/help":
		fmt.Fprint(out, helpText)
		return false, false
	case "/history":
		ctrl.NavigateHistory(ctx)
	case "/back":
		ctrl.Back()
	case "/home":
		ctrl.NavigateHome()
	case "/open":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			fmt.Fprintln(out, "usage: /open N")
			return false, false
		}
		if ctrl.State().Page != usecase.PageHistory {
			fmt.Fprintln(out, "open the history first with /history")
			return false, false
		}
		item, ok := ctrl.HistoryItemAt(n - 1)
		if !ok {
			fmt.Fprintf(out, "no history entry %d\n", n)
			return false, false
		}
		ctrl.SelectItem(ctx, item.ID)
	default:
		if strings.HasPrefix(cmd, "/") {
			fmt.Fprintf(out, "unknown command %s, try /help\n", cmd)
			return false, false
		}
		fmt.Fprintln(out, "Getting Recommendations...")
		ctrl.Submit(ctx, line)
	}
	return false, true
}
