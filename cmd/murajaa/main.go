package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/yfadel/murajaa/internal/config"
	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/lifecycle"
	"github.com/yfadel/murajaa/internal/session"
	"github.com/yfadel/murajaa/internal/sm2"
	"github.com/yfadel/murajaa/internal/storage"
	"github.com/yfadel/murajaa/internal/web"
)

func main() {
	// 1. Define and parse command-line flags
	flags := pflag.NewFlagSet("murajaa", pflag.ExitOnError)
	configFile := flags.String("config", "", "Path to a yaml config file")
	flags.String("db.path", "", "Path to the SQLite database file")
	flags.String("http.addr", "", "HTTP listen address")
	flags.String("language.default", "", "Default study language code")
	review := flags.Bool("review", false, "Run a terminal review session instead of serving HTTP")
	cardType := flags.String("card-type", "", "Restrict a review session to 'vocab' or 'conjugation'")
	flags.Parse(os.Args[1:])

	// 2. Load configuration (defaults < file < env < flags)
	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 3. Open the database
	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DB.Path)

	if *review {
		runReview(db, cfg.Language.Default, domain.CardType(*cardType))
		return
	}

	// 4. Serve the JSON API. No completion provider is wired here; the
	// content-trigger endpoints answer 503 until one is configured.
	srv := web.NewServer(db, lifecycle.NewManager(db), nil, cfg.Language.Default)
	slog.Info("listening", "addr", cfg.HTTP.Addr, "language", cfg.Language.Default)
	if err := http.ListenAndServe(cfg.HTTP.Addr, srv); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// runReview walks one review session on the terminal: show the front,
// reveal on enter, read a 0-5 grade, repeat until the snapshot is done.
func runReview(db *storage.DB, languageCode string, cardType domain.CardType) {
	s := session.New(db, languageCode, cardType)
	if err := s.Start(time.Now()); err != nil {
		slog.Error("failed to start review session", "error", err)
		os.Exit(1)
	}

	stats := s.Stats()
	if stats.Total == 0 {
		fmt.Println("No cards due. Come back later.")
		return
	}
	fmt.Printf("%d cards due for %s.\n", stats.Total, languageCode)

	in := bufio.NewScanner(os.Stdin)
	for s.Phase() == session.Presenting {
		v, err := s.Current()
		if err != nil {
			slog.Error("failed to get current card", "error", err)
			os.Exit(1)
		}
		fmt.Printf("\n[%d/%d] %s\n", v.Position, stats.Total, v.Front)
		fmt.Print("(enter to reveal) ")
		if !in.Scan() {
			return // session cancelled, nothing to roll back
		}
		back, err := s.Reveal()
		if err != nil {
			slog.Error("failed to reveal card", "error", err)
			os.Exit(1)
		}
		fmt.Println(back)

		for _, l := range sm2.Labels() {
			fmt.Printf("  %d %s", l.Quality, l.Label)
		}
		fmt.Println()

		for {
			fmt.Print("grade> ")
			if !in.Scan() {
				return
			}
			q, err := strconv.Atoi(strings.TrimSpace(in.Text()))
			if err != nil {
				fmt.Println("enter a number between 0 and 5")
				continue
			}
			if _, err := s.SubmitGrade(sm2.Quality(q), time.Now()); err != nil {
				fmt.Println(err)
				continue
			}
			break
		}
	}

	stats = s.Stats()
	fmt.Printf("\nSession complete: %d reviewed, %d correct, %d incorrect, %d%% accuracy.\n",
		stats.Reviewed, stats.Correct, stats.Incorrect, stats.Accuracy())
}
