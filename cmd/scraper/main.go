package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fightstreet/cfn-stats/internal/app"
	"github.com/fightstreet/cfn-stats/internal/config"
	"github.com/fightstreet/cfn-stats/internal/platform/logging"
	"github.com/fightstreet/cfn-stats/internal/usecase"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.NewServices(ctx, cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = services.Close()
	}()

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "daily":
		err = runDaily(ctx, cfg, services.Ingestion, os.Args[2:])
	case "rebuild":
		err = runRebuild(ctx, cfg, services.Ingestion, os.Args[2:])
	case "club":
		err = runClub(ctx, cfg, services.Ingestion)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("scraper command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// runDaily captures today's documents for the whole roster and inserts the
// flattened rows. Rerunning after a partial failure is safe.
func runDaily(ctx context.Context, cfg config.Config, svc *usecase.IngestionService, args []string) error {
	fs := flag.NewFlagSet("daily", flag.ExitOnError)
	exhaustive := fs.Bool("exhaustive", false, "walk every battlelog page instead of stopping at known matches")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := svc.RunDaily(ctx, usecase.DailyRunInput{
		Roster:     cfg.Roster,
		ClubID:     cfg.ClubID,
		Date:       time.Now(),
		Exhaustive: *exhaustive,
	})
	if err != nil {
		return err
	}

	logging.Default().Info("daily capture finished",
		"date", result.Date.Format(time.DateOnly),
		"owners", result.OwnersProcessed,
		"ranking_rows", result.RankingRows,
		"battlelog_pages", result.BattlelogPages,
		"club_members", result.ClubMembers,
	)
	return nil
}

// runRebuild replays a past date from cached documents only. Owners whose
// cache is missing or expired are skipped rather than refetched.
func runRebuild(ctx context.Context, cfg config.Config, svc *usecase.IngestionService, args []string) error {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	dateArg := fs.String("date", "", "capture date to rebuild (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*dateArg) == "" {
		return fmt.Errorf("-date is required")
	}
	date, err := time.Parse(time.DateOnly, *dateArg)
	if err != nil {
		return fmt.Errorf("parse -date: %w", err)
	}

	if err := svc.RebuildDate(ctx, cfg.Roster, date); err != nil {
		return err
	}
	logging.Default().Info("rebuild finished", "date", date.Format(time.DateOnly))
	return nil
}

func runClub(ctx context.Context, cfg config.Config, svc *usecase.IngestionService) error {
	members, err := svc.SyncClub(ctx, cfg.ClubID, time.Now())
	if err != nil {
		return err
	}
	logging.Default().Info("club roster synced", "club_id", cfg.ClubID, "members", len(members))
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: scraper <command> [flags]

commands:
  daily [-exhaustive]      capture today's stats for the configured roster
  rebuild -date DATE       rebuild a past date from cached documents
  club                     refresh the club member roster`)
}
