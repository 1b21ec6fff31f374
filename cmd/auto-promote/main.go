// Command auto-promote applies researcher level promotions for users whose
// activity counters meet the next level's thresholds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"research-tracker-api/config"
	"research-tracker-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.LoadConfig()
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	config.InitDB()
	config.InitRedis()

	var (
		userIDsRaw string
		limit      int
		dryRun     bool
		trigger    string
		lockName   string
	)

	flag.StringVar(&userIDsRaw, "user-ids", "", "comma-separated list of user IDs to evaluate (optional)")
	flag.IntVar(&limit, "limit", 0, "maximum number of users to process (optional)")
	flag.BoolVar(&dryRun, "dry-run", false, "evaluate without writing to the database")
	flag.StringVar(&trigger, "trigger", "cli", "trigger source label stored in promotion_runs")
	flag.StringVar(&lockName, "lock-name", services.DefaultPromotionLockName, "MySQL advisory lock name (empty to disable)")
	flag.Parse()

	if limit < 0 {
		log.Fatal("limit must be greater than or equal to 0")
	}

	userIDs, err := parseUserIDs(userIDsRaw)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := services.NewPromotionJobService(nil)
	summary, err := job.RunForAll(ctx, jobInput(userIDs, limit, dryRun, trigger, lockName))
	if err != nil {
		if errors.Is(err, services.ErrPromotionAlreadyRunning) {
			log.Fatal("auto promote already running (advisory lock held)")
		}
		log.Fatalf("auto promote failed: %v", err)
	}

	fmt.Printf("Users processed: %d (errors: %d)\n", summary.UsersProcessed, summary.UsersWithErrors)
	fmt.Printf("Users promoted: %d\n", summary.UsersPromoted)
	for _, p := range summary.Promotions {
		fmt.Printf("  user %d: %s -> %s\n", p.UserID, p.PreviousLevel, p.NewLevel)
	}

	if dryRun {
		fmt.Println("Dry run complete. Only the run record was written.")
	}

	if summary.UsersWithErrors > 0 {
		os.Exit(2)
	}
}

// jobInput records every run, dry runs included, so they show up in
// promotion_runs next to the ones started from the admin panel.
func jobInput(userIDs []uint, limit int, dryRun bool, trigger, lockName string) *services.PromotionJobInput {
	return &services.PromotionJobInput{
		UserIDs:       userIDs,
		Limit:         limit,
		TriggerSource: trigger,
		LockName:      lockName,
		DryRun:        dryRun,
		RecordRun:     true,
	}
}

func parseUserIDs(raw string) ([]uint, error) {
	var ids []uint
	if strings.TrimSpace(raw) == "" {
		return ids, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id64, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id64 == 0 {
			return nil, fmt.Errorf("invalid user id '%s'", part)
		}
		ids = append(ids, uint(id64))
	}
	return ids, nil
}
