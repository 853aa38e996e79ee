package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trainercard/pkg/config"
	"trainercard/pkg/progress"
	"trainercard/process/report"
)

func main() {
	username := flag.String("username", "", "print this user's progress instead of the tracker")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	store, err := progress.Open(cfg.DBDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	if *username != "" {
		user, err := store.UserByName(ctx, *username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "user %s: %v\n", *username, err)
			os.Exit(1)
		}
		p, err := store.Progress(ctx, user.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
			os.Exit(1)
		}
		_ = report.WriteProgress(os.Stdout, p)
		return
	}
	rows, err := store.Latest(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
	_ = report.WriteTracker(os.Stdout, rows)
}
