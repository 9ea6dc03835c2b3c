// Command importer loads track files and directories into the track database.
//
//	importer [-workers n] [-zone Europe/Berlin] path...
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jengzang/trakxmap-backend-go/internal/config"
	"github.com/jengzang/trakxmap-backend-go/internal/database"
	"github.com/jengzang/trakxmap-backend-go/internal/loader"
	"github.com/jengzang/trakxmap-backend-go/internal/repository"
	"github.com/jengzang/trakxmap-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.DBPath, "database file")
	workers := flag.Int("workers", cfg.LoadWorkers, "files loaded in parallel")
	zone := flag.String("zone", cfg.TimeZone, "IANA time zone for timestamps, empty keeps the file's wall clock")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: importer [flags] path...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	paths, err := collectFiles(flag.Args(), loader.Extensions())
	if err != nil {
		log.Fatalf("Failed to collect files: %v", err)
	}
	if len(paths) == 0 {
		log.Println("No track files found")
		return
	}

	if err := database.Init(database.Config{Path: *dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	trackService := service.NewTrackService(
		repository.NewTrackRepository(database.GetDB()),
		loader.NewChain(loader.Options{Zone: *zone}),
		*workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetDescription("[GPX] import"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	result, err := trackService.LoadFiles(ctx, paths, func(string, error) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	fmt.Println()

	for _, t := range result.Tracks {
		fmt.Printf("imported %d %s\n", t.ID, t.DisplayName())
	}
	for _, f := range result.Failed {
		fmt.Printf("failed   %s: %v\n", f.Path, f.Err)
	}
	if err != nil {
		log.Fatalf("Import interrupted: %v", err)
	}
}

// collectFiles expands directories into the files below them with one of the given extensions
func collectFiles(args []string, exts []string) ([]string, error) {
	accepted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		accepted[ext] = true
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && accepted[strings.ToLower(filepath.Ext(path))] {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
