// Command shadow_compare replays read-only material endpoints against this service and the legacy
// deployment and reports status or body differences.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

func main() {
	var (
		goBase      string
		legacyBase  string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8081", "Legacy API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	targets, err := loadTargets(targetsPath)
	if err != nil {
		logger.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
	}

	c := &comparer{client: &http.Client{Timeout: timeout}, goBase: goBase, legacyBase: legacyBase}
	var (
		results  []comparison
		breaking int
		optional int
	)
	for _, t := range targets {
		res := c.compare(t)
		switch {
		case res.breaking():
			breaking++
		case res.optional():
			optional++
		}
		results = append(results, res)
	}

	printReport(os.Stdout, results)
	logger.Info("shadow compare finished", zap.Int("targets", len(results)), zap.Int("breaking", breaking), zap.Int("optional", optional))
	if breaking > 0 {
		os.Exit(1)
	}
}
