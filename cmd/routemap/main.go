package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/routemap"
	"github.com/jward/routemap/internal/store"
)

var (
	flagDB     string
	flagFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "routemap",
	Short:         "Reconstruct the HTTP route table of a Spring MVC project",
	Long:          "Routemap scans a Java source tree for Spring MVC routing annotations, links controllers to their interfaces and feign clients, and prints the project's full route table.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "cache database path (default: .routemap/cache.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(clearCmd)
}

var (
	flagWorkers    int
	flagSerial     bool
	flagNoCache    bool
	flagRefresh    bool
	flagExtensions string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree and print its route table",
	Long:  "Extracts routing annotations from every source file, resolves interfaces and feign clients, and prints the deduplicated route table sorted by path. Results are cached per scan root unless --no-cache is set.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().IntVar(&flagWorkers, "workers", 0, "extraction worker count (default: number of CPUs)")
	scanCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable parallel extraction")
	scanCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "do not read or write the scan cache")
	scanCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "ignore any cached result and rescan")
	scanCmd.Flags().StringVar(&flagExtensions, "extensions", "", "comma-separated source extensions (default: .java)")
}

var clearCmd = &cobra.Command{
	Use:   "clear [path]",
	Short: "Invalidate the cached scan for a source tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClear,
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	var st *store.Store
	if !flagNoCache {
		st, err = openStore(targetDir)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	// Serve from cache when allowed and present.
	if st != nil && !flagRefresh {
		cached, err := st.LoadScan(targetDir)
		if err != nil {
			return fmt.Errorf("loading cache: %w", err)
		}
		if cached != nil {
			fmt.Fprintf(os.Stderr, "Cached scan from %s ago (%d routes); use --refresh to rescan\n",
				time.Since(cached.ScannedAt).Round(time.Second), len(cached.Records))
			return outputRoutes(cached.Records)
		}
	}

	engine := routemap.New(buildOptions()...)
	records, err := engine.ScanDirectory(context.Background(), targetDir)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if st != nil {
		if err := st.SaveScan(targetDir, records); err != nil {
			return fmt.Errorf("saving cache: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Scanned %s in %s (%d routes)\n",
		targetDir, time.Since(start).Round(time.Millisecond), len(records))

	return outputRoutes(records)
}

func runClear(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	st, err := openStore(targetDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.InvalidateScan(targetDir); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Cleared cached scan for %s\n", targetDir)
	return nil
}

// buildOptions translates scan flags into engine options.
func buildOptions() []routemap.Option {
	var opts []routemap.Option
	if flagWorkers > 0 {
		opts = append(opts, routemap.WithWorkers(flagWorkers))
	}
	if flagSerial {
		opts = append(opts, routemap.WithParallel(false))
	}
	if flagExtensions != "" {
		exts := strings.Split(flagExtensions, ",")
		for i := range exts {
			exts[i] = strings.TrimSpace(exts[i])
		}
		opts = append(opts, routemap.WithExtensions(exts...))
	}
	return opts
}

// openStore opens (and migrates) the cache database for targetDir.
func openStore(targetDir string) (*store.Store, error) {
	dbPath := resolveDBPath(findRepoRoot(targetDir))
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrating cache: %w", err)
	}
	return st, nil
}

// resolveTargetDir returns the absolute path of the directory to scan.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root without finding .git.
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the cache database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".routemap", "cache.db")
}
