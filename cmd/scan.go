/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/engine"
	"github.com/substantialcattle5/stillsuit/internal/index"
	"github.com/substantialcattle5/stillsuit/internal/logger"
	"github.com/substantialcattle5/stillsuit/internal/placement"
	"github.com/substantialcattle5/stillsuit/internal/progress"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
	"github.com/substantialcattle5/stillsuit/internal/walker"
	"github.com/substantialcattle5/stillsuit/util"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <root_dir>",
	Short: "Scan a directory tree and separate duplicate files",
	Long: `Scan every matching file under the given root, fingerprint its content
and copy first-seen files into UniqueFiles/ and repeats into DuplicateFiles/.

By default both destination directories and the persisted index live inside
the scan root; use --output to place them elsewhere. Interrupting a scan
with Ctrl+C checkpoints progress before exiting, and the next run resumes
from the persisted index.

Examples:
  stillsuit scan ~/photos
  stillsuit scan ~/photos --output /mnt/sorted --extensions .jpg,.png
  stillsuit scan ~/photos --dry-run --verbose
  stillsuit scan ~/photos --all-types --remove-source`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	rootDir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving root directory: %w", err)
	}
	info, err := os.Stat(rootDir)
	if err != nil {
		return fmt.Errorf("root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", rootDir)
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = rootDir
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolving output directory: %w", err)
	}

	cfg := config.New(rootDir, outputDir)
	if err := applyFileConfig(cmd, &cfg); err != nil {
		return err
	}
	if err := applyScanFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	clearIndex, _ := cmd.Flags().GetBool("clear-index")

	if !cfg.DryRun {
		for _, dir := range []string{cfg.OutputDir, cfg.UniqueDir(), cfg.DuplicateDir()} {
			if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
		if err := placement.CheckFreeSpace(cfg.OutputDir, cfg.MinFreeSpace); err != nil {
			return err
		}
		if err := logger.OpenFile(cfg.LogPath()); err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logger.Close()
	}

	store, cleanup, err := openScanStore(&cfg)
	if err != nil {
		return fmt.Errorf("opening fingerprint index: %w", err)
	}
	defer cleanup()

	if clearIndex {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing fingerprint index: %w", err)
		}
		if err := os.Remove(cfg.SnapshotPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing snapshot: %w", err)
		}
	}

	files, err := walker.Collect(rootDir, walker.Options{
		Extensions:  cfg.Extensions,
		ExcludeDirs: []string{cfg.UniqueDir(), cfg.DuplicateDir()},
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", rootDir, err)
	}
	if len(files) == 0 {
		fmt.Println("No matching files found.")
		return nil
	}

	eng, err := engine.New(cfg, store, snapshot.New(cfg.SnapshotPath()))
	if err != nil {
		return fmt.Errorf("initializing scan: %w", err)
	}

	progressMgr := progress.NewManager(progress.Options{
		Quiet:   quiet,
		Verbose: verbose,
	})
	defer progressMgr.Cleanup()

	ctx := progressMgr.SetupCancellation(context.Background())
	eng.SetProgressManager(progressMgr)

	progressMgr.PrintInfo("Found %d candidate files under %s (%d fingerprints already indexed)\n",
		len(files), rootDir, eng.IndexSize())

	description := "Processing files"
	if cfg.DryRun {
		description = "Classifying files (dry run)"
	}
	progressMgr.InitScanProgress(len(files), description)

	runErr := eng.Run(ctx, files)
	progressMgr.FinishScanProgress()
	if runErr != nil {
		return fmt.Errorf("scan failed: %w", runErr)
	}

	printScanSummary(&cfg, eng)
	return nil
}

// openScanStore opens the durable index. A dry run against a directory that
// has no index yet gets a throwaway store in a temp directory, so the run
// leaves nothing behind.
func openScanStore(cfg *config.Config) (*index.Store, func(), error) {
	dataDir := cfg.IndexDir()
	cleanupDir := ""

	if cfg.DryRun {
		if _, err := os.Stat(filepath.Join(dataDir, constants.IndexDBName)); os.IsNotExist(err) {
			tmpDir, err := os.MkdirTemp("", "stillsuit-dryrun-")
			if err != nil {
				return nil, nil, err
			}
			dataDir = tmpDir
			cleanupDir = tmpDir
		}
	}

	store, err := index.NewStore(dataDir, cfg.CheckpointInterval)
	if err != nil {
		if cleanupDir != "" {
			os.RemoveAll(cleanupDir)
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("closing fingerprint index: %v", err)
		}
		if cleanupDir != "" {
			os.RemoveAll(cleanupDir)
		}
	}
	return store, cleanup, nil
}

// applyFileConfig layers an optional stillsuit.yaml over the defaults.
func applyFileConfig(cmd *cobra.Command, cfg *config.Config) error {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = filepath.Join(cfg.RootDir, "stillsuit.yaml")
	}

	fileCfg, err := config.LoadFileConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", configPath, err)
	}
	if fileCfg == nil {
		if explicit {
			return fmt.Errorf("config file %s not found", configPath)
		}
		return nil
	}
	return fileCfg.Apply(cfg)
}

// applyScanFlags layers explicit command-line flags over the config,
// winning over both defaults and the config file.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("extensions") {
		extensions, _ := cmd.Flags().GetStringSlice("extensions")
		cfg.Extensions = config.NormalizeExtensions(extensions)
	}
	if allTypes, _ := cmd.Flags().GetBool("all-types"); allTypes {
		cfg.Extensions = nil
	}
	if cmd.Flags().Changed("algorithm") {
		cfg.HashAlgorithm, _ = cmd.Flags().GetString("algorithm")
	}
	if cmd.Flags().Changed("chunk-size") {
		raw, _ := cmd.Flags().GetString("chunk-size")
		size, err := util.ParseChunkSize(raw)
		if err != nil {
			return fmt.Errorf("invalid chunk size %q: %w", raw, err)
		}
		cfg.ChunkSize = size
	}
	if cmd.Flags().Changed("checkpoint-interval") {
		cfg.CheckpointInterval, _ = cmd.Flags().GetInt("checkpoint-interval")
	}
	cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	cfg.RemoveSource, _ = cmd.Flags().GetBool("remove-source")

	if cfg.DryRun && cfg.RemoveSource {
		return fmt.Errorf("--remove-source cannot be combined with --dry-run")
	}
	return nil
}

func printScanSummary(cfg *config.Config, eng *engine.Engine) {
	stats := eng.Stats()

	fmt.Println()
	if eng.Interrupted() {
		color.Yellow("Scan interrupted - progress saved, rerun the same command to resume")
	} else if cfg.DryRun {
		color.Cyan("Dry run complete - no files were copied")
	} else {
		color.Green("Scan complete")
	}

	fmt.Printf("  Processed:  %d files\n", stats.Processed)
	fmt.Printf("  Unique:     %d\n", stats.Unique)
	fmt.Printf("  Duplicates: %d\n", stats.Duplicates)
	if stats.Redundant > 0 {
		fmt.Printf("  Already placed: %d\n", stats.Redundant)
	}
	if stats.Skipped > 0 {
		color.Yellow("  Skipped:    %d (see %s)", stats.Skipped, cfg.LogPath())
	}
	fmt.Printf("  Index size: %d fingerprints\n", eng.IndexSize())

	if !cfg.DryRun {
		fmt.Printf("\nUnique files:    %s\n", cfg.UniqueDir())
		fmt.Printf("Duplicate files: %s\n", cfg.DuplicateDir())
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output directory for separated files and persisted state (default: the scan root)")
	scanCmd.Flags().StringSlice("extensions", config.DefaultExtensions(), "File extensions to include")
	scanCmd.Flags().Bool("all-types", false, "Ignore the extension allow-list and scan every file")
	scanCmd.Flags().String("algorithm", constants.HashAlgorithmSHA256, "Fingerprint algorithm (sha1, sha256, sha512, blake3)")
	scanCmd.Flags().String("chunk-size", "64KB", "Read size used while hashing (e.g. 64KB, 4MB)")
	scanCmd.Flags().Int("checkpoint-interval", constants.DefaultCheckpointInterval, "Files processed between index checkpoints")
	scanCmd.Flags().Bool("dry-run", false, "Classify files without copying or persisting anything")
	scanCmd.Flags().Bool("clear-index", false, "Discard persisted fingerprints before scanning")
	scanCmd.Flags().Bool("remove-source", false, "Delete each source file after its copy is verified")
	scanCmd.Flags().String("config", "", "Path to a stillsuit.yaml config file (default: <root>/stillsuit.yaml)")
}
