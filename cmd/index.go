/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/index"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
	"github.com/substantialcattle5/stillsuit/util"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect or reset the persisted fingerprint index",
	Long: `Inspect or reset the fingerprint index a previous scan persisted.

The index lives next to the scan's output directories (hashes.db plus the
hashes.json snapshot). Point --dir at that directory.

Example:
  stillsuit index stats --dir ~/photos
  stillsuit index clear --dir ~/photos --yes`,
}

// indexStatsCmd reports the size and location of the persisted index.
var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fingerprint index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := resolveIndexDir(cmd)
		if err != nil {
			return err
		}

		store, err := index.NewStore(dataDir, constants.DefaultCheckpointInterval)
		if err != nil {
			return fmt.Errorf("opening fingerprint index: %w", err)
		}
		defer store.Close()

		count, err := store.Count()
		if err != nil {
			return fmt.Errorf("counting fingerprints: %w", err)
		}

		fmt.Printf("Index:        %s\n", store.Path())
		fmt.Printf("Fingerprints: %d\n", count)

		if info, err := os.Stat(store.Path()); err == nil {
			fmt.Printf("Size on disk: %s\n", util.HumanReadableSize(info.Size()))
		}

		snapPath := filepath.Join(dataDir, constants.SnapshotFileName)
		if entries, err := snapshot.New(snapPath).Load(); err == nil && len(entries) > 0 {
			fmt.Printf("Snapshot:     %s (%d entries)\n", snapPath, len(entries))
		}
		return nil
	},
}

// indexClearCmd discards every persisted fingerprint.
var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard every persisted fingerprint",
	Long: `Discard every persisted fingerprint and the progress snapshot.

The next scan starts from scratch: every file is re-hashed and files already
sitting in UniqueFiles/ keep their places but are no longer remembered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, err := resolveIndexDir(cmd)
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			confirmPrompt := promptui.Prompt{
				Label:     "Discard all persisted fingerprints",
				IsConfirm: true,
				Default:   "n",
			}
			if _, err := confirmPrompt.Run(); err != nil {
				if err == promptui.ErrAbort {
					fmt.Println("Clear cancelled.")
					return nil
				}
				return fmt.Errorf("confirmation failed: %v", err)
			}
		}

		store, err := index.NewStore(dataDir, constants.DefaultCheckpointInterval)
		if err != nil {
			return fmt.Errorf("opening fingerprint index: %w", err)
		}
		defer store.Close()

		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing fingerprint index: %w", err)
		}

		snapPath := filepath.Join(dataDir, constants.SnapshotFileName)
		if err := os.Remove(snapPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing snapshot: %w", err)
		}

		fmt.Println("✓ Fingerprint index cleared.")
		return nil
	},
}

func resolveIndexDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving index directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, constants.IndexDBName)); os.IsNotExist(err) {
		return "", fmt.Errorf("no fingerprint index found in %s", dir)
	}
	return dir, nil
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexClearCmd)

	indexCmd.PersistentFlags().String("dir", ".", "Directory holding the persisted index")
	indexClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
