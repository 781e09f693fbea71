package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/drape/internal/storage"
)

var backupOutput string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write saved state to an xz-compressed archive",
	Long: `Write the avatar, wardrobe and linktree to a single xz-compressed archive
that 'drape restore' can read back.

Examples:
  drape backup
  drape backup -o ~/drape.json.xz`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore saved state from an archive",
	Long: `Restore saved state from an archive written by 'drape backup'. Keys in the
archive overwrite existing state; keys not in the archive are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "archive path (default: drape-backup-<date>.json.xz)")
}

func runBackup(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	path := backupOutput
	if path == "" {
		path = fmt.Sprintf("drape-backup-%s.json.xz", time.Now().Format("20060102-150405"))
	}

	f, err := os.Create(path) // #nosec G304 - output path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := storage.Backup(f, store)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	info(cmd, "Backed up %d keys to %s", n, path)
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	f, err := os.Open(args[0]) // #nosec G304 - archive path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	n, err := storage.Restore(f, store)
	if err != nil {
		return fmt.Errorf("failed to restore %s: %w", args[0], err)
	}
	info(cmd, "Restored %d keys into %s", n, store.Dir())
	return nil
}
