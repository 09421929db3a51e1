// Package backup archives the AdminList database (records and navigation
// state) together with the configuration file.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/adminlist/internal/store"
)

// DatabaseName is the archive entry holding the database copy.
const DatabaseName = "adminlist.db"

// Archive writes a tar.gz to w containing a consistent copy of the open
// database and, when configPath names an existing file, the config file.
func Archive(ctx context.Context, db *store.SQLiteStore, configPath string, w io.Writer) error {
	dir, err := os.MkdirTemp("", "adminlist-backup-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	snapshot := filepath.Join(dir, DatabaseName)
	if err := db.SnapshotTo(ctx, snapshot); err != nil {
		return err
	}

	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	if err := addFile(tw, snapshot, DatabaseName); err != nil {
		return fmt.Errorf("add database: %w", err)
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := addFile(tw, configPath, filepath.Base(configPath)); err != nil {
				return fmt.Errorf("add config: %w", err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	return gw.Close()
}

// ArchiveFile is Archive into a new file at path.
func ArchiveFile(ctx context.Context, db *store.SQLiteStore, configPath, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Archive(ctx, db, configPath, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

// DefaultName returns a timestamped archive file name.
func DefaultName(now time.Time) string {
	return "adminlist-backup-" + now.UTC().Format("20060102-150405") + ".tar.gz"
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
