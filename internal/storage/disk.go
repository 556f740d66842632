// Package storage provides disk usage helpers for storage paths.
package storage

import "os"

// DatabaseSizeBytes returns the on-disk footprint of the SQLite database at
// dbPath, including the WAL and shared-memory sidecar files. Files that do
// not exist yet contribute 0.
func DatabaseSizeBytes(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
