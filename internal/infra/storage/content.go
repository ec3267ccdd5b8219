package storage

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// contentType picks a MIME type from the file extension of localPath.
func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}

// cleanup hapus file lokal setelah upload berhasil; gagal hapus cuma di-log
func cleanup(log *zap.Logger, localPath string) {
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove local file", zap.String("path", localPath), zap.Error(err))
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
