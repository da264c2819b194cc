package storage

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portal/internal/config"
)

// BackupToZip writes a zip of the database and uploaded photos. An empty
// destPath picks a timestamped name in the working directory.
func BackupToZip(cfg config.Config, destPath string) (string, error) {
	if destPath == "" {
		destPath = fmt.Sprintf("portal-backup-%s.zip", time.Now().UTC().Format("20060102-150405"))
	}
	if filepath.Ext(destPath) != ".zip" {
		destPath = destPath + ".zip"
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	if err := addFileToZip(zipWriter, cfg.DBPath, "portal.db"); err != nil {
		_ = zipWriter.Close()
		return "", fmt.Errorf("backup database: %w", err)
	}
	if cfg.UploadsDir != "" {
		if _, err := os.Stat(cfg.UploadsDir); err == nil {
			if err := addDirToZip(zipWriter, cfg.UploadsDir, "uploads"); err != nil {
				_ = zipWriter.Close()
				return "", fmt.Errorf("backup uploads: %w", err)
			}
		}
	}
	if err := zipWriter.Close(); err != nil {
		return "", err
	}
	return destPath, nil
}

func addFileToZip(zipWriter *zip.Writer, sourcePath, name string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, file)
	return err
}

func addDirToZip(zipWriter *zip.Writer, sourceDir, prefix string) error {
	return filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, ".") {
			return nil
		}
		name := filepath.ToSlash(filepath.Join(prefix, rel))
		return addFileToZip(zipWriter, path, name)
	})
}
