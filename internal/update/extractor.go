package update

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// archiveEntry is one member of an update archive, in archive order.
type archiveEntry interface {
	name() string
	extract(root string) error
}

type zipEntry struct{ f *zip.File }

func readZip(payload []byte) ([]archiveEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, err
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("archive is empty")
	}
	entries := make([]archiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, zipEntry{f: f})
	}
	return entries, nil
}

func (e zipEntry) name() string { return e.f.Name }

func (e zipEntry) extract(root string) error {
	targetPath, err := safeJoin(root, e.f.Name)
	if err != nil {
		return err
	}

	if e.f.FileInfo().IsDir() || strings.HasSuffix(e.f.Name, "/") {
		if err := os.MkdirAll(targetPath, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", e.f.Name, err)
		}
		return nil
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", e.f.Name, err)
	}

	rc, err := e.f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", e.f.Name, err)
	}
	defer rc.Close()

	return writeEntry(targetPath, e.f.Name, rc, fileMode(e.f.Mode()), int64(e.f.UncompressedSize64))
}

type tarEntry struct {
	hdr  *tar.Header
	data []byte
}

// readTarLz4 decodes the whole archive up front so the entry count is known
// before the first progress report.
func readTarLz4(payload []byte) ([]archiveEntry, error) {
	tarReader := tar.NewReader(lz4.NewReader(bytes.NewReader(payload)))

	var entries []archiveEntry
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}
		var data []byte
		if header.Typeflag == tar.TypeReg {
			data, err = io.ReadAll(tarReader)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", header.Name, err)
			}
		}
		entries = append(entries, tarEntry{hdr: header, data: data})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("archive is empty")
	}
	return entries, nil
}

func (e tarEntry) name() string { return e.hdr.Name }

func (e tarEntry) extract(root string) error {
	cleanName := e.hdr.Name
	targetPath, err := safeJoin(root, cleanName)
	if err != nil {
		return err
	}

	switch e.hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(targetPath, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", cleanName, err)
		}

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", cleanName, err)
		}
		return writeEntry(targetPath, cleanName, bytes.NewReader(e.data), fileMode(os.FileMode(e.hdr.Mode)), e.hdr.Size)

	case tar.TypeSymlink:
		// Security: validate symlink target
		linkTarget := e.hdr.Linkname
		if filepath.IsAbs(linkTarget) {
			return fmt.Errorf("absolute symlink not allowed: %s -> %s", cleanName, linkTarget)
		}
		if _, err := safeJoin(root, filepath.Join(filepath.Dir(cleanName), linkTarget)); err != nil {
			return fmt.Errorf("symlink escapes install: %s -> %s", cleanName, linkTarget)
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", cleanName, err)
		}
		os.Remove(targetPath)
		if err := os.Symlink(linkTarget, targetPath); err != nil {
			return fmt.Errorf("create symlink %s: %w", cleanName, err)
		}

	default:
		// Skip other types (char devices, block devices, etc.)
	}
	return nil
}

// writeEntry copies r into a new file and checks the byte count against the
// size recorded in the archive.
func writeEntry(targetPath, name string, r io.Reader, mode os.FileMode, size int64) error {
	outFile, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", name, err)
	}

	written, copyErr := io.Copy(outFile, r)
	if copyErr != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", name, copyErr)
	}
	if size > 0 && written != size {
		outFile.Close()
		return fmt.Errorf("incomplete extraction of %s: wrote %d of %d bytes (disk full?)", name, written, size)
	}
	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", name, err)
	}
	return nil
}

func fileMode(m os.FileMode) os.FileMode {
	perm := m.Perm()
	if perm == 0 {
		return 0o644
	}
	return perm | 0o200
}
