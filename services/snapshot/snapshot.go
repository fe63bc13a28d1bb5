package snapshot

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

const (
	manifestFileName = "manifest.yaml"
	filesTarPrefix   = "files"
)

// Build assembles a signed snapshot archive from a directory of exported
// CSV files and writes the tar.zst output.
func Build(ctx context.Context, cfg BuildConfig) (*Manifest, error) {
	if cfg.ExportDir == "" {
		return nil, errors.New("export directory is required")
	}
	if cfg.Output == "" {
		return nil, errors.New("output path is required")
	}
	if cfg.Signer == nil {
		return nil, errors.New("signer is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(cfg.ExportDir)
	if err != nil {
		return nil, fmt.Errorf("stat export dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("export dir %q is not a directory", cfg.ExportDir)
	}

	files, err := collectFiles(ctx, cfg.ExportDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no files found to snapshot")
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	manifest := &Manifest{
		Version:          "1",
		CreatedAt:        cfg.Now().UTC().Truncate(time.Second),
		Signer:           cfg.Signer.Recipient(),
		SigningPublicKey: cfg.Signer.PublicKeyBase64(),
		Files:            files,
	}

	payload, err := manifest.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("marshal manifest for signing: %w", err)
	}
	sig, err := cfg.Signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign manifest: %w", err)
	}
	manifest.Signature = sig

	manifestBytes, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	if err := writeArchive(cfg.Output, manifestBytes, cfg.ExportDir, files); err != nil {
		return nil, err
	}

	fmt.Fprintf(cfg.Stdout, "wrote snapshot %s (%d files)\n", cfg.Output, len(files))
	return manifest, nil
}

// Verify extracts a snapshot archive, checks the manifest signature, and
// re-hashes every file against the manifest.
func Verify(ctx context.Context, cfg VerifyConfig) (*Manifest, error) {
	if cfg.ArchivePath == "" {
		return nil, errors.New("archive path is required")
	}
	if cfg.Signer == nil {
		return nil, errors.New("signer is required")
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archive, err := os.Open(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	decoder, err := zstd.NewReader(archive)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer decoder.Close()

	tempDir, err := os.MkdirTemp("", "portfolio-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	var manifestBytes []byte
	extracted := map[string]string{}

	tr := tar.NewReader(decoder)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Clean(header.Name)
		if name == manifestFileName {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("read manifest: %w", err)
			}
			manifestBytes = data
			continue
		}

		target := filepath.Join(tempDir, name)
		if !strings.HasPrefix(target, tempDir) {
			return nil, fmt.Errorf("invalid entry path %q", name)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir for %q: %w", name, err)
		}
		file, err := os.Create(target)
		if err != nil {
			return nil, fmt.Errorf("create temp file for %q: %w", name, err)
		}
		if _, err := io.Copy(file, tr); err != nil {
			file.Close()
			return nil, fmt.Errorf("write temp file for %q: %w", name, err)
		}
		file.Close()
		extracted[filepath.ToSlash(name)] = target
	}

	if len(manifestBytes) == 0 {
		return nil, errors.New("archive missing manifest.yaml")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if manifest.Version != "1" {
		return nil, fmt.Errorf("unsupported manifest version %q", manifest.Version)
	}
	if manifest.Signature == "" {
		return nil, errors.New("manifest missing signature")
	}

	payload, err := manifest.SigningBytes()
	if err != nil {
		return nil, fmt.Errorf("marshal manifest for verification: %w", err)
	}
	if err := cfg.Signer.Verify(payload, manifest.Signature, manifest.SigningPublicKey); err != nil {
		return nil, fmt.Errorf("verify manifest signature: %w", err)
	}

	for _, entry := range manifest.Files {
		tarPath := filepath.ToSlash(filepath.Join(filesTarPrefix, filepath.Clean(entry.Path)))
		tempPath, ok := extracted[tarPath]
		if !ok {
			return nil, fmt.Errorf("file %q missing from archive", entry.Path)
		}
		if err := checkFile(tempPath, entry); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(cfg.Stdout, "verified snapshot signed at %s (%d files)\n",
		manifest.CreatedAt.Format(time.RFC3339), len(manifest.Files))
	return &manifest, nil
}

func collectFiles(ctx context.Context, root string) ([]ManifestFile, error) {
	var files []ManifestFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %q: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %q: %w", path, err)
		}
		hash := sha256.New()
		size, err := io.Copy(hash, file)
		file.Close()
		if err != nil {
			return fmt.Errorf("hash %q: %w", path, err)
		}

		files = append(files, ManifestFile{
			Path:   rel,
			Entity: entityForFile(rel),
			Size:   size,
			SHA256: hex.EncodeToString(hash.Sum(nil)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// entityForFile maps an exported file name to its portfolio entity.
func entityForFile(path string) string {
	base := strings.ToLower(filepath.Base(path))
	base = strings.TrimSuffix(base, ".csv")
	switch base {
	case "units", "applications", "infrastructure", "services":
		return base
	default:
		return "file"
	}
}

func writeArchive(output string, manifest []byte, exportDir string, files []ManifestFile) error {
	dir := filepath.Dir(output)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	encoder, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	defer encoder.Close()

	tw := tar.NewWriter(encoder)
	defer tw.Close()

	if err := tw.WriteHeader(&tar.Header{
		Name:     manifestFileName,
		Mode:     0o644,
		Size:     int64(len(manifest)),
		ModTime:  time.Now().UTC(),
		Typeflag: tar.TypeReg,
	}); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	if _, err := tw.Write(manifest); err != nil {
		return fmt.Errorf("write manifest body: %w", err)
	}

	for _, entry := range files {
		fullPath := filepath.Join(exportDir, filepath.FromSlash(entry.Path))
		info, err := os.Stat(fullPath)
		if err != nil {
			return fmt.Errorf("stat %q: %w", entry.Path, err)
		}
		file, err := os.Open(fullPath)
		if err != nil {
			return fmt.Errorf("open %q: %w", entry.Path, err)
		}

		header := &tar.Header{
			Name:     filepath.ToSlash(filepath.Join(filesTarPrefix, entry.Path)),
			Mode:     int64(info.Mode().Perm()),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			file.Close()
			return fmt.Errorf("write header for %q: %w", entry.Path, err)
		}
		if _, err := io.Copy(tw, file); err != nil {
			file.Close()
			return fmt.Errorf("copy %q: %w", entry.Path, err)
		}
		file.Close()
	}

	return nil
}

func checkFile(path string, entry ManifestFile) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", entry.Path, err)
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return fmt.Errorf("hash %q: %w", entry.Path, err)
	}
	if size != entry.Size {
		return fmt.Errorf("size mismatch for %q: expected %d got %d", entry.Path, entry.Size, size)
	}
	computed := hex.EncodeToString(hash.Sum(nil))
	if !strings.EqualFold(computed, entry.SHA256) {
		return fmt.Errorf("sha256 mismatch for %q", entry.Path)
	}
	return nil
}
