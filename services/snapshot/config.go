package snapshot

import (
	"io"
	"time"
)

// BuildConfig configures snapshot archive creation.
type BuildConfig struct {
	// ExportDir holds the CSV files produced by a portfolio export.
	ExportDir string
	// Output is the path of the tar.zst archive to write.
	Output string
	Signer *Signer
	Now    func() time.Time
	Stdout io.Writer
}

// VerifyConfig configures snapshot verification.
type VerifyConfig struct {
	ArchivePath string
	Signer      *Signer
	Stdout      io.Writer
}
