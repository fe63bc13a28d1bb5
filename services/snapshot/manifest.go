package snapshot

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the signed metadata embedded in a portfolio snapshot archive.
type Manifest struct {
	Version          string         `yaml:"version"`
	CreatedAt        time.Time      `yaml:"created_at"`
	Signer           string         `yaml:"signer,omitempty"`
	SigningPublicKey string         `yaml:"signing_public_key,omitempty"`
	Signature        string         `yaml:"signature,omitempty"`
	Files            []ManifestFile `yaml:"files"`
}

// ManifestFile describes one exported CSV inside the snapshot.
type ManifestFile struct {
	Path   string `yaml:"path"`
	Entity string `yaml:"entity"`
	Size   int64  `yaml:"size"`
	SHA256 string `yaml:"sha256"`
}

// SigningBytes marshals the manifest with the signature field cleared, so
// signing and verification operate on the same payload.
func (m Manifest) SigningBytes() ([]byte, error) {
	clone := m
	clone.Signature = ""
	return yaml.Marshal(clone)
}
