package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcutil/bech32"
)

// testSecretKey encodes a fixed 32-byte seed the way age secret keys are
// encoded so the signer can be exercised without a real key pair.
func testSecretKey(t *testing.T) string {
	t.Helper()
	seed := bytes.Repeat([]byte{0x42}, 32)
	data, err := bech32.ConvertBits(seed, 8, 5, true)
	if err != nil {
		t.Fatalf("convert bits: %v", err)
	}
	encoded, err := bech32.Encode("age-secret-key-", data)
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	return encoded
}

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	t.Setenv(envAgeSecretKey, testSecretKey(t))
	t.Setenv(envAgePublicKey, "")
	signer, err := NewSignerFromEnv()
	if err != nil {
		t.Fatalf("NewSignerFromEnv: %v", err)
	}
	return signer
}

func TestSignerRoundTrip(t *testing.T) {
	signer := newTestSigner(t)

	payload := []byte("portfolio snapshot manifest")
	sig, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := signer.Verify(payload, sig, signer.PublicKeyBase64()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := signer.Verify([]byte("tampered"), sig, ""); err == nil {
		t.Fatal("Verify accepted a tampered payload")
	}
	if err := signer.Verify(payload, "not-base64!", ""); err == nil {
		t.Fatal("Verify accepted a malformed signature")
	}
}

func TestSignerRequiresKeyMaterial(t *testing.T) {
	t.Setenv(envAgeSecretKey, "")
	t.Setenv(envAgePublicKey, "")
	if _, err := NewSignerFromEnv(); err == nil {
		t.Fatal("expected error with no key material")
	}
}

func TestManifestSigningBytesExcludeSignature(t *testing.T) {
	m := Manifest{
		Version:   "1",
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Files:     []ManifestFile{{Path: "units.csv", Entity: "units", Size: 10, SHA256: "ab"}},
	}

	unsigned, err := m.SigningBytes()
	if err != nil {
		t.Fatalf("SigningBytes: %v", err)
	}

	m.Signature = "deadbeef"
	signed, err := m.SigningBytes()
	if err != nil {
		t.Fatalf("SigningBytes: %v", err)
	}

	if !bytes.Equal(unsigned, signed) {
		t.Fatal("SigningBytes changed after setting the signature")
	}
}

func TestBuildAndVerify(t *testing.T) {
	signer := newTestSigner(t)
	ctx := context.Background()

	exportDir := t.TempDir()
	files := map[string]string{
		"units.csv":        "id,name\n1,Radiology\n",
		"applications.csv": "id,name\n2,PACS Viewer\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(exportDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	output := filepath.Join(t.TempDir(), "snapshot.tar.zst")
	var buildOut bytes.Buffer
	manifest, err := Build(ctx, BuildConfig{
		ExportDir: exportDir,
		Output:    output,
		Signer:    signer,
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Stdout:    &buildOut,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(manifest.Files) != 2 {
		t.Fatalf("manifest files = %d, want 2", len(manifest.Files))
	}
	if manifest.Files[0].Path != "applications.csv" || manifest.Files[0].Entity != "applications" {
		t.Fatalf("first manifest entry = %+v, want sorted applications.csv", manifest.Files[0])
	}
	if manifest.Signature == "" {
		t.Fatal("manifest is unsigned")
	}

	var verifyOut bytes.Buffer
	verified, err := Verify(ctx, VerifyConfig{
		ArchivePath: output,
		Signer:      signer,
		Stdout:      &verifyOut,
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if len(verified.Files) != 2 {
		t.Fatalf("verified files = %d, want 2", len(verified.Files))
	}
}

func TestBuildRejectsEmptyDir(t *testing.T) {
	signer := newTestSigner(t)

	_, err := Build(context.Background(), BuildConfig{
		ExportDir: t.TempDir(),
		Output:    filepath.Join(t.TempDir(), "snapshot.tar.zst"),
		Signer:    signer,
	})
	if err == nil {
		t.Fatal("expected error for empty export dir")
	}
}

func TestEntityForFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"units.csv", "units"},
		{"Applications.CSV", "applications"},
		{"nested/services.csv", "services"},
		{"readme.txt", "file"},
	}
	for _, tt := range tests {
		if got := entityForFile(tt.path); got != tt.want {
			t.Errorf("entityForFile(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
