package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"portfoliod/pkg/bus"
	"portfoliod/pkg/db"
	gos3 "portfoliod/pkg/s3"
	"portfoliod/services/portfolio"
	"portfoliod/services/portfolio/internal/config"
	"portfoliod/services/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portfolioctl",
		Short:         "Utility for managing the IT portfolio service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newSnapshotCommand())
	cmd.AddCommand(newAuditCommand())
	return cmd
}

// openAPI builds a portfolio API instance from the service environment.
func openAPI(ctx context.Context) (*portfolio.API, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Open(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	orm, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("open orm: %w", err)
	}

	api, err := portfolio.New(&portfolio.Store{DB: pool, ORM: orm}, nil, portfolio.Config{
		AllowedEmails: cfg.Auth.AllowedEmails,
	})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return api, pool.Close, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pool, err := db.Open(ctx, cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var seedFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load setting options from a YAML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}

			var seeds map[string][]string
			if err := yaml.Unmarshal(data, &seeds); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pool, err := db.Open(ctx, cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer pool.Close()

			inserted := 0
			for category, values := range seeds {
				for _, value := range values {
					tag, err := db.Exec(ctx, pool, `
INSERT INTO setting_options (id, category, value)
VALUES ($1, $2, $3)
ON CONFLICT (category, value) DO NOTHING
`, uuid.New(), category, value)
					if err != nil {
						return fmt.Errorf("seed %s/%s: %w", category, value, err)
					}
					inserted += int(tag.RowsAffected())
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d options\n", inserted)
			return nil
		},
	}

	cmd.Flags().StringVar(&seedFile, "file", "", "YAML file mapping option categories to value lists")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one CSV per entity into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			api, closeAPI, err := openAPI(ctx)
			if err != nil {
				return err
			}
			defer closeAPI()

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			for _, entity := range []string{"units", "applications", "infrastructure", "services"} {
				path := filepath.Join(outputDir, entity+".csv")
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := api.WriteCSV(ctx, entity, portfolio.ListFilter{}, file); err != nil {
					file.Close()
					return fmt.Errorf("export %s: %w", entity, err)
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("close %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "dir", "", "Directory to write CSV files into")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Snapshot archive operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newSnapshotBuildCommand())
	cmd.AddCommand(newSnapshotVerifyCommand())
	cmd.AddCommand(newSnapshotUploadCommand())
	cmd.AddCommand(newSnapshotURLCommand())
	return cmd
}

func newSnapshotBuildCommand() *cobra.Command {
	var (
		exportDir string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Create a signed snapshot archive from exported CSVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := snapshot.NewSignerFromEnv()
			if err != nil {
				return err
			}
			_, err = snapshot.Build(cmd.Context(), snapshot.BuildConfig{
				ExportDir: exportDir,
				Output:    output,
				Signer:    signer,
				Stdout:    cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&exportDir, "dir", "", "Directory of exported CSV files")
	cmd.Flags().StringVar(&output, "output", "", "Destination archive file (tar.zst)")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newSnapshotVerifyCommand() *cobra.Command {
	var archive string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a snapshot archive's manifest signature and file hashes",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := snapshot.NewSignerFromEnv()
			if err != nil {
				return err
			}
			_, err = snapshot.Verify(cmd.Context(), snapshot.VerifyConfig{
				ArchivePath: archive,
				Signer:      signer,
				Stdout:      cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&archive, "file", "", "Path to the snapshot tar.zst")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSnapshotUploadCommand() *cobra.Command {
	var (
		archive string
		bucket  string
		key     string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a snapshot archive to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, err := gos3.NewClientFromEnv()
			if err != nil {
				return fmt.Errorf("s3 client: %w", err)
			}

			file, err := os.Open(archive)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer file.Close()

			hash := sha256.New()
			size, err := io.Copy(hash, file)
			if err != nil {
				return fmt.Errorf("hash archive: %w", err)
			}
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("rewind archive: %w", err)
			}

			digest := hex.EncodeToString(hash.Sum(nil))
			if key == "" {
				key = filepath.Base(archive)
			}
			if err := client.PutObject(ctx, bucket, key, file, size, digest); err != nil {
				return fmt.Errorf("upload archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded s3://%s/%s (%d bytes)\n", bucket, key, size)
			return nil
		},
	}

	cmd.Flags().StringVar(&archive, "file", "", "Path to the snapshot tar.zst")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination S3 bucket")
	cmd.Flags().StringVar(&key, "key", "", "Destination object key (defaults to the file name)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

func newSnapshotURLCommand() *cobra.Command {
	var (
		bucket string
		key    string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Generate a presigned download URL for an uploaded snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := gos3.NewClientFromEnv()
			if err != nil {
				return fmt.Errorf("s3 client: %w", err)
			}

			url, err := client.PresignGet(cmd.Context(), bucket, key, ttl)
			if err != nil {
				return fmt.Errorf("presign: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket holding the snapshot")
	cmd.Flags().StringVar(&key, "key", "", "Object key of the snapshot")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "How long the URL stays valid")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit event operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAuditTailCommand())
	return cmd
}

func newAuditTailCommand() *cobra.Command {
	var natsURL string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream audit events from the bus until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if natsURL == "" {
				natsURL = os.Getenv("PORTFOLIO_NATS_URL")
			}
			if natsURL == "" {
				return fmt.Errorf("--nats or PORTFOLIO_NATS_URL is required")
			}

			eventBus, err := bus.New(natsURL)
			if err != nil {
				return fmt.Errorf("connect nats: %w", err)
			}
			defer eventBus.Close()

			out := cmd.OutOrStdout()
			sub, err := eventBus.Subscribe(ctx, "portfolio.audit.recorded", "portfolioctl-audit-tail",
				func(ctx context.Context, data []byte) error {
					var event map[string]any
					if err := json.Unmarshal(data, &event); err != nil {
						fmt.Fprintf(out, "malformed event: %s\n", data)
						return nil
					}
					fmt.Fprintf(out, "%v %v %v %v (%v)\n",
						event["actor"], event["action"], event["entity_type"], event["entity_name"], event["entity_id"])
					return nil
				})
			if err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}
			defer sub.Close()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "NATS endpoint (defaults to PORTFOLIO_NATS_URL)")
	return cmd
}
