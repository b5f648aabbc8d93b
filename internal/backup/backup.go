// Package backup uploads encrypted snapshots of the document file to
// S3-compatible storage. Backups are admin-triggered; there is no schedule.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds backup configuration. Backups stay disabled until a bucket,
// credentials, and a passphrase are all present.
type Config struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Prefix     string
	Passphrase string
}

// Status holds the most recent backup outcome.
type Status struct {
	Enabled    bool       `json:"enabled"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	LastKey    string     `json:"lastKey,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager snapshots the document file, encrypts it, and uploads it.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	client s3Client
	status Status
	logger *slog.Logger

	docPath string
	now     func() time.Time
}

// NewManager creates a backup manager for the document at docPath.
func NewManager(cfg Config, docPath string, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:     cfg,
		docPath: docPath,
		logger:  logger,
		now:     time.Now,
	}
	if m.Enabled() {
		m.client = newS3Client(cfg)
		m.status.Enabled = true
	}
	return m
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether the manager has everything it needs to upload.
func (m *Manager) Enabled() bool {
	return m.cfg.Bucket != "" && m.cfg.AccessKey != "" && m.cfg.SecretKey != "" && m.cfg.Passphrase != ""
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// BackupNow reads the document file, encrypts it with the configured
// passphrase, and uploads it under a timestamped key. The document file is
// read as-is, so the snapshot is exactly what an atomic save last wrote.
func (m *Manager) BackupNow(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return "", fmt.Errorf("backup not configured")
	}

	plaintext, err := os.ReadFile(m.docPath)
	if err != nil {
		return "", m.fail(fmt.Errorf("read document: %w", err))
	}

	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return "", m.fail(fmt.Errorf("encrypt snapshot: %w", err))
	}

	ts := m.now().UTC()
	key := fmt.Sprintf("%sdocument-%s.json.enc", m.keyPrefix(), ts.Format("20060102-150405"))

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(sealed),
	})
	if err != nil {
		return "", m.fail(fmt.Errorf("upload snapshot: %w", err))
	}

	m.status = Status{Enabled: true, LastBackup: &ts, LastKey: key}
	m.logger.Info("backup uploaded", "key", key, "bytes", len(sealed))
	return key, nil
}

func (m *Manager) keyPrefix() string {
	if m.cfg.Prefix == "" {
		return "pawtrack/"
	}
	if m.cfg.Prefix[len(m.cfg.Prefix)-1] != '/' {
		return m.cfg.Prefix + "/"
	}
	return m.cfg.Prefix
}

func (m *Manager) fail(err error) error {
	m.status.Error = err.Error()
	m.logger.Error("backup failed", "error", err)
	return err
}
