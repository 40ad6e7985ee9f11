package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/handshake/internal/logging"
	"github.com/aretw0/handshake/pkg/adapters/redis"
	"github.com/aretw0/handshake/pkg/domain"
	"github.com/aretw0/handshake/pkg/ports"
	"gopkg.in/yaml.v3"
)

// SeedFile is a fixture of agent records, written in YAML (or JSON).
// Notifications are tagged maps using the same "type" discriminator as the record store.
type SeedFile struct {
	Invitations   []domain.InvitationRecord `yaml:"invitations"`
	Connections   []domain.ConnectionRecord `yaml:"connections"`
	Notifications []map[string]any          `yaml:"notifications"`
}

// SeedOptions contains the configuration for the seed command.
type SeedOptions struct {
	File       string
	ConfigPath string
	Overrides  Overrides
	Interval   time.Duration
	Debug      bool
}

// LoadSeedFile parses a fixture file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Apply writes the fixture through w, pausing interval between writes
// to mimic an agent receiving records over time.
func (f *SeedFile) Apply(ctx context.Context, w ports.RecordWriter, interval time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}

	notifications := make([]domain.Notification, 0, len(f.Notifications))
	for i, raw := range f.Notifications {
		n, err := redis.DecodeNotification(raw)
		if err != nil {
			return fmt.Errorf("notification #%d: %w", i, err)
		}
		notifications = append(notifications, n)
	}

	pause := func() error {
		if interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
			return nil
		}
	}

	for _, inv := range f.Invitations {
		if err := w.SaveInvitation(ctx, inv); err != nil {
			return fmt.Errorf("failed to save invitation %s: %w", inv.ID, err)
		}
		logger.Info("invitation saved", "invitation_id", inv.ID)
	}
	for _, n := range notifications {
		if err := pause(); err != nil {
			return err
		}
		if err := w.PushNotification(ctx, n); err != nil {
			return fmt.Errorf("failed to push notification %s: %w", n.ID(), err)
		}
		logger.Info("notification pushed", "notification_id", n.ID(), "kind", n.Kind())
	}
	for _, conn := range f.Connections {
		if err := pause(); err != nil {
			return err
		}
		if err := w.SaveConnection(ctx, conn); err != nil {
			return fmt.Errorf("failed to save connection %s: %w", conn.ID, err)
		}
		logger.Info("connection saved", "connection_id", conn.ID, "invitation_id", conn.InvitationID)
	}
	return nil
}

// Seed loads a fixture into the Redis record store.
func Seed(opts SeedOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return err
	}
	logger := createLogger(cfg, opts.Debug)

	f, err := LoadSeedFile(opts.File)
	if err != nil {
		return err
	}

	store := newRedisStore(cfg, logger)
	defer store.Close()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	return f.Apply(sigCtx, store, opts.Interval, logger)
}
