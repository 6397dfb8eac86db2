package notify

import (
	"context"
	"fmt"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	_dest    = "org.freedesktop.Notifications"
	_path    = "/org/freedesktop/Notifications"
	_method  = "org.freedesktop.Notifications.Notify"
	_appName = "kitowall"
	_timeout = int32(4000)
)

// DesktopNotifier sends freedesktop notifications over the session bus.
// It is a no-op unless notifications are enabled.
type DesktopNotifier struct {
	logger  *zap.Logger
	enabled bool
	connect func() (DBusClient, error)
}

// NewDesktopNotifier creates a notifier from the notify configuration
func NewDesktopNotifier(logger *zap.Logger, cfg config.NotifyConfig) *DesktopNotifier {
	return &DesktopNotifier{
		logger:  logger,
		enabled: cfg.Enabled,
		connect: NewStdDBusClient,
	}
}

// Notify shows a notification with summary and body
func (n *DesktopNotifier) Notify(ctx context.Context, summary, body string) error {
	if !n.enabled {
		return nil
	}

	conn, err := n.connect()
	if err != nil {
		return fmt.Errorf("session bus connection failed: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			n.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
	}()

	args := []any{
		_appName,
		uint32(0),
		"preferences-desktop-wallpaper",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		_timeout,
	}

	var id uint32
	if err := conn.Call(ctx, _dest, _path, _method, args, &id); err != nil {
		return fmt.Errorf("notification failed: %w", err)
	}

	n.logger.Debug("Notification sent", zap.Uint32("id", id), zap.String("summary", summary))
	return nil
}
