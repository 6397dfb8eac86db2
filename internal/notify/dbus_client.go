package notify

import (
	"context"

	"github.com/godbus/dbus/v5"
)

// DBusClient defines the D-Bus operations the notifier needs.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/KitotsuMolina/Kitowall/internal/notify DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// Call invokes method on the object at path owned by dest and stores the replies in ret
	Call(ctx context.Context, dest, path, method string, args []any, ret ...any) error
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a private connection to the session bus
func NewStdDBusClient() (DBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// Call invokes a method and stores its replies
func (c *StdDBusClient) Call(ctx context.Context, dest, path, method string, args []any, ret ...any) error {
	obj := c.conn.Object(dest, dbus.ObjectPath(path))
	call := obj.CallWithContext(ctx, method, 0, args...)
	if call.Err != nil {
		return call.Err
	}
	if len(ret) == 0 {
		return nil
	}
	return call.Store(ret...)
}
