package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/notify/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestNotifyDisabled(t *testing.T) {
	n := NewDesktopNotifier(zap.NewNop(), config.NotifyConfig{Enabled: false})
	n.connect = func() (DBusClient, error) {
		t.Fatal("connect must not be called when disabled")
		return nil, nil
	}

	if err := n.Notify(context.Background(), "s", "b"); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestNotifySendsOverBus(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockDBusClient(ctrl)

	client.EXPECT().
		Call(gomock.Any(), _dest, _path, _method, gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, dest, path, method string, args []any, ret ...any) error {
			if args[3] != "Wallpaper rotated" || args[4] != "DP-1: a.png" {
				t.Errorf("Unexpected notification args: %v", args)
			}
			*(ret[0].(*uint32)) = 7
			return nil
		})
	client.EXPECT().Close().Return(nil)

	n := NewDesktopNotifier(zap.NewNop(), config.NotifyConfig{Enabled: true})
	n.connect = func() (DBusClient, error) { return client, nil }

	if err := n.Notify(context.Background(), "Wallpaper rotated", "DP-1: a.png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestNotifyErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ctrl *gomock.Controller) func() (DBusClient, error)
	}{
		{
			name: "connection failure",
			setup: func(ctrl *gomock.Controller) func() (DBusClient, error) {
				return func() (DBusClient, error) { return nil, errors.New("no bus") }
			},
		},
		{
			name: "call failure still closes",
			setup: func(ctrl *gomock.Controller) func() (DBusClient, error) {
				client := mocks.NewMockDBusClient(ctrl)
				client.EXPECT().Call(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("service unknown"))
				client.EXPECT().Close().Return(nil)
				return func() (DBusClient, error) { return client, nil }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			n := NewDesktopNotifier(zap.NewNop(), config.NotifyConfig{Enabled: true})
			n.connect = tt.setup(ctrl)

			if err := n.Notify(context.Background(), "s", "b"); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
