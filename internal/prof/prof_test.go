package prof

import (
	"context"
	"strings"
	"testing"

	"github.com/keithlinneman/avatars-web/internal/log"
)

func TestStart_Disabled(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"bare":        context.Background(),
		"with logger": log.WithContext(context.Background(), log.Nop()),
	} {
		stop, err := Start(ctx, Options{
			ServerAddress:        "",
			AuthToken:            "secret",
			ProfileMutexFraction: 999,
		})
		if err != nil {
			t.Fatalf("%s: Start: %v", name, err)
		}
		stop()
		stop()
	}
}

func TestStart_EmptyServerAddress(t *testing.T) {
	stop, err := Start(context.Background(), Options{
		Enabled:  true,
		AppName:  "avatars-web.server",
		TenantID: "tenant",
		Tags:     map[string]string{"env": "test"},
	})
	if err == nil || !strings.Contains(err.Error(), "server address is empty") {
		t.Fatalf("err = %v", err)
	}
	if stop == nil {
		t.Fatal("stop must be non-nil on error")
	}
	stop()
}

func TestStart_UnreachableServer(t *testing.T) {
	// pyroscope connects lazily in some versions, so only the stop contract is checked
	stop, _ := Start(context.Background(), Options{
		Enabled:       true,
		ServerAddress: "http://127.0.0.1:1",
		AppName:       "avatars-web.server",
	})
	if stop == nil {
		t.Fatal("stop is nil")
	}
	stop()
}

func TestProfileTypesIncludeCPU(t *testing.T) {
	if len(profileTypes) == 0 || profileTypes[0] != "cpu" {
		t.Fatalf("profileTypes = %v", profileTypes)
	}
}
