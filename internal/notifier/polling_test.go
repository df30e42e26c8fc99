package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPolling_RepliesToCommands(t *testing.T) {
	var (
		mu      sync.Mutex
		served  bool
		offsets []string
		replies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			offsets = append(offsets, r.URL.Query().Get("offset"))
			if served {
				time.Sleep(20 * time.Millisecond)
				fmt.Fprint(w, `{"ok":true,"result":[]}`)
				return
			}
			served = true
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /portfolio "}}]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			replies = append(replies, body["text"])
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
			return "got " + cmd
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(replies) == 1 && len(offsets) >= 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "got /portfolio", replies[0])
	assert.Equal(t, "0", offsets[0])
	assert.Equal(t, "8", offsets[1])
}
