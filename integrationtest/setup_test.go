package integrationtest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/randalmurphal/hierafacts/notify"
	"github.com/randalmurphal/hierafacts/testutil"
)

// store is a hiera config plus a fake hiera executable that answers for it.
type store struct {
	config string
	exec   string
}

// setupStore writes a store script. replies is keyed by the arguments that
// follow "-c <config>", e.g. "-h ::db env=prod".
func setupStore(t *testing.T, replies map[string]testutil.ScriptReply) store {
	t.Helper()

	config := testutil.TempFileString(t, "hiera.yaml", "---\n:backends:\n  - yaml\n:hierarchy:\n  - \"%{env}\"\n  - common\n")
	full := make(map[string]testutil.ScriptReply, len(replies))
	for args, reply := range replies {
		full["-c "+config+" "+args] = reply
	}
	return store{config: config, exec: testutil.WriteFakeExecutable(t, "hiera", full)}
}

// webhookRecorder is an HTTP endpoint collecting posted events.
type webhookRecorder struct {
	server *httptest.Server
	mu     sync.Mutex
	events []notify.Event
}

func setupWebhook(t *testing.T) *webhookRecorder {
	t.Helper()

	rec := &webhookRecorder{}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event notify.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.events = append(rec.events, event)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *webhookRecorder) notifier() notify.Notifier {
	return notify.NewWebhookNotifier(r.server.URL, nil).WithLogger(quietLogger())
}

func (r *webhookRecorder) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContext(t *testing.T) context.Context {
	return testutil.TestContext(t)
}
