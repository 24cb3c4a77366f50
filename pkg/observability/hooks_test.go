package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
}

func TestInstallAndRestore(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	pipeline := &countingPipelineHooks{}
	restore := Install(Hooks{Pipeline: pipeline})
	if Pipeline() != pipeline {
		t.Fatal("Install should set the pipeline hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Install with a nil Cache field must keep the installed cache hooks")
	}
	Pipeline().OnLayoutStart(context.Background(), 10)
	if pipeline.layouts != 1 {
		t.Errorf("layouts = %d, want 1", pipeline.layouts)
	}

	restore()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("restore should bring back the previous hooks")
	}
}

func TestSettersIgnoreNil(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &countingPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	t.Cleanup(Install(h.All()))

	ctx := context.Background()
	Pipeline().OnExtractComplete(ctx, 5, 4, nil)
	Cache().OnCacheHit(ctx, "extraction")
	HTTP().OnResponse(ctx, "GET", "api.ossinsight.io", "/gh/repo/acme/proj", 200, time.Millisecond)
	HTTP().OnError(ctx, "GET", "api.ossinsight.io", "/q/x", errors.New("timeout"))

	out := buf.String()
	for _, want := range []string{"extract done", "nodes=5", "cache hit", "type=extraction", "status=200", "err=timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output misses %q:\n%s", want, out)
		}
	}
}

type countingPipelineHooks struct {
	NoopPipelineHooks
	layouts int
}

func (c *countingPipelineHooks) OnLayoutStart(context.Context, int) { c.layouts++ }
