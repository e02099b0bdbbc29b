package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "reorder",
		Duration: 3 * time.Millisecond,
		Success:  true,
		Fields:   map[string]any{"type": "location"},
	})

	out := buf.String()
	assert.Contains(t, out, "service_use_case")
	assert.Contains(t, out, "use_case=reorder")
	assert.Contains(t, out, "type=location")
	assert.Contains(t, out, "level=INFO")
}

func TestLogUseCaseObserver_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := NewSlogUseCaseObserver(slog.New(slog.NewJSONHandler(&buf, nil)))

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "delete-node", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))

	rec := &recordingObserver{}
	assert.Same(t, rec, useCaseObserverOrNoop([]UseCaseObserver{nil, rec}))
}
