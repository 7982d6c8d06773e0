package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsAndContextFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")

	ctx := WithLogger(context.Background(), map[string]interface{}{"request_id": "r-1"})
	ctx = WithLogger(ctx, map[string]interface{}{"user": "alice"})

	DebugLog(ctx, "debug %d", 1)
	InfoLog(ctx, "info %s", "two")
	WarnLog(ctx, "warn")
	ErrorLog(ctx, "failed to fetch", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"level":"debug"`)
	assert.Contains(t, out, `"message":"debug 1"`)
	assert.Contains(t, out, `"message":"info two"`)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"request_id":"r-1"`)
	assert.Contains(t, out, `"user":"alice"`)
}

func TestSetOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")

	InfoLog(context.Background(), "hidden")
	WarnLog(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetOutput_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "chatty")

	DebugLog(context.Background(), "hidden")
	InfoLog(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
