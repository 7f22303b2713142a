package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestCtx_AddsSessionID(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prevLevel)
	prev := Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	SetLogger(NewTestLogger(&buf))

	ctx := ContextWithSessionID(context.Background(), "s-1")
	Ctx(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Equal(t, "s-1", SessionIDFromContext(ctx))
	assert.Equal(t, "", SessionIDFromContext(context.Background()))
}
