package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TOPICLM_BUILD_DIR", "/opt/topiclm/build/src")
	t.Setenv("EXP_WORKERS", "3")
	t.Setenv("EXP_JOB_TIMEOUT", "2h")
	t.Setenv("PREDICT_PARTICLES", "not-a-number")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := LoadConfig()

	assert.Equal(t, "/opt/topiclm/build/src", cfg.Binaries.BuildDir)
	assert.Equal(t, "LD_LIBRARY_PATH", cfg.Binaries.LibraryPathVar)
	assert.Equal(t, 3, cfg.Batch.Workers)
	assert.Equal(t, 2*time.Hour, cfg.Batch.JobTimeout)
	assert.Equal(t, 10, cfg.Predict.Particles)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Batch.Workers = 0
	cfg.Data.Root = " "

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "CONFIG_ERROR", ErrorCode(err))
	assert.Contains(t, err.Error(), "EXP_WORKERS")
	assert.Contains(t, err.Error(), "TOPICLM_DATA_ROOT")
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("a", "", Required).
		Field("b", []string{}, Required).
		Field("c", "12", IntegerString).
		Field("d", "1e3", IntegerString).
		Field("e", "LDA", OneOf("HPYTM", "DHPYTM"))

	require.True(t, v.HasErrors())
	var fields []string
	for _, e := range v.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"a", "b", "d", "e"}, fields)
	assert.ErrorIs(t, v.Error(), ErrInvalidInput)
	assert.NoError(t, NewValidator().Field("x", 1, Positive).Error())
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("load: %w", NewAppError("CONFIG_ERROR", "bad workers", ErrInvalidInput))
	assert.Equal(t, "CONFIG_ERROR", ErrorCode(err))
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "", ErrorCode(ErrTrainingFailed))
}

func TestContextIDs(t *testing.T) {
	ctx := WithModelID(WithRunID(context.Background(), "r1"), "brown.HPYTM")
	assert.Equal(t, "r1", RunIDFromContext(ctx))
	assert.Equal(t, "brown.HPYTM", ModelIDFromContext(ctx))
	assert.Equal(t, "", RunIDFromContext(context.Background()))

	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
}
