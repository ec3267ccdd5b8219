package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	bytes.Buffer
	synced int
}

func (b *syncBuffer) Sync() error {
	b.synced++
	return nil
}

func bufferedLogger(buf *syncBuffer) *zap.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, buf, zap.InfoLevel))
}

func TestFinishFlushesOnError(t *testing.T) {
	buf := &syncBuffer{}
	code := finish(bufferedLogger(buf), errors.New("listen tcp :8080: address already in use"))

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, buf.synced)
	assert.Contains(t, buf.String(), `"msg":"server stopped"`)
	assert.Contains(t, buf.String(), "address already in use")
}

func TestFinishCleanShutdown(t *testing.T) {
	buf := &syncBuffer{}
	assert.Equal(t, 0, finish(bufferedLogger(buf), nil))
	assert.Equal(t, 1, buf.synced)
	assert.Empty(t, buf.String())
}
