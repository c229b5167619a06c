package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_WritesThroughCurrentDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	l := Logger("swarm")
	l.Info("hello", "peer", "QmX")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "component=swarm")
	assert.Contains(t, buf.String(), "peer=QmX")
}

func TestLogger_PicksUpLaterSetOutput(t *testing.T) {
	l := Logger("dial")

	var first bytes.Buffer
	SetOutput(&first)
	l.Info("first message")

	var second bytes.Buffer
	SetOutput(&second)
	l.Info("second message")

	assert.Contains(t, first.String(), "first message")
	assert.NotContains(t, first.String(), "second message")
	assert.Contains(t, second.String(), "second message")
}
