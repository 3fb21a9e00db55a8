package teesink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcth-project/jcth/harnesserr"
)

func TestWriteForwardsAndBuffers(t *testing.T) {
	var downstream bytes.Buffer
	sink := New(&downstream)

	n, err := sink.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = sink.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, "hello world", downstream.String())
	assert.Equal(t, "hello world", string(sink.GetContent()))
}

func TestGetContentIsASnapshot(t *testing.T) {
	var downstream bytes.Buffer
	sink := New(&downstream)
	_, _ = sink.Write([]byte("abc"))

	snap := sink.GetContent()
	_, _ = sink.Write([]byte("def"))

	assert.Equal(t, "abc", string(snap))
	assert.Equal(t, "abcdef", string(sink.GetContent()))
}

func TestWriteAfterCloseFails(t *testing.T) {
	var downstream bytes.Buffer
	sink := New(&downstream)
	require.NoError(t, sink.Close())

	_, err := sink.Write([]byte("x"))
	var closedErr *harnesserr.ClosedContainerError
	assert.ErrorAs(t, err, &closedErr)
}

func TestCloseIsIdempotent(t *testing.T) {
	sink := New(&bytes.Buffer{})
	assert.NoError(t, sink.Close())
	assert.NoError(t, sink.Close())
}
