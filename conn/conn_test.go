package conn

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobwebnet/cobweb/address"
)

func pipeStream() io.ReadWriteCloser {
	c, _ := net.Pipe()
	return c
}

func TestConnection_DisposeIsIdempotent(t *testing.T) {
	c := New(address.PeerID("QmLocal"), address.PeerID("QmRemote"), nil, address.MustParse("/ip4/1.2.3.4/tcp/4001"), pipeStream())

	require.NoError(t, c.Dispose())
	assert.True(t, c.Closed())

	// A second Dispose must not panic or double-close the stream.
	assert.NoError(t, c.Dispose())
}

func TestConnection_DisposeIsSafeConcurrently(t *testing.T) {
	c := New(address.PeerID("QmLocal"), address.PeerID("QmRemote"), nil, address.MustParse("/ip4/1.2.3.4/tcp/4001"), pipeStream())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Dispose()
		}()
	}
	wg.Wait()

	assert.True(t, c.Closed())
}

func TestNoopHandshaker_AlwaysSucceeds(t *testing.T) {
	h := NoopHandshaker{}
	c := New(address.PeerID("QmLocal"), address.PeerID("QmRemote"), nil, address.MustParse("/ip4/1.2.3.4/tcp/4001"), pipeStream())
	defer c.Dispose()

	assert.NoError(t, h.Initiate(context.Background(), c))
	assert.NoError(t, h.Respond(context.Background(), c))
}
