package transport

// This package intentionally stays narrow: a Transport only dials and
// accepts byte streams for the one protocol it is registered under. Stream
// multiplexing, encryption negotiation and NAT traversal all live above or
// beside this layer and are not this package's concern.
