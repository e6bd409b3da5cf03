// Package transport turns raw AF_INET/AF_VSOCK stream sockets into
// exact-length buffer exchanges.
//
// The kernel primitives behind [Socket] may move fewer bytes than asked
// and may fail with EINTR without moving any; [SendFull] and [RecvFull]
// absorb both so callers only ever see all-or-nothing transfers. [Dialer]
// owns connection establishment with bounded exponential-backoff retries,
// and [Conn] guarantees shutdown-then-close teardown exactly once.
package transport
