// Package transport speaks the Bevy Remote Protocol's JSON-RPC 2.0 wire
// format over a TCP socket. Framing follows the same jsonrpc2.Stream
// wrapping used for gopls's stdio pipe — only the io.ReadWriteCloser
// source differs (net.Conn here, a subprocess pipe there).
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.lsp.dev/jsonrpc2"

	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

const defaultCallTimeout = 30 * time.Second

// CallError is the structured shape of a failed BRP call: a JSON-RPC
// error object, preserved intact so the recovery engine can classify its
// Message without losing the numeric Code or the raw response payload.
type CallError struct {
	Code    int64
	Message string
	Data    value.Value
}

func (e *CallError) Error() string {
	return fmt.Sprintf("brp call error %d: %s", e.Code, e.Message)
}

// Client holds a live connection to a running Bevy game's BRP endpoint.
type Client struct {
	conn    jsonrpc2.Conn
	netConn net.Conn
	timeout time.Duration
}

// Dial connects to a BRP TCP endpoint (typically localhost:15702) and
// starts the JSON-RPC stream in the background.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	stream := jsonrpc2.NewStream(nc)
	conn := jsonrpc2.NewConn(stream)
	conn.Go(context.Background(), jsonrpc2.ReplyHandler(func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		// BRP never sends server-to-client requests; anything received
		// here is unexpected but must still be acknowledged so the
		// connection doesn't stall waiting on a reply.
		return reply(ctx, nil, nil)
	}))

	return &Client{conn: conn, netConn: nc, timeout: defaultCallTimeout}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.netConn.Close()
}

// Call issues a single BRP JSON-RPC method call and decodes the result
// into a value.Value, preserving object key order end to end.
func (c *Client) Call(ctx context.Context, method string, params value.Value) (value.Value, *CallError) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	paramsJSON, err := params.MarshalJSON()
	if err != nil {
		return value.Value{}, &CallError{Message: fmt.Sprintf("marshal params: %v", err)}
	}
	var rawParams json.RawMessage = paramsJSON

	var raw json.RawMessage
	_, callErr := c.conn.Call(ctx, method, rawParams, &raw)
	if callErr != nil {
		return value.Value{}, classifyTransportErr(callErr)
	}

	result, err := value.FromJSON(raw)
	if err != nil {
		return value.Value{}, &CallError{Message: fmt.Sprintf("decode result: %v", err)}
	}
	return result, nil
}

// classifyTransportErr extracts the JSON-RPC error code/message/data out of
// whatever shape go.lsp.dev/jsonrpc2 surfaces a server-side error as, since
// that library returns a generic error rather than a typed envelope.
func classifyTransportErr(err error) *CallError {
	if rpcErr, ok := err.(*jsonrpc2.Error); ok {
		ce := &CallError{Code: int64(rpcErr.Code), Message: rpcErr.Message}
		if rpcErr.Data != nil {
			if v, parseErr := value.FromJSON(*rpcErr.Data); parseErr == nil {
				ce.Data = v
			}
		}
		return ce
	}
	return &CallError{Message: err.Error()}
}
