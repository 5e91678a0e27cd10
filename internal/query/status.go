// internal/query/status.go

// Package query implements the out-of-band status probe spoken by id Tech 3
// derived game servers. One call is one UDP round trip on its own socket;
// there is no transaction id in the protocol, so sockets are never shared
// between in-flight queries.
package query

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds the wait for the single response datagram.
	DefaultTimeout = 3000 * time.Millisecond

	// DefaultMaxPlayers is reported when the server omits sv_maxclients.
	DefaultMaxPlayers = 32
)

// probe is the fixed wire format: four 0xFF bytes then ASCII "getstatus",
// no trailing null terminator.
var probe = []byte{0xff, 0xff, 0xff, 0xff, 'g', 'e', 't', 's', 't', 'a', 't', 'u', 's'}

var (
	// ErrTimeout indicates no response arrived before the deadline.
	ErrTimeout = errors.New("query: timed out waiting for status response")

	// ErrMalformed indicates the response payload could not be parsed.
	ErrMalformed = errors.New("query: malformed status response")
)

// Result is the parsed outcome of one status probe. It is returned
// synchronously per call and never stored.
type Result struct {
	Status     string `json:"status"` // "online", "offline", or "error"
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Map        string `json:"map"`
	GameType   string `json:"gametype"`
}

// Client issues status probes. The zero value is usable; Timeout defaults to
// DefaultTimeout when unset.
type Client struct {
	Timeout time.Duration
}

// Query sends one getstatus probe to host:port and waits for one response
// datagram. Exactly one of success, ErrTimeout, or a transport/parse error
// occurs per call, and the socket is closed on every exit path. There are no
// retries; a second attempt is the caller's decision.
func (c *Client) Query(ctx context.Context, host string, port int) (*Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("query: resolve %s:%d: %w", host, port, err)
	}

	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("query: open socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("query: set deadline: %w", err)
	}

	if _, err := conn.WriteToUDP(probe, raddr); err != nil {
		return nil, fmt.Errorf("query: send probe: %w", err)
	}

	// The first datagram received is accepted; the protocol carries no
	// sequence id to correlate responses.
	buf := make([]byte, 64*1024)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("query: receive response: %w", err)
	}

	return parseStatusResponse(string(buf[:n]))
}

// parseStatusResponse decodes a getstatus response payload. Line 0 is the
// command echo, line 1 the backslash-delimited server info, and the remaining
// lines one connected player each, ending in a trailing newline.
func parseStatusResponse(payload string) (*Result, error) {
	lines := strings.Split(payload, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: %d lines", ErrMalformed, len(lines))
	}

	res := &Result{
		Status:     "online",
		MaxPlayers: DefaultMaxPlayers,
		Map:        "unknown",
		GameType:   "unknown",
	}

	// The info line starts with a backslash, so the first split token is
	// empty and discarded; the rest alternate key/value.
	tokens := strings.Split(lines[1], "\\")
	for i := 1; i+1 < len(tokens); i += 2 {
		key, val := tokens[i], tokens[i+1]
		switch key {
		case "sv_maxclients":
			if mc, err := strconv.Atoi(val); err == nil {
				res.MaxPlayers = mc
			}
		case "mapname":
			res.Map = val
		case "g_gametype":
			res.GameType = val
		}
	}

	// Drop the empty element left by the trailing newline, then count. The
	// off-by-one is inherited behavior: an empty player section reports -1.
	entries := lines[2:]
	if len(entries) > 0 && entries[len(entries)-1] == "" {
		entries = entries[:len(entries)-1]
	}
	res.Players = len(entries) - 1

	return res, nil
}
