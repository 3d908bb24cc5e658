package client

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"treasurehunt/pkg/common"
	"treasurehunt/pkg/protocol"
)

var ErrUnexpectedResponse = errors.New("unexpected response")

// ServerError carries the message of a RespErr frame.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

type Client struct {
	mu   sync.Mutex
	conn net.Conn
	addr string
}

// RunResult is the decoded reply to Hunt and GetRun.
type RunResult struct {
	ID          string
	Params      common.HuntParams
	Discoveries []common.Discovery
}

// Regions returns the 1-based region indices in discovery order.
func (r *RunResult) Regions() []int {
	out := make([]int, len(r.Discoveries))
	for i, d := range r.Discoveries {
		out[i] = d.Region
	}
	return out
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		addr: addr,
	}, nil
}

// Hunt asks the server to run a new hunt; seed 0 lets the server pick one.
func (c *Client) Hunt(regions, groups, treasures int, seed int64) (*RunResult, error) {
	params := common.HuntParams{Regions: regions, Groups: groups, Treasures: treasures, Seed: seed}
	return c.roundTrip(protocol.OpHunt, nil, protocol.EncodeParams(params))
}

func (c *Client) GetRun(id string) (*RunResult, error) {
	return c.roundTrip(protocol.OpGetRun, []byte(id), nil)
}

func (c *Client) roundTrip(op byte, key, value []byte) (*RunResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pkt, sent, err := c.exchange(op, key, value)
	if err != nil {
		// 请求已发出时服务端可能已经执行，只有幂等的 OpGetRun 才能重发
		if sent && op != protocol.OpGetRun {
			return nil, err
		}
		if rerr := c.reconnect(); rerr != nil {
			return nil, fmt.Errorf("reconnect: %w", rerr)
		}
		if pkt, _, err = c.exchange(op, key, value); err != nil {
			return nil, err
		}
	}

	switch pkt.Op {
	case protocol.RespVal:
		res, err := protocol.DecodeRunResult(pkt.Value)
		if err != nil {
			return nil, err
		}
		return &RunResult{ID: string(pkt.Key), Params: res.Params, Discoveries: res.Discoveries}, nil
	case protocol.RespErr:
		return nil, &ServerError{Message: string(pkt.Value)}
	}
	return nil, ErrUnexpectedResponse
}

// exchange reports whether the request was written before any error.
func (c *Client) exchange(op byte, key, value []byte) (*protocol.Packet, bool, error) {
	if err := protocol.Encode(c.conn, op, key, value); err != nil {
		return nil, false, err
	}
	pkt, err := protocol.Decode(c.conn)
	return pkt, true, err
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
	}
	conn, err := net.DialTimeout("tcp", c.addr, 5*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
