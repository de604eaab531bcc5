package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/sim-replay-client/internal/hub"
	"github.com/DoyleJ11/sim-replay-client/pkg/types"
)

// Client is the upstream websocket connection. Reads are pumped into
// the hub inbox; nothing is dispatched from the network goroutine.
type Client struct {
	conn *websocket.Conn
	log  *zap.Logger
}

func Dial(ctx context.Context, url string, log *zap.Logger) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	// Replay chunks can be large.
	conn.SetReadLimit(8 << 20)
	return &Client{conn: conn, log: log}, nil
}

// Send writes one outbound command. Implements hub.CommandSender.
func (c *Client) Send(cmd types.ClientCommand) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

// ReadLoop pumps frames into the hub until the connection or context
// ends. Clean closes return nil.
func (c *Client) ReadLoop(ctx context.Context, inbox chan<- hub.HubMsg) error {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		inbox <- hub.Frame{Binary: typ == websocket.MessageBinary, Data: data}
	}
}

func (c *Client) Close() {
	_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
}
