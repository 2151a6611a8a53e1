package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"communitybridge/common/logger"
)

const gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway intents: guild messages plus the message content privilege.
const gatewayIntents = (1 << 9) | (1 << 15)

// Gateway opcodes.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

// GatewayMessage is a chat message delivered over the gateway.
type GatewayMessage struct {
	ID        string        `json:"id"`
	ChannelID string        `json:"channel_id"`
	GuildID   string        `json:"guild_id"`
	Content   string        `json:"content"`
	Author    GatewayUser   `json:"author"`
	Mentions  []GatewayUser `json:"mentions"`
}

type GatewayUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Bot        bool   `json:"bot"`
}

// DisplayName returns the user's server-visible name, falling back to the
// account username.
func (u GatewayUser) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// MessageHandler receives every MESSAGE_CREATE dispatch.
type MessageHandler func(ctx context.Context, msg GatewayMessage)

// Gateway maintains a websocket session with the real-time event gateway:
// identify, heartbeat, and dispatch. Dropped connections are redialed with
// exponential backoff and a fresh identify.
type Gateway struct {
	token   string
	url     string
	handler MessageHandler

	mu   sync.Mutex
	seq  *int64
	conn *websocket.Conn
}

func NewGateway(token string, handler MessageHandler) *Gateway {
	return &Gateway{
		token:   token,
		url:     gatewayURL,
		handler: handler,
	}
}

// Run connects and processes gateway events until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.discord.gateway"})

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := g.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.ErrorContext(ctx, "gateway session ended, reconnecting",
			"error", err, "backoff", backoff.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 60*time.Second {
			backoff *= 2
		}
	}
}

type payload struct {
	Op   int             `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
	Seq  *int64          `json:"s,omitempty"`
	Type string          `json:"t,omitempty"`
}

// session runs a single websocket connection to completion: hello,
// identify, then the read loop. Returns when the connection drops or the
// server asks for a reconnect.
func (g *Gateway) session(ctx context.Context) error {
	conn, err := websocket.Dial(g.url, "", "https://discord.com")
	if err != nil {
		return fmt.Errorf("dialing gateway: %w", err)
	}
	defer conn.Close()

	// Close the socket when ctx is canceled to unblock the read loop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	var hello payload
	if err := websocket.JSON.Receive(conn, &hello); err != nil {
		return fmt.Errorf("receiving hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello opcode %d, got %d", opHello, hello.Op)
	}

	var helloData struct {
		HeartbeatInterval int `json:"heartbeat_interval"`
	}
	if err := json.Unmarshal(hello.Data, &helloData); err != nil {
		return fmt.Errorf("unmarshaling hello: %w", err)
	}

	g.mu.Lock()
	g.conn = conn
	g.seq = nil
	g.mu.Unlock()

	if err := g.identify(conn); err != nil {
		return err
	}

	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go g.heartbeatLoop(ctx, time.Duration(helloData.HeartbeatInterval)*time.Millisecond, heartbeatDone)

	slog.InfoContext(ctx, "gateway session established")

	for {
		var event payload
		if err := websocket.JSON.Receive(conn, &event); err != nil {
			return fmt.Errorf("receiving event: %w", err)
		}

		if event.Seq != nil {
			g.mu.Lock()
			g.seq = event.Seq
			g.mu.Unlock()
		}

		switch event.Op {
		case opDispatch:
			if event.Type != "MESSAGE_CREATE" {
				continue
			}
			var msg GatewayMessage
			if err := json.Unmarshal(event.Data, &msg); err != nil {
				slog.WarnContext(ctx, "unmarshaling message event failed", "error", err)
				continue
			}
			g.handler(ctx, msg)
		case opHeartbeat:
			g.sendHeartbeat()
		case opReconnect, opInvalidSession:
			return fmt.Errorf("server requested reconnect (op %d)", event.Op)
		case opHeartbeatAck:
			// Nothing to do.
		}
	}
}

func (g *Gateway) identify(conn *websocket.Conn) error {
	identify := map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token":   g.token,
			"intents": gatewayIntents,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "communitybridge",
				"device":  "communitybridge",
			},
		},
	}
	if err := websocket.JSON.Send(conn, identify); err != nil {
		return fmt.Errorf("sending identify: %w", err)
	}
	return nil
}

func (g *Gateway) heartbeatLoop(ctx context.Context, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.sendHeartbeat()
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) sendHeartbeat() {
	g.mu.Lock()
	conn, seq := g.conn, g.seq
	g.mu.Unlock()
	if conn == nil {
		return
	}
	_ = websocket.JSON.Send(conn, map[string]any{"op": opHeartbeat, "d": seq})
}
