// Package client implements the runner's SignalR-style hub protocol over a
// websocket: JSON records separated by 0x1e, a handshake, then invocation
// frames in both directions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"zooscape/game"
)

const (
	// recordSeparator terminates every hub protocol record.
	recordSeparator = 0x1e

	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Hub invocation targets.
	targetRegister   = "Register"
	targetRegistered = "Registered"
	targetBotState   = "ReceiveBotState"
	targetGameState  = "GameState"
	targetDisconnect = "Disconnect"
	targetPlayerCmd  = "SendPlayerCommand"
)

// Hub message types used by the JSON protocol.
const (
	msgInvocation = 1
	msgPing       = 6
	msgClose      = 7
)

type inboundMessage struct {
	Type      int               `json:"type"`
	Target    string            `json:"target,omitempty"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
	Error     string            `json:"error,omitempty"`
}

type outboundMessage struct {
	Type      int    `json:"type"`
	Target    string `json:"target,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
}

type commandPayload struct {
	Action int `json:"action"`
}

// HubClient is a Communicator backed by one websocket hub connection.
type HubClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	registered chan string
	states     chan *game.GameState

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// Dial connects to the hub, completes the protocol handshake, registers the
// bot, and starts the read pump.
func Dial(ctx context.Context, hubURL, token, nickname string) (*HubClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, hubURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", hubURL, err)
	}

	c := &HubClient{
		conn:       conn,
		registered: make(chan string, 1),
		states:     make(chan *game.GameState, 1),
		done:       make(chan struct{}),
	}

	if err := c.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.writeRecord(outboundMessage{
		Type:      msgInvocation,
		Target:    targetRegister,
		Arguments: []any{token, nickname},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registering: %w", err)
	}

	go c.readPump()

	log.Info().Str("url", hubURL).Str("nickname", nickname).Msg("connected to runner hub")
	return c, nil
}

// handshake negotiates the JSON protocol.
func (c *HubClient) handshake() error {
	if err := c.writeRaw([]byte(`{"protocol":"json","version":1}`)); err != nil {
		return fmt.Errorf("sending handshake: %w", err)
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("reading handshake response: %w", err)
	}
	record := bytes.TrimSuffix(bytes.SplitN(data, []byte{recordSeparator}, 2)[0], []byte{recordSeparator})
	var response struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(record, &response); err != nil {
		return fmt.Errorf("parsing handshake response: %w", err)
	}
	if response.Error != "" {
		return fmt.Errorf("handshake rejected: %s", response.Error)
	}
	return nil
}

// Registered yields the bot id assigned by the runner.
func (c *HubClient) Registered() <-chan string { return c.registered }

// States yields one decoded game state per tick.
func (c *HubClient) States() <-chan *game.GameState { return c.states }

// SendCommand replies to the current tick.
func (c *HubClient) SendCommand(action game.Action) error {
	return c.writeRecord(outboundMessage{
		Type:      msgInvocation,
		Target:    targetPlayerCmd,
		Arguments: []any{commandPayload{Action: int(action)}},
	})
}

// Close tears the connection down. Safe to call more than once.
func (c *HubClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *HubClient) writeRecord(message outboundMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encoding hub message: %w", err)
	}
	return c.writeRaw(data)
}

func (c *HubClient) writeRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, append(data, recordSeparator))
}

// readPump decodes inbound records until the connection dies, then closes
// both outbound channels.
func (c *HubClient) readPump() {
	defer close(c.states)
	defer close(c.registered)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Warn().Err(err).Msg("hub connection lost")
			}
			return
		}
		for _, record := range bytes.Split(data, []byte{recordSeparator}) {
			if len(record) == 0 {
				continue
			}
			if stop := c.handleRecord(record); stop {
				return
			}
		}
	}
}

// handleRecord dispatches one protocol record; a true return ends the pump.
func (c *HubClient) handleRecord(record []byte) bool {
	var message inboundMessage
	if err := json.Unmarshal(record, &message); err != nil {
		log.Warn().Err(err).Msg("dropping unparseable hub record")
		return false
	}

	switch message.Type {
	case msgPing:
		if err := c.writeRecord(outboundMessage{Type: msgPing}); err != nil {
			log.Warn().Err(err).Msg("ping reply failed")
		}
	case msgClose:
		log.Info().Msg("runner closed the connection")
		c.Close()
		return true
	case msgInvocation:
		c.handleInvocation(message)
		if message.Target == targetDisconnect {
			c.Close()
			return true
		}
	}
	return false
}

func (c *HubClient) handleInvocation(message inboundMessage) {
	switch message.Target {
	case targetRegistered:
		if len(message.Arguments) == 0 {
			return
		}
		var botID string
		if err := json.Unmarshal(message.Arguments[0], &botID); err != nil {
			log.Warn().Err(err).Msg("dropping malformed registration id")
			return
		}
		log.Info().Str("botId", botID).Msg("registered with runner")
		select {
		case c.registered <- botID:
		case <-c.done:
		}

	case targetBotState, targetGameState:
		if len(message.Arguments) == 0 {
			return
		}
		var wire wireState
		if err := json.Unmarshal(message.Arguments[0], &wire); err != nil {
			log.Warn().Err(err).Msg("dropping unparseable game state")
			return
		}
		state, err := wire.toGameState()
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed game state")
			return
		}
		select {
		case c.states <- state:
		case <-c.done:
		}

	case targetDisconnect:
		// Handled by the caller.

	default:
		log.Debug().Str("target", message.Target).Msg("ignoring hub invocation")
	}
}
