package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/configs"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

type ClientOptions struct {
	SendQueueSize  int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
}

func ClientOptionsFromConfig(cfg configs.WebSocketConfig) ClientOptions {
	return ClientOptions{
		SendQueueSize:  cfg.SendQueueSize,
		MaxMessageSize: cfg.MaxMessageSize,
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
	}
}

// Client is a websocket connection with a bounded outbound queue drained by
// WritePump. It implements Transport.
type Client struct {
	ID     string
	UserID domain.UserID

	conn      *connWrapper
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	opts      ClientOptions
}

func NewClient(conn *websocket.Conn, userID domain.UserID, opts ClientOptions) *Client {
	c := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   newConnWrapper(conn),
		send:   make(chan []byte, opts.SendQueueSize),
		closed: make(chan struct{}),
		opts:   opts,
	}

	conn.SetReadLimit(opts.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	return c
}

// Send queues msg without blocking.
func (c *Client) Send(msg []byte) error {
	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.closed:
		return ErrConnClosed
	default:
		return ErrSendBufferFull
	}
}

// Close is idempotent and does not block. It stops WritePump, and the socket
// is closed in the background, which unblocks ReadMessage.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		go func() {
			_ = c.conn.closeWithFrame(websocket.CloseNormalClosure, "", c.opts.WriteWait)
		}()
	})
	return nil
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

// ReadMessage blocks until the next data frame arrives.
func (c *Client) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.conn.ReadMessage()
	return data, err
}

// WritePump writes queued messages and keepalive pings until the client is
// closed or a write fails. Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.write(websocket.TextMessage, msg, c.opts.WriteWait); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.write(websocket.PingMessage, nil, c.opts.WriteWait); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
