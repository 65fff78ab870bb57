package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWrapper serializes writes on a gorilla connection, which allows only
// one concurrent writer.
type connWrapper struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

func newConnWrapper(c *websocket.Conn) *connWrapper {
	return &connWrapper{conn: c}
}

func (w *connWrapper) write(messageType int, data []byte, wait time.Duration) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(messageType, data)
}

// closeWithFrame sends a close frame without waiting for the peer and then
// closes the socket.
func (w *connWrapper) closeWithFrame(code int, text string, wait time.Duration) error {
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text),
		time.Now().Add(wait))
	return w.conn.Close()
}
