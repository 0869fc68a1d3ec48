package connection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minhpascal/IBREST/internal/tws"
)

// Transport dials upstream sessions. The production implementation speaks
// JSON frames over WebSocket; tests substitute an in-memory fake.
type Transport interface {
	// Dial opens a session bound to the given clientId.
	Dial(ctx context.Context, clientID int) (Session, error)
}

// Session is one established upstream session.
type Session interface {
	// ReadEvent blocks until the next decodable event arrives. Frames
	// that fail to decode are logged and skipped; a transport error ends
	// the session.
	ReadEvent() (tws.Event, error)

	// WriteCommand frames and sends one command.
	WriteCommand(cmd tws.Command) error

	// Close tears the session down.
	Close() error
}

// wsTransport dials JSON-over-WebSocket sessions.
type wsTransport struct {
	cfg    DialConfig
	logger *slog.Logger
}

// NewWSTransport creates the websocket transport.
func NewWSTransport(cfg DialConfig, logger *slog.Logger) Transport {
	if logger == nil {
		logger = slog.Default()
	}
	return &wsTransport{cfg: cfg, logger: logger}
}

func (t *wsTransport) Dial(ctx context.Context, clientID int) (Session, error) {
	url := fmt.Sprintf("ws://%s:%d/ws?clientId=%d", t.cfg.Host, t.cfg.Port, clientID)

	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: t.cfg.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	t.logger.Debug("session established", "client_id", clientID, "url", url)

	return &wsSession{
		conn:         conn,
		writeTimeout: t.cfg.WriteTimeout,
		logger:       t.logger.With("client_id", clientID),
	}, nil
}

// wsSession wraps one websocket connection.
type wsSession struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	// Write serialization
	writeMu sync.Mutex
}

func (s *wsSession) ReadEvent() (tws.Event, error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		ev, err := tws.DecodeEvent(data)
		if err != nil {
			s.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}
		return ev, nil
	}
}

func (s *wsSession) WriteCommand(cmd tws.Command) error {
	data, err := tws.EncodeCommand(cmd)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSession) Close() error {
	s.writeMu.Lock()
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()

	return s.conn.Close()
}
