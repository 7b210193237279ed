package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aretw0/hostflow/internal/logging"
	"github.com/aretw0/hostflow/pkg/domain"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	outboxSize     = 32
)

// ErrOutboxFull is returned by Send when the writer cannot keep up.
var ErrOutboxFull = errors.New("websocket outbox is full")

// Transport implements ports.Transport over a websocket connection.
// Guest text arrives as user-text-input frames; host utterances leave as bot-text frames.
type Transport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	in     chan string
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	closed chan struct{}
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

// New starts the read and write pumps on conn.
func New(conn *websocket.Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:   conn,
		logger: logging.NewNop(),
		in:     make(chan string, 8),
		out:    make(chan []byte, outboxSize),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.readPump()
	go t.writePump()
	return t
}

func (t *Transport) Receive(ctx context.Context) (string, error) {
	select {
	case text := <-t.in:
		return text, nil
	case <-t.done:
		return "", domain.ErrDisconnected
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *Transport) Speak(ctx context.Context, text string) error {
	return t.Send(ctx, Frame{Type: FrameBotText, Data: TextData{Text: text}})
}

// Send queues a frame for the writer.
func (t *Transport) Send(ctx context.Context, f Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	select {
	case <-t.done:
		return domain.ErrDisconnected
	default:
	}
	select {
	case t.out <- data:
		return nil
	case <-t.done:
		return domain.ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Notify queues a frame without blocking. Frames are dropped when the outbox is full.
func (t *Transport) Notify(f Frame) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	select {
	case t.out <- data:
		return nil
	case <-t.done:
		return domain.ErrDisconnected
	default:
		return ErrOutboxFull
	}
}

func (t *Transport) Done() <-chan struct{} { return t.done }

// Close flushes pending frames, sends a close frame and releases the connection.
func (t *Transport) Close() error {
	t.shutdown()
	<-t.closed
	return nil
}

func (t *Transport) shutdown() {
	t.once.Do(func() { close(t.done) })
}

func (t *Transport) readPump() {
	defer t.shutdown()

	t.conn.SetReadLimit(maxMessageSize)
	_ = t.conn.SetReadDeadline(time.Now().Add(pongWait))
	t.conn.SetPongHandler(func(string) error {
		return t.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.logger.Warn("Websocket read failed", "err", err)
			}
			return
		}
		_ = t.conn.SetReadDeadline(time.Now().Add(pongWait))
		if messageType != websocket.TextMessage {
			continue
		}

		frame, err := decode(data)
		if err != nil {
			t.logger.Debug("Ignoring malformed frame", "err", err)
			continue
		}
		switch frame.Type {
		case FrameUserText:
			if frame.Data.Text == "" {
				continue
			}
			select {
			case t.in <- frame.Data.Text:
			case <-t.done:
				return
			}
		case FramePing:
			_ = t.Notify(Frame{Type: FramePong})
		default:
			t.logger.Debug("Ignoring frame", "type", frame.Type)
		}
	}
}

func (t *Transport) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = t.conn.Close()
		close(t.closed)
	}()

	for {
		select {
		case data := <-t.out:
			if err := t.write(data); err != nil {
				t.shutdown()
				return
			}
		case <-ticker.C:
			if err := t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				t.shutdown()
				return
			}
		case <-t.done:
			for {
				select {
				case data := <-t.out:
					if t.write(data) != nil {
						return
					}
				default:
					_ = t.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

func (t *Transport) write(data []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}
