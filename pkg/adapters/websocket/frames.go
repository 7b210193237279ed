package websocket

import (
	"github.com/bytedance/sonic"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Frame types exchanged with the browser or telephony bridge.
const (
	FrameUserText      = "user-text-input"
	FramePing          = "ping"
	FramePong          = "pong"
	FrameBotText       = "bot-text"
	FrameSessionUpdate = "session-update"
	FrameSessionEnded  = "session-ended"
	FrameError         = "error"
)

// Frame is one JSON message on the socket.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TextData is the payload of user-text-input and bot-text frames.
type TextData struct {
	Text string `json:"text"`
}

// EndedData is the payload of a session-ended frame.
type EndedData struct {
	SessionID string `json:"session_id"`
	NodeID    string `json:"node_id"`
	Reason    string `json:"reason"`
}

// inbound is the decoding shape of client frames.
type inbound struct {
	Type string   `json:"type"`
	Data TextData `json:"data"`
}

// Encode marshals a frame.
func Encode(f Frame) ([]byte, error) {
	return sonic.Marshal(f)
}

func decode(data []byte) (inbound, error) {
	var in inbound
	err := sonic.Unmarshal(data, &in)
	return in, err
}

// UpdateFrame wraps a session diff.
func UpdateFrame(diff *domain.SessionDiff) Frame {
	return Frame{Type: FrameSessionUpdate, Data: diff}
}

// EndedFrame reports the final state of a session.
func EndedFrame(sess *domain.Session) Frame {
	return Frame{Type: FrameSessionEnded, Data: EndedData{
		SessionID: sess.ID,
		NodeID:    sess.CurrentNodeID,
		Reason:    sess.EndReason,
	}}
}
