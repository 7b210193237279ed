// Package websocket carries a conversation over a websocket connection.
//
// Clients send {"type":"user-text-input","data":{"text":"..."}} for guest
// turns and {"type":"ping"} as a keep-alive. The host answers with bot-text,
// session-update, session-ended and pong frames.
package websocket
