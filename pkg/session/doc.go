/*
Package session serializes access to live session snapshots.

The Manager guards each session id with a reference-counted mutex, optionally
backed by a distributed lock, and keeps the snapshot store in step with the
conversation: active sessions are saved, ended sessions are dropped.
*/
package session
