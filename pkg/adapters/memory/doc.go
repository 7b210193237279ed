// Package memory provides in-process adapters: a snapshot store, a channel
// transport and a scripted language model used for rehearsals and tests.
package memory
