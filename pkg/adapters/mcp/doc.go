// Package mcp exposes a single conversation over the Model Context Protocol.
// The connected client acts as the language model: it reads the prompt with
// get_prompt and advances the flow by calling the current node's actions.
package mcp
