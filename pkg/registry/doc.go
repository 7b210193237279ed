// Package registry loads a flow document into an immutable, validated set of nodes.
package registry
