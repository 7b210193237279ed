// Package eino adapts CloudWeGo Eino chat models to ports.LanguageModel.
//
// The manifest of the current node is converted into Eino tool descriptions
// and bound to the model on every turn.
package eino
