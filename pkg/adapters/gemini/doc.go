// Package gemini implements ports.LanguageModel with the Google Gen AI SDK.
package gemini
