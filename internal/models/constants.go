// Package models contains data types and constants for the generative-language API.
package models

import "strings"

// Endpoint for the generative-language REST API
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	APIVersion     = "v1beta"
)

// Fixed texts shown to the user
const (
	WindowTitle     = "Ai Chat Bot"
	HeaderTitle     = "AI Chat"
	NoResponseReply = "No response received."
	ErrorReply      = "Error: Unable to fetch a response."
)

// Model represents a generative model by its API identifier
type Model struct {
	Name string
}

// Available models
var (
	ModelFlash = Model{Name: "gemini-2.5-flash"}
	ModelPro   = Model{Name: "gemini-2.5-pro"}
	ModelLite  = Model{Name: "gemini-2.5-flash-lite"}

	// DefaultModel is the recommended default
	DefaultModel = ModelFlash
)

// AllModels returns a list of all known models
func AllModels() []Model {
	return []Model{ModelFlash, ModelPro, ModelLite}
}

// ModelFromName resolves a short alias or a full model id.
// Unknown ids are passed through so newer models work without a release.
func ModelFromName(name string) Model {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "":
		return DefaultModel
	case "flash", "fast":
		return ModelFlash
	case "pro":
		return ModelPro
	case "lite":
		return ModelLite
	}
	return Model{Name: strings.TrimPrefix(name, "models/")}
}

// GenerateEndpoint returns the generateContent URL for a model under baseURL
func GenerateEndpoint(baseURL string, model Model) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + APIVersion + "/models/" + model.Name + ":generateContent"
}

// DefaultHeaders returns the default headers for generateContent requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "aichat/" + Version,
	}
}

// Version is set at build time
var Version = "0.1.0"
