package models

// Part is one piece of content; only text parts are used
type Part struct {
	Text string `json:"text"`
}

// Content groups the parts of a single turn
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the body sent to generateContent
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// NewGenerateRequest wraps a single prompt in the request shape
func NewGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}
}

// Path of the reply text inside a generateContent response
const ReplyTextPath = "candidates.0.content.parts.0.text"
