package events

import (
	"fmt"
	"strings"
)

// MessageTemplateEngine provides dynamic message generation for notifications.
type MessageTemplateEngine struct {
	templates map[EventReason]string
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]string),
	}
	engine.loadDefaultTemplates()
	return engine
}

func (e *MessageTemplateEngine) loadDefaultTemplates() {
	e.templates[ReasonSignedIn] = "Signed in"
	e.templates[ReasonSignedOut] = "Signed out"
	e.templates[ReasonSignInFailed] = "Sign-in failed{{if .Error}}: {{.Error}}{{end}}"
	e.templates[ReasonCredentialLoadFailed] = "Could not load saved sign-in{{if .Error}}: {{.Error}}{{end}}"
	e.templates[ReasonCredentialStoreFailed] = "Signed in, but the sign-in could not be saved{{if .Error}}: {{.Error}}{{end}}"

	e.templates[ReasonServerConnected] = "Connected to {{.Server}}"
	e.templates[ReasonServerUnreachable] = "Server unreachable{{if .Error}}: {{.Error}}{{end}}"
	e.templates[ReasonServerAuthInvalid] = "{{.Server}} rejected the sign-in, please sign in again"
	e.templates[ReasonNoServerConfigured] = "No server URL configured"
}

// Render generates a message for the given reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	template, exists := e.templates[reason]
	if !exists {
		return fmt.Sprintf("Event: %s", string(reason))
	}

	return e.renderTemplate(template, data)
}

// SetTemplate allows customizing the message template for a specific reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, template string) {
	e.templates[reason] = template
}

// GetTemplate returns the template for a specific reason.
func (e *MessageTemplateEngine) GetTemplate(reason EventReason) (string, bool) {
	template, exists := e.templates[reason]
	return template, exists
}

// renderTemplate substitutes EventData fields. Only {{.Server}}, {{.Error}}
// and {{if .Field}}...{{end}} blocks over those fields are supported.
func (e *MessageTemplateEngine) renderTemplate(template string, data EventData) string {
	result := template

	result = e.renderConditional(result, "{{if .Error}}", "{{end}}", data.Error != "")
	result = e.renderConditional(result, "{{if .Server}}", "{{end}}", data.Server != "")

	server := data.Server
	if server == "" {
		server = "server"
	}
	result = strings.ReplaceAll(result, "{{.Server}}", server)
	result = strings.ReplaceAll(result, "{{.Error}}", data.Error)

	return result
}

// renderConditional handles a single conditional block.
func (e *MessageTemplateEngine) renderConditional(template, startMarker, endMarker string, condition bool) string {
	startIndex := strings.Index(template, startMarker)
	if startIndex == -1 {
		return template
	}

	endIndex := strings.Index(template[startIndex:], endMarker)
	if endIndex == -1 {
		return template
	}
	endIndex += startIndex

	before := template[:startIndex]
	after := template[endIndex+len(endMarker):]
	if !condition {
		return before + after
	}
	content := template[startIndex+len(startMarker) : endIndex]
	return before + content + after
}
