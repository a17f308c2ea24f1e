package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	model "github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

func renderBanner(chatID, modelName string) string {
	return bannerStyle.Render(fmt.Sprintf("chat %s | model %s | /quit to leave", chatID, modelName))
}

func renderMessage(msg model.Message) string {
	out := assistantStyle.Render("assistant: " + msg.Content)
	if msg.ReasoningContent != nil && *msg.ReasoningContent != "" {
		out = reasoningStyle.Render("(reasoning) "+*msg.ReasoningContent) + "\n" + out
	}
	return out
}

func renderError(err error) string {
	return errorStyle.Render("error: " + err.Error())
}
