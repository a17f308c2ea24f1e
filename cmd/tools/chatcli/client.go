package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/zhouzirui/deepchat/backend/internal/handler/chat"
	model "github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

type apiError struct {
	Error string `json:"error"`
}

type apiClient struct {
	client *resty.Client
}

func (c *apiClient) CreateChat(apiKey string) (model.Session, error) {
	var session model.Session
	var failure apiError
	resp, err := c.client.R().
		SetBody(map[string]string{"api_key": apiKey}).
		SetResult(&session).
		SetError(&failure).
		Post("/chats")
	if err != nil {
		return model.Session{}, err
	}
	if resp.IsError() {
		return model.Session{}, fmt.Errorf("create chat: %d %s", resp.StatusCode(), failure.Error)
	}
	return session, nil
}

func (c *apiClient) SendMessage(chatID, text, apiKey, modelName string) (chat.ChatResponse, error) {
	var out chat.ChatResponse
	var failure apiError
	resp, err := c.client.R().
		SetPathParam("chatID", chatID).
		SetBody(chat.SendMessageRequest{UserMessage: text, APIKey: apiKey, ModelName: modelName}).
		SetResult(&out).
		SetError(&failure).
		Post("/chats/{chatID}/messages")
	if err != nil {
		return chat.ChatResponse{}, err
	}
	if resp.IsError() {
		return chat.ChatResponse{}, fmt.Errorf("send message: %d %s", resp.StatusCode(), failure.Error)
	}
	return out, nil
}
