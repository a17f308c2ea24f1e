package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	server := flag.String("server", envOrDefault("DEEPCHAT_SERVER", "http://localhost:3000"), "API base URL")
	apiKey := flag.String("key", os.Getenv("DEEPSEEK_API_KEY"), "completion API key")
	modelName := flag.String("model", envOrDefault("AI_DEFAULT_MODEL", "deepseek-reasoner"), "model name")
	chatID := flag.String("chat", "", "resume an existing chat id")
	timeout := flag.Duration("timeout", 90*time.Second, "request timeout")
	flag.Parse()

	if *apiKey == "" {
		if err := survey.AskOne(&survey.Password{Message: "API key:"}, apiKey, survey.WithValidator(survey.Required)); err != nil {
			log.Fatalf("failed to read api key: %v", err)
		}
	}

	client := newAPIClient(*server, *timeout)

	id := *chatID
	if id == "" {
		session, err := client.CreateChat(*apiKey)
		if err != nil {
			log.Fatalf("failed to create chat: %v", err)
		}
		id = session.ID
	}

	fmt.Println(renderBanner(id, *modelName))

	for {
		var text string
		err := survey.AskOne(&survey.Input{Message: "you:"}, &text)
		if errors.Is(err, terminal.InterruptErr) {
			return
		}
		if err != nil {
			log.Fatalf("failed to read input: %v", err)
		}

		text = strings.TrimSpace(text)
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return
		}

		resp, err := client.SendMessage(id, text, *apiKey, *modelName)
		if err != nil {
			fmt.Println(renderError(err))
			continue
		}
		if n := len(resp.Messages); n > 0 {
			fmt.Println(renderMessage(resp.Messages[n-1]))
		}
	}
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/api/v1")
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	return &apiClient{client: client}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
