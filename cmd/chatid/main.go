// Command chatid prints the chat ID of every update the bot receives.
// Add the bot to a group or channel, run this, send any message there and
// copy the printed ID into config.yaml.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("telegram login failed: %v", err)
	}
	fmt.Printf("Logged in as @%s, waiting for messages (Ctrl+C to stop)...\n", api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "channel_post"}
	updates := api.GetUpdatesChan(u)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			var chat *tgbotapi.Chat
			switch {
			case update.ChannelPost != nil:
				chat = update.ChannelPost.Chat
			case update.Message != nil:
				chat = update.Message.Chat
			default:
				continue
			}
			fmt.Printf("Chat: %q  Type: %s  ID: %d\n", chat.Title, chat.Type, chat.ID)
		case <-sigc:
			api.StopReceivingUpdates()
			return
		}
	}
}
