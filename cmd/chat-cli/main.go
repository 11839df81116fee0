package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/snow6692/chat/internal/chatclient"
	"github.com/snow6692/chat/internal/hub"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func main() {
	serverURL := flag.String("server", "ws://localhost:5000/ws", "relay WebSocket URL")
	flag.Parse()

	fmt.Printf("Connecting to %s...\n", *serverURL)

	client := chatclient.New(*serverURL, chatclient.Handlers{
		OnMessage: func(msg hub.Message) {
			fmt.Printf("[%s] %s\n", shortID(msg.SenderID), msg.Content)
		},
		OnConnect: func(attempt int) {
			if attempt == 1 {
				fmt.Println("Connected. Type a message and press enter.")
			} else {
				fmt.Println("Reconnected to server.")
			}
		},
		OnError: func(err error) {
			fmt.Printf("Connection error: %v\n", err)
		},
	})

	if err := client.Connect(); err != nil {
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := client.Send(scanner.Text()); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
