// Command racebot is a small interactive client for exercising a running
// race server. It connects, joins a room, and relays typed commands:
//
//	/join abcd     join a room
//	/leave         leave the current room
//	/start /end    lifecycle signals
//	/text          ask the server to generate a passage
//	anything else  sent as a chat message
//
// Incoming events from the peer are printed as they arrive.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

var (
	serverURL = flag.String("url", "ws://localhost:8000/ws", "race server websocket URL")
	roomID    = flag.String("room", "", "room to join on startup (4 characters)")
)

// envelope mirrors the server's wire format.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   uint64          `json:"ack,omitempty"`
}

func main() {
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *serverURL, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", *serverURL)

	go printIncoming(conn)

	ackSeq := uint64(0)
	send := func(event string, data any, wantAck bool) {
		env := envelope{Event: event}
		if data != nil {
			raw, err := json.Marshal(data)
			if err != nil {
				log.Printf("Failed to encode %s: %v", event, err)
				return
			}
			env.Data = raw
		}
		if wantAck {
			ackSeq++
			env.Ack = ackSeq
		}
		if err := conn.WriteJSON(env); err != nil {
			log.Fatalf("Failed to send %s: %v", event, err)
		}
	}

	if *roomID != "" {
		send("join-room", *roomID, true)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/join "):
			send("join-room", strings.TrimSpace(strings.TrimPrefix(line, "/join ")), true)
		case line == "/leave":
			send("leave-room", nil, true)
		case line == "/start":
			send("start", nil, false)
		case line == "/end":
			send("end", nil, false)
		case line == "/text":
			send("set-text", nil, true)
		default:
			send("send-message", line, true)
		}
	}
}

// printIncoming decodes server frames and prints them in a readable form.
func printIncoming(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Fatalf("Connection closed: %v", err)
		}

		switch env.Event {
		case "ack":
			var result struct {
				Success string `json:"success"`
				Error   string `json:"error"`
				Text    string `json:"text"`
			}
			json.Unmarshal(env.Data, &result)
			switch {
			case result.Error != "":
				fmt.Printf("!! %s\n", result.Error)
			case result.Text != "":
				fmt.Printf("ok: %s\n   passage: %s\n", result.Success, result.Text)
			default:
				fmt.Printf("ok: %s\n", result.Success)
			}

		case "receive-message":
			var message string
			json.Unmarshal(env.Data, &message)
			fmt.Printf("peer: %s\n", message)

		case "text-update":
			var payload struct {
				Text string `json:"text"`
			}
			json.Unmarshal(env.Data, &payload)
			fmt.Printf(">>> passage: %s\n", payload.Text)

		default:
			fmt.Printf(">>> %s\n", env.Event)
		}
	}
}
