// Command client is the interactive terminal front-end: a viewport into a
// chatbois server. It walks the user through registering, creating chats,
// sending messages and tailing live traffic. No invariants live here.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"chatbois/httpapi"
)

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadClientConfig(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}

	if len(cfg.Servers) == 0 {
		color.Green.Println("No known servers yet, let's add one.")
		addServer(&cfg)
		_ = saveClientConfig(config.ConfigPath, cfg)
	}

	for {
		color.Green.Println("\n[1] view chats  [2] create chat  [3] send message  [4] live tail  [5] add server  [q] quit")
		switch prompt("choice") {
		case "1":
			withServer(cfg, viewChats)
		case "2":
			withServer(cfg, createChat)
		case "3":
			withServer(cfg, sendMessage)
		case "4":
			withServer(cfg, liveTail)
		case "5":
			addServer(&cfg)
			_ = saveClientConfig(config.ConfigPath, cfg)
		case "q":
			return
		}
	}
}

func withServer(cfg ClientConfig, fn func(KnownServer)) {
	if len(cfg.Servers) == 0 {
		color.Red.Println("No servers configured")
		return
	}
	if len(cfg.Servers) == 1 {
		fn(cfg.Servers[0])
		return
	}
	for i, s := range cfg.Servers {
		fmt.Printf("[%d] %s (%s as %s)\n", i, s.Name, s.HTTPURL, s.Username)
	}
	idx, err := strconv.Atoi(prompt("server"))
	if err != nil || idx < 0 || idx >= len(cfg.Servers) {
		color.Red.Println("No such server")
		return
	}
	fn(cfg.Servers[idx])
}

func addServer(cfg *ClientConfig) {
	name := prompt("What do you want to call this server?")
	address := prompt("What address is the server running at? (e.g. http://localhost:5000)")
	username := prompt("What is your username for this server?")

	server := KnownServer{Name: name, Username: username, HTTPURL: strings.TrimSuffix(address, "/")}

	if confirm("Have you registered with this server yet?") {
		server.Token = prompt("What is your token?")
	} else {
		resp, err := http.Post(fmt.Sprintf("%s/register/%s", server.HTTPURL, username), "application/json", nil)
		if err != nil {
			color.Red.Printf("Registration failed: %v\n", err)
			return
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusAccepted {
			color.Red.Printf("Registration refused (%s)\n", resp.Status)
			return
		}
		var reg httpapi.RegisterResponse
		if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
			color.Red.Printf("Registration failed: %v\n", err)
			return
		}
		server.Token = reg.Token
		color.Green.Printf("Registered as %s\n", reg.Username)
	}

	cfg.Servers = append(cfg.Servers, server)
}

func viewChats(server KnownServer) {
	resp, err := http.Get(fmt.Sprintf("%s/get_chats/%s/%s", server.HTTPURL, server.Username, server.Token))
	if err != nil {
		color.Red.Printf("Fetch failed: %v\n", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		color.Red.Printf("Fetch refused (%s)\n", resp.Status)
		return
	}

	var chats httpapi.GetChatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&chats); err != nil {
		color.Red.Printf("Fetch failed: %v\n", err)
		return
	}
	if chats.NoChats {
		color.Yellow.Println("You have no chats to fetch")
		return
	}

	for _, chat := range chats.Chats {
		color.Green.Printf("\n%s (%s)\n", chat.Name, strings.Join(chat.Members, ", "))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Sender", "Content"})
		for _, msg := range chat.History {
			table.Append([]string{msg.Sender, msg.Content})
		}
		table.Render()
	}
}

func createChat(server KnownServer) {
	chatname := prompt("Chat name")
	members := strings.Split(prompt("Members (comma separated, including you)"), ",")
	for i := range members {
		members[i] = strings.TrimSpace(members[i])
	}

	body, _ := json.Marshal(httpapi.CreateChatRequest{Members: members})
	resp, err := http.Post(
		fmt.Sprintf("%s/make_chat/%s/%s", server.HTTPURL, server.Username, chatname),
		"application/json", bytes.NewReader(body))
	if err != nil {
		color.Red.Printf("Create failed: %v\n", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusAccepted {
		color.Red.Printf("Create refused (%s)\n", resp.Status)
		return
	}
	color.Green.Printf("Chat [%s] created\n", chatname)
}

func sendMessage(server KnownServer) {
	dest := prompt("Chat")
	content := prompt("Message")

	body, _ := json.Marshal(httpapi.SendMessageRequest{
		Sender:  server.Username,
		Dest:    dest,
		Content: content,
	})
	resp, err := http.Post(server.HTTPURL+"/send_message", "application/json", bytes.NewReader(body))
	if err != nil {
		color.Red.Printf("Send failed: %v\n", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		color.Red.Printf("Send refused (%s)\n", resp.Status)
		return
	}
	color.Green.Println("Delivered")
}

// liveTail holds the websocket open and prints pushed messages until the
// user presses Enter.
func liveTail(server KnownServer) {
	wsURL := strings.Replace(server.HTTPURL, "http", "ws", 1)
	conn, _, err := websocket.DefaultDialer.Dial(
		fmt.Sprintf("%s/connect/%s", wsURL, server.Username), nil)
	if err != nil {
		color.Red.Printf("Connect failed: %v\n", err)
		return
	}

	color.Green.Println("Live. Press Enter to stop.")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg httpapi.WireMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			color.Cyan.Printf("[%s] %s: %s\n", msg.Chat, msg.Sender, msg.Content)
		}
	}()

	_, _ = stdin.ReadString('\n')
	_ = conn.Close()
	<-done
}
