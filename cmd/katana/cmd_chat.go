package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"katana/pkg/bot"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	rulesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	relayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func chatCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	responder, err := bot.New(cfg, nil, newRelayClient(cfg))
	if err != nil {
		fmt.Printf("Error building responder: %v\n", err)
		os.Exit(1)
	}

	rl, err := readline.New(promptStyle.Render("you> "))
	if err != nil {
		fmt.Printf("Error initializing terminal: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%s katana chat. /send forces the backend, /quit exits.\n", logo)

	ctx := context.Background()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		switch {
		case text == "/quit" || text == "/exit":
			return
		case text == "/help":
			fmt.Println("Commands: /send <text> (skip rules), /quit")
			continue
		case strings.HasPrefix(text, "/send"):
			command := strings.TrimSpace(strings.TrimPrefix(text, "/send"))
			if command == "" {
				fmt.Println("Usage: /send <command>")
				continue
			}
			printReplyOrError(responder.SendCommand(ctx, command))
			continue
		}

		printReplyOrError(responder.Process(ctx, text))
	}
}

func printReplyOrError(reply bot.Reply, err error) {
	if err != nil {
		fmt.Println(errorStyle.Render("error> ") + err.Error())
		return
	}
	if reply.Text == "" {
		return
	}
	prefix := rulesStyle.Render("katana> ")
	if reply.Source == bot.SourceRelay {
		prefix = relayStyle.Render("backend> ")
	}
	fmt.Println(prefix + reply.Text)
}
