package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/pkg/roleclient"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// A terminal remote control: connects to a running server and drives the
// presentation with single-letter commands.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	url := os.Getenv("SYNC_WS_URL")
	if url == "" {
		url = "ws://localhost:3000/ws"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := roleclient.Dial(ctx, roleclient.Options{
		URL:    url,
		Logger: logger.NewNopLogger(),
	})
	if err != nil {
		log.Fatalf("Error: Failed to connect to %s: %v", url, err)
	}
	defer client.Close()

	position := color.New(color.FgCyan, color.Bold)
	client.OnStateChanged = func(st model.PresentationState, event string) {
		if !st.Loaded() {
			position.Println("\r-- no presentation --")
			return
		}
		total := "?"
		if st.TotalSlides > 0 {
			total = strconv.Itoa(st.TotalSlides)
		}
		position.Printf("\r%s  slide %d/%s\n", st.FileName, st.CurrentSlide, total)
	}

	go func() {
		if err := client.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Error: Connection lost: %v", err)
		}
	}()

	remote := roleclient.NewRemote(client)

	fmt.Println("Connected to", url)
	fmt.Println("Commands: n(ext)  b(ack)  <number>  e(nd)  q(uit)")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "n":
			remote.Forward()
		case cmd == "b":
			remote.Back()
		case cmd == "e":
			client.EndPresentation()
		case cmd == "q":
			return
		case cmd == "":
		default:
			page, err := strconv.Atoi(cmd)
			if err != nil {
				fmt.Println("Unknown command:", cmd)
				continue
			}
			remote.Jump(page)
		}
	}
}
