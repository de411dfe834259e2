package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pior/asynctcp"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "optional TOML file with socket options")
	timeout := flag.Duration("timeout", 5*time.Second, "read/write timeout")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	cfg.Reporter = asynctcp.NewLogReporter(logger)

	fmt.Println("asynctcp CLI Tool")
	fmt.Println("=================")
	fmt.Println("Commands: connect <addr>, send <text>, recv [bytes], local, remote, stats, close-read, close-write, quit")
	fmt.Println()

	ch := asynctcp.Open(cfg, nil)
	defer ch.Close()
	fc := asynctcp.NewFutureChannel(ch)
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "connect":
			if len(parts) != 2 {
				fmt.Println("Usage: connect <host:port>")
				continue
			}
			if _, err := fc.Connect(parts[1]).Wait(ctx); err != nil {
				fmt.Printf("Connect failed: %v\n", err)
				continue
			}
			fmt.Printf("Connected to %s\n", parts[1])

		case "send":
			if len(parts) < 2 {
				fmt.Println("Usage: send <text>")
				continue
			}
			payload := []byte(strings.Join(parts[1:], " ") + "\n")
			n, err := fc.Write(payload, *timeout).Wait(ctx)
			if err != nil {
				fmt.Printf("Write failed: %v\n", err)
				continue
			}
			fmt.Printf("Wrote %d bytes\n", n)

		case "recv":
			size := 4096
			if len(parts) == 2 {
				if size, err = strconv.Atoi(parts[1]); err != nil || size <= 0 {
					fmt.Println("Usage: recv [bytes]")
					continue
				}
			}
			buf := make([]byte, size)
			n, err := fc.Read(buf, *timeout).Wait(ctx)
			if err != nil {
				fmt.Printf("Read failed: %v\n", err)
				continue
			}
			if n == asynctcp.EndOfStream {
				fmt.Println("Peer closed the stream")
				continue
			}
			fmt.Printf("Read %d bytes: %q\n", n, buf[:n])

		case "local":
			printAddr(ch.LocalAddr())

		case "remote":
			printAddr(ch.RemoteAddr())

		case "stats":
			s := ch.Stats()
			fmt.Printf("connects=%d reads=%d writes=%d bytes_in=%d bytes_out=%d timeouts=%d errors=%d\n",
				s.Connects, s.Reads, s.Writes, s.BytesRead, s.BytesWritten, s.Timeouts, s.Errors)

		case "close-read":
			ch.CloseRead()
			fmt.Println("Read direction closed")

		case "close-write":
			ch.CloseWrite()
			fmt.Println("Write direction closed")

		case "quit", "exit":
			return

		default:
			fmt.Printf("Unknown command: %s\n", parts[0])
		}
	}
}

func printAddr(addr netip.AddrPort, ok bool) {
	if !ok {
		fmt.Println("(not connected)")
		return
	}
	fmt.Println(addr.String())
}
