// Command client is a line-oriented test client for the quiz server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/network"
)

const usage = `commands:
  create [closest|buzzer]   host a new room
  select <content-id>       pick the room's question set
  join <code> <name>        join a room as a player
  next                      advance to the next question
  answer <text>             submit an answer
  buzz                      press the buzzer
  reset                     clear the buzzer
  leave                     leave the current room
  quit`

func send(c *websocket.Conn, msgID uint16, payload any) error {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return err
		}
	}
	packet, err := network.EncodePacket(msgID, data)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// command turns one input line into a request.
func command(line string) (uint16, any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, nil
	}
	args := fields[1:]
	switch fields[0] {
	case "create":
		req := network.CreateRoomRequest{}
		if len(args) > 0 {
			req.Scoring = args[0]
		}
		return network.MsgTypeCreateRoom, req, nil
	case "select":
		if len(args) != 1 {
			return 0, nil, fmt.Errorf("usage: select <content-id>")
		}
		return network.MsgTypeSelectContent, network.SelectContentRequest{ContentID: args[0]}, nil
	case "join":
		if len(args) < 2 {
			return 0, nil, fmt.Errorf("usage: join <code> <name>")
		}
		return network.MsgTypeJoinRoom, network.JoinRoomRequest{RoomCode: args[0], Name: strings.Join(args[1:], " ")}, nil
	case "next":
		return network.MsgTypeAdvance, nil, nil
	case "answer":
		if len(args) == 0 {
			return 0, nil, fmt.Errorf("usage: answer <text>")
		}
		return network.MsgTypeSubmitAnswer, network.SubmitAnswerRequest{Answer: network.AnswerText(strings.Join(args, " "))}, nil
	case "buzz":
		return network.MsgTypeBuzz, nil, nil
	case "reset":
		return network.MsgTypeHostReset, nil, nil
	case "leave":
		return network.MsgTypeLeaveRoom, nil, nil
	}
	return 0, nil, fmt.Errorf("unknown command %q", fields[0])
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	if err := logger.Init(level, true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	logger.Log.Infof("Connecting to %s", u.String())
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Log.Infof("Read error: %v", err)
				return
			}
			packet, err := network.DecodePacket(message)
			if err != nil {
				logger.Log.Warnf("Dropping malformed packet: %v", err)
				continue
			}
			fmt.Printf("<- %s %s\n", network.MsgName(packet.MsgID), packet.Data)
		}
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			closeConn(c, done)
			return
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "quit" {
				closeConn(c, done)
				return
			}
			msgID, payload, err := command(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if msgID == 0 {
				continue
			}
			if err := send(c, msgID, payload); err != nil {
				logger.Log.Errorf("Write error: %v", err)
				return
			}
			logger.Log.Debugf("-> %s", network.MsgName(msgID))
		}
	}
}

func closeConn(c *websocket.Conn, done <-chan struct{}) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		logger.Log.Infof("Write close error: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
