package events_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
	"github.com/msomdec/recipe-community/internal/events"
)

type natsMsg struct {
	subject string
	data    []byte
}

// startFakeNATS accepts one client and answers the handshake and PINGs of
// the NATS client protocol. Published messages are sent on the returned
// channel.
func startFakeNATS(t *testing.T) (string, <-chan natsMsg) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	msgs := make(chan natsMsg, 16)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		w := bufio.NewWriter(conn)
		r := bufio.NewReader(conn)
		w.WriteString(`INFO {"server_id":"fake","version":"2.9.0","proto":1,"max_payload":1048576,"headers":true}` + "\r\n")
		w.Flush()

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "PING":
				w.WriteString("PONG\r\n")
				w.Flush()
			case "PUB":
				// PUB <subject> [reply-to] <#bytes>
				n, _ := strconv.Atoi(fields[len(fields)-1])
				payload := make([]byte, n+2)
				if _, err := io.ReadFull(r, payload); err != nil {
					return
				}
				msgs <- natsMsg{subject: fields[1], data: payload[:n]}
			}
		}
	}()
	return "nats://" + ln.Addr().String(), msgs
}

func TestSubject_PostLiked(t *testing.T) {
	if got := events.Subject(domain.EventPostLiked); got != "recipes.events.post.liked" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	url, msgs := startFakeNATS(t)

	pub, err := events.ConnectNATS(url)
	if err != nil {
		t.Fatalf("ConnectNATS: %v", err)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.Publish(context.Background(), domain.Event{
		Type:   domain.EventPostCreated,
		PostID: 42,
		UserID: 7,
		At:     at,
	})
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case m := <-msgs:
		if m.subject != "recipes.events.post.created" {
			t.Fatalf("unexpected subject %q", m.subject)
		}
		var got domain.Event
		if err := json.Unmarshal(m.data, &got); err != nil {
			t.Fatalf("decode payload %q: %v", m.data, err)
		}
		if got.Type != domain.EventPostCreated || got.PostID != 42 || got.UserID != 7 || !got.At.Equal(at) {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message published")
	}
}

func TestConnectNATS_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := events.ConnectNATS("nats://" + addr); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}
