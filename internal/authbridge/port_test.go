package authbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPipeDelivery(t *testing.T) {
	ctx := context.Background()
	a, b := Pipe("parent", "child")

	if err := a.Post(ctx, Message{Type: KindCheckStatus}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	select {
	case inb := <-b.Recv():
		if inb.Origin != "parent" {
			t.Errorf("origin = %q, want %q", inb.Origin, "parent")
		}
		var msg Message
		if err := json.Unmarshal(inb.Payload, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != KindCheckStatus {
			t.Errorf("type = %q, want %q", msg.Type, KindCheckStatus)
		}

		// Reply lands back on the sender's port.
		if err := inb.Reply(ctx, statusMessage(false)); err != nil {
			t.Fatalf("Reply: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	select {
	case inb := <-a.Recv():
		if inb.Origin != "child" {
			t.Errorf("reply origin = %q, want %q", inb.Origin, "child")
		}
	case <-time.After(time.Second):
		t.Fatal("reply not delivered")
	}
}

func TestPipeClosedPost(t *testing.T) {
	a, b := Pipe("parent", "child")
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	err := a.Post(context.Background(), Message{Type: KindCheckStatus})
	if !errors.Is(err, ErrPortClosed) {
		t.Errorf("Post after peer close: %v, want ErrPortClosed", err)
	}
}

func TestStreamPortRead(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"SET_AUTH_TOKEN","token":"abc"}`,
		``, // blank lines are skipped
		`{"type":"CHECK_AUTH_STATUS"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	port := NewStreamPort(strings.NewReader(input), &out, "host")

	var kinds []Kind
	for inb := range port.Recv() {
		if inb.Origin != "host" {
			t.Errorf("origin = %q, want %q", inb.Origin, "host")
		}
		var msg Message
		if err := json.Unmarshal(inb.Payload, &msg); err != nil {
			t.Fatalf("unmarshal %q: %v", inb.Payload, err)
		}
		kinds = append(kinds, msg.Type)
	}

	want := []Kind{KindSetToken, KindCheckStatus}
	if len(kinds) != len(want) {
		t.Fatalf("received %d messages, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestStreamPortPost(t *testing.T) {
	var out bytes.Buffer
	port := NewStreamPort(strings.NewReader(""), &out, "host")

	if err := port.Post(context.Background(), Message{Type: KindRequestAuth}); err != nil {
		t.Fatalf("Post: %v", err)
	}

	line, err := bytes.NewBuffer(out.Bytes()).ReadString('\n')
	if err != nil {
		t.Fatalf("reading framed output: %v", err)
	}
	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	if msg.Type != KindRequestAuth {
		t.Errorf("posted type = %q, want %q", msg.Type, KindRequestAuth)
	}
}

func TestStreamPortCloseEndsRecv(t *testing.T) {
	r, w := io.Pipe()
	port := NewStreamPort(r, io.Discard, "host")

	go func() {
		_, _ = io.WriteString(w, `{"type":"CHECK_AUTH_STATUS"}`+"\n")
		_ = w.Close()
	}()

	var count int
	for range port.Recv() {
		count++
	}
	if count != 1 {
		t.Errorf("received %d messages before close, want 1", count)
	}
}
