package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/guessactor/internal/game"
)

// nextStagesEvent reads SSE lines until the next stages payload.
func nextStagesEvent(t *testing.T, sc *bufio.Scanner) StagesResponse {
	t.Helper()
	for sc.Scan() {
		data, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var resp StagesResponse
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		return resp
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return StagesResponse{}
}

func TestStageStream(t *testing.T) {
	env := newTestEnv(t)
	p := env.register(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/play/stages/stream?token="+p.Token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}

	sc := bufio.NewScanner(resp.Body)
	first := nextStagesEvent(t, sc)
	if len(first.Stages) != 2 {
		t.Fatalf("first event has %d stages, want 2", len(first.Stages))
	}

	_, err = env.catalog.Write(ctx, "stage3", game.Stage{Title: "New", Actors: []game.Actor{
		{Name: "Cate Blanchett", Image: "https://img.test/cate.jpg", Options: []string{"Cate Blanchett", "Tilda Swinton"}},
	}})
	if err != nil {
		t.Fatalf("write stage: %v", err)
	}

	second := nextStagesEvent(t, sc)
	if len(second.Stages) != 3 || second.Version <= first.Version {
		t.Errorf("second event: %d stages at version %d (first %d)", len(second.Stages), second.Version, first.Version)
	}
}

func TestProfileMirror(t *testing.T) {
	env := newTestEnv(t)
	p := env.register(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/api/play/ws?token=" + p.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read hello: %v", err)
	}
	var hello MirrorMessage
	if err := json.Unmarshal(data, &hello); err != nil {
		t.Fatalf("decode hello: %v", err)
	}
	if hello.Type != "profile" || hello.Profile.Level != 1 {
		t.Errorf("hello = %+v", hello)
	}

	// A change made through another view is mirrored.
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/api/play/daily", nil)
	req.Header.Set("Authorization", "Bearer "+p.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("claim daily: %v", err)
	}
	resp.Body.Close()

	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev game.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.Type != game.EventCoinsChanged || ev.Coins != 40 {
		t.Errorf("event = %+v, want coins_changed with 40", ev)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestProfileMirrorRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):]+"/api/play/ws", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %v, want 401", resp)
	}
}
