package rooms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCreateRoom(t *testing.T) {
	expires := time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rooms" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}

		var payload struct {
			Privacy    string `json:"privacy"`
			Properties struct {
				Exp int64 `json:"exp"`
			} `json:"properties"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.Privacy != "private" {
			t.Errorf("expected private room, got %q", payload.Privacy)
		}
		if payload.Properties.Exp != expires.Unix() {
			t.Errorf("expected exp %d, got %d", expires.Unix(), payload.Properties.Exp)
		}

		json.NewEncoder(w).Encode(map[string]string{
			"name": "swift-otter",
			"url":  "https://rooms.example.com/swift-otter",
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL, "secret", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	room, err := client.CreateRoom(context.Background(), expires)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Name != "swift-otter" {
		t.Errorf("unexpected room name %q", room.Name)
	}
	if room.URL != "https://rooms.example.com/swift-otter" {
		t.Errorf("unexpected room url %q", room.URL)
	}
}

func TestCreateRoomIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"name": "half-built"})
	}))
	defer srv.Close()

	client, err := New(srv.URL, "secret", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.CreateRoom(context.Background(), time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for incomplete room response")
	}
}

func TestExtendRoom(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(srv.URL+"/", "secret", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.ExtendRoom(context.Background(), "swift-otter", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("ExtendRoom: %v", err)
	}
	if gotPath != "/rooms/swift-otter" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestExtendRoomServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(srv.URL, "secret", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.ExtendRoom(context.Background(), "gone", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
