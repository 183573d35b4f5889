package lineup

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, lineupURL string) *Client {
	t.Helper()
	client, err := NewClient(lineupURL, "TestApp/1.0")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.http = &http.Client{Timeout: 5 * time.Second}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name      string
		lineupURL string
		userAgent string
		wantErr   bool
	}{
		{"valid", "http://10.0.0.4/lineup.json", "TestApp/1.0", false},
		{"https", "https://tuner.example/lineup.json", "TestApp/1.0", false},
		{"default url", DefaultURL, "TestApp/1.0", false},
		{"surrounding spaces", "  http://10.0.0.4/lineup.json  ", "TestApp/1.0", false},
		{"empty user agent", "http://10.0.0.4/lineup.json", "", true},
		{"whitespace user agent", "http://10.0.0.4/lineup.json", "   ", true},
		{"empty url", "", "TestApp/1.0", true},
		{"no scheme", "10.0.0.4/lineup.json", "TestApp/1.0", true},
		{"ftp scheme", "ftp://10.0.0.4/lineup.json", "TestApp/1.0", true},
		{"no host", "http:///lineup.json", "TestApp/1.0", true},
		{"unparseable", "http://[::1", "TestApp/1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.lineupURL, tt.userAgent)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient(%q, %q) error = %v, wantErr %v", tt.lineupURL, tt.userAgent, err, tt.wantErr)
			}
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	var gotAgent, gotAccept, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"GuideNumber":"2.1","GuideName":"Test","VideoCodec":"MPEG2","AudioCodec":"AC3","URL":"http://stream/1","HD":1},
			{"GuideNumber":"3.1","GuideName":"Other","VideoCodec":"H264","AudioCodec":"AAC","URL":"http://stream/2"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/lineup.json")
	channels, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}
	if channels[0].GuideName != "Test" || channels[1].GuideName != "Other" {
		t.Errorf("channel order = %q, %q", channels[0].GuideName, channels[1].GuideName)
	}
	if channels[0].HD == nil || *channels[0].HD != 1 {
		t.Errorf("channels[0].HD = %v, want 1", channels[0].HD)
	}
	if channels[1].HD != nil {
		t.Errorf("channels[1].HD = %v, want absent", *channels[1].HD)
	}
	if gotPath != "/lineup.json" {
		t.Errorf("path = %q, want /lineup.json", gotPath)
	}
	if gotAgent != "TestApp/1.0" {
		t.Errorf("User-Agent = %q, want TestApp/1.0", gotAgent)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() should return error for HTTP 503")
	}
	if !errors.Is(err, ErrStatus) {
		t.Errorf("error should match ErrStatus, got: %v", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should contain status code, got: %v", err)
	}
}

func TestClient_Fetch_OversizedBody(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"at limit", maxBodyBytes},
		{"over limit", maxBodyBytes + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat(" ", tt.size)))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Fetch(context.Background())
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("Fetch() error = %v, want ErrDecode", err)
			}
			oversized := strings.Contains(err.Error(), "exceeds 10 MiB")
			if oversized != (tt.size > maxBodyBytes) {
				t.Errorf("Fetch() error = %v, oversized reported = %v", err, oversized)
			}
		})
	}
}

func TestClient_Fetch_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "not valid json"},
		{"object", `{"GuideNumber":"2.1"}`},
		{"missing field", `[{"GuideNumber":"2.1","GuideName":"Test","VideoCodec":"MPEG2","AudioCodec":"AC3"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			channels, err := client.Fetch(context.Background())
			if err == nil {
				t.Fatalf("Fetch() = %v, want decode error", channels)
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("error should match ErrDecode, got: %v", err)
			}
			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error should be a *FetchError, got %T", err)
			}
			if fetchErr.URL != server.URL {
				t.Errorf("FetchError.URL = %q, want %q", fetchErr.URL, server.URL)
			}
		})
	}
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	client := newTestClient(t, "http://"+addr+"/lineup.json")
	_, err = client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch() should fail when nothing is listening")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error should match ErrTransport, got: %v", err)
	}
}

func TestClient_Fetch_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Fetch(ctx)
	if err == nil {
		t.Fatal("Fetch() should return error when context is cancelled")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("error should match ErrTransport, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got: %v", err)
	}
}

func TestClient_URL(t *testing.T) {
	client := newTestClient(t, " http://10.0.0.4/lineup.json ")
	if client.URL() != "http://10.0.0.4/lineup.json" {
		t.Errorf("URL() = %q, want trimmed value", client.URL())
	}
}
