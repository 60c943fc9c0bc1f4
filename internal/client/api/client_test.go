package api_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lucafehr/fishbuddy/internal/client/api"
	"github.com/lucafehr/fishbuddy/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewClient(config.ClientConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second})
}

func TestCreateThread(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/thread" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `{"thread_id":"t1"}`)
	}))

	id, err := client.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("CreateThread err: %v", err)
	}
	if id != "t1" {
		t.Fatalf("unexpected thread id: %s", id)
	}
}

func TestCreateThreadBackendError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"openai unavailable"}`)
	}))

	if _, err := client.CreateThread(context.Background()); err == nil || !strings.Contains(err.Error(), "openai unavailable") {
		t.Fatalf("expected backend error message, got %v", err)
	}
}

func TestUploadFile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "pdf bytes" {
			t.Errorf("unexpected upload body: %q", data)
		}
		fmt.Fprintf(w, `{"file_id":"f1","filename":%q,"status":"uploaded"}`, header.Filename)
	}))

	ref, err := client.UploadFile(context.Background(), "guide.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("UploadFile err: %v", err)
	}
	if ref.ID != "f1" || ref.Filename != "guide.pdf" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestUploadFileError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"file too large"}`)
	}))

	if _, err := client.UploadFile(context.Background(), "big.pdf", strings.NewReader("x")); err == nil || !strings.Contains(err.Error(), "file too large") {
		t.Fatalf("expected upload error message, got %v", err)
	}
}

func TestListAndDeleteFiles(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/files":
			fmt.Fprint(w, `{"files":[{"file_id":"f1","filename":"a.pdf"},{"file_id":"f2","filename":"b.pdf"}]}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/files/f1":
			fmt.Fprint(w, `{"success":true}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	files, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles err: %v", err)
	}
	if len(files) != 2 || files[0].ID != "f1" || files[1].ID != "f2" {
		t.Fatalf("unexpected files: %+v", files)
	}

	if err := client.DeleteFile(context.Background(), "f1"); err != nil {
		t.Fatalf("DeleteFile err: %v", err)
	}
}

func TestOpenChatStreamDecodesFrames(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("thread_id") != "t1" || q.Get("message") != "hello" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\":\"first\"}\n\n")
		fmt.Fprint(w, ": keepalive comment\n\n")
		fmt.Fprint(w, "data: {\"text\":\"second\"}\n\n")
		fmt.Fprint(w, "data: {\"done\": true}\n\n")
	}))

	stream, err := client.OpenChatStream(context.Background(), "t1", "hello", "{}")
	if err != nil {
		t.Fatalf("OpenChatStream err: %v", err)
	}
	defer stream.Close()

	var texts []string
	for {
		ev, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv err: %v", err)
		}
		if ev.Done {
			break
		}
		texts = append(texts, ev.Text)
	}
	if len(texts) != 2 || texts[0] != "first" || texts[1] != "second" {
		t.Fatalf("unexpected texts: %v", texts)
	}
}

func TestChatStreamMalformedFrame(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\":\"ok\"}\n\n")
		fmt.Fprint(w, "data: {not json}\n\n")
	}))

	stream, err := client.OpenChatStream(context.Background(), "t1", "q", "{}")
	if err != nil {
		t.Fatalf("OpenChatStream err: %v", err)
	}
	defer stream.Close()

	if ev, err := stream.Recv(); err != nil || ev.Text != "ok" {
		t.Fatalf("first frame: ev=%+v err=%v", ev, err)
	}
	if _, err := stream.Recv(); err == nil {
		t.Fatal("expected decode error for malformed frame")
	}
}

func TestChatStreamEOFWithoutDone(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\":\"partial\"}\n\n")
		// Connection simply ends: transport failure from the consumer's view.
	}))

	stream, err := client.OpenChatStream(context.Background(), "t1", "q", "{}")
	if err != nil {
		t.Fatalf("OpenChatStream err: %v", err)
	}
	defer stream.Close()

	if ev, err := stream.Recv(); err != nil || ev.Text != "partial" {
		t.Fatalf("first frame: ev=%+v err=%v", ev, err)
	}
	if _, err := stream.Recv(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
