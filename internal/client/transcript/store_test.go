package transcript_test

import (
	"errors"
	"testing"

	"github.com/lucafehr/fishbuddy/internal/client/transcript"
	"github.com/lucafehr/fishbuddy/internal/model/chat"
)

func TestAppendUserSnapshotsFiles(t *testing.T) {
	store := transcript.NewStore()
	files := []chat.AttachmentRef{{ID: "f1", Filename: "guide.pdf"}}

	store.AppendUser("hello", files)
	files[0].Filename = "mutated.pdf"

	msgs := store.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[0].Text != "hello" {
		t.Fatalf("unexpected entry: %+v", msgs[0])
	}
	if msgs[0].Files[0].Filename != "guide.pdf" {
		t.Fatal("file snapshot shares memory with the caller slice")
	}
	if msgs[0].ID == "" {
		t.Fatal("message id not assigned")
	}
}

func TestFoldDeltaMonotonic(t *testing.T) {
	store := transcript.NewStore()
	store.AppendUser("q", nil)
	h := store.AppendPendingAssistant()

	deltas := []string{"You can fish", "at Zürichsee."}
	want := ""
	for _, d := range deltas {
		if err := store.FoldDelta(h, d); err != nil {
			t.Fatalf("FoldDelta(%q) err: %v", d, err)
		}
		want += d + "\n"
		msgs := store.Messages()
		if got := msgs[len(msgs)-1].Text; got != want {
			t.Fatalf("intermediate text = %q, want %q", got, want)
		}
	}
}

func TestFoldDeltaAfterFreeze(t *testing.T) {
	store := transcript.NewStore()
	store.AppendUser("q", nil)
	h := store.AppendPendingAssistant()

	if err := store.FoldDelta(h, "partial"); err != nil {
		t.Fatalf("FoldDelta err: %v", err)
	}
	store.Freeze(h)

	if err := store.FoldDelta(h, "late"); !errors.Is(err, transcript.ErrStaleHandle) {
		t.Fatalf("expected ErrStaleHandle after freeze, got %v", err)
	}

	msgs := store.Messages()
	if msgs[len(msgs)-1].Text != "partial\n" {
		t.Fatal("frozen text changed")
	}
}

func TestFoldDeltaStaleTurn(t *testing.T) {
	store := transcript.NewStore()
	store.AppendUser("q1", nil)
	h1 := store.AppendPendingAssistant()
	store.Freeze(h1)

	store.AppendUser("q2", nil)
	h2 := store.AppendPendingAssistant()

	if err := store.FoldDelta(h1, "ghost"); !errors.Is(err, transcript.ErrStaleHandle) {
		t.Fatalf("expected ErrStaleHandle for old handle, got %v", err)
	}
	if err := store.FoldDelta(h2, "live"); err != nil {
		t.Fatalf("current handle must keep folding: %v", err)
	}
}

func TestAppendOnly(t *testing.T) {
	store := transcript.NewStore()
	store.AppendUser("first", []chat.AttachmentRef{{ID: "f1", Filename: "a.pdf"}})
	h := store.AppendPendingAssistant()
	_ = store.FoldDelta(h, "answer")
	store.Freeze(h)

	before := store.Messages()
	store.AppendUser("second", nil)

	after := store.Messages()
	if len(after) != len(before)+1 {
		t.Fatalf("transcript length must grow by one: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Text != before[i].Text || after[i].Role != before[i].Role {
			t.Fatalf("prior entry %d changed after append", i)
		}
	}
}

func TestSubscribeFiresOnChanges(t *testing.T) {
	store := transcript.NewStore()
	fired := 0
	store.Subscribe(func() { fired++ })

	store.AppendUser("q", nil)
	h := store.AppendPendingAssistant()
	_ = store.FoldDelta(h, "d")
	store.Freeze(h)

	if fired != 4 {
		t.Fatalf("expected 4 notifications, got %d", fired)
	}
}
