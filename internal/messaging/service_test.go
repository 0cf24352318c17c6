package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/slotbook/internal/model"
	"github.com/hitoshi/slotbook/internal/repository"
	"github.com/hitoshi/slotbook/internal/security"
)

// mockSanitizer はテスト用のTextSanitizerモック。
type mockSanitizer struct {
	calls int
}

func (m *mockSanitizer) Sanitize(raw string) string {
	m.calls++
	return strings.TrimSpace(raw)
}

type mockMessageRepo struct {
	repository.MessageRepository
	createFn func(ctx context.Context, m *model.Message) error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	return m.createFn(ctx, msg)
}

func TestService_SendAndInbox(t *testing.T) {
	ctx := context.Background()
	sanitizer := &mockSanitizer{}
	svc := NewService(repository.NewMemoryMessageRepo(), sanitizer)

	id1, err := svc.Send(ctx, "student1", "teacher1", "first")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.Send(ctx, "student2", "teacher1", "second"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	svc.Send(ctx, "teacher1", "student1", "reply")

	if sanitizer.calls != 3 {
		t.Errorf("sanitizer calls = %d, want 3", sanitizer.calls)
	}

	inbox, err := svc.Inbox(ctx, "teacher1")
	if err != nil {
		t.Fatalf("Inbox returned error: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("inbox = %d, want 2", len(inbox))
	}
	if inbox[0].ID != id1 || inbox[0].Content != "first" || inbox[1].Content != "second" {
		t.Errorf("unexpected inbox order: %+v %+v", inbox[0], inbox[1])
	}
	if inbox[0].Read {
		t.Error("new message should be unread")
	}
}

// TestService_Send_StripsMarkup は本文のHTMLタグが除去されることを検証する。
func TestService_Send_StripsMarkup(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryMessageRepo(), security.NewTextSanitizer())

	if _, err := svc.Send(ctx, "s", "t", `<b>Hi</b><script>alert(1)</script>`); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	inbox, _ := svc.Inbox(ctx, "t")
	if inbox[0].Content != "Hi" {
		t.Errorf("Content = %q, want %q", inbox[0].Content, "Hi")
	}

	_, err := svc.Send(ctx, "s", "t", "<script>alert(1)</script>")
	if !model.IsCode(err, model.ErrCodeValidationFailed) {
		t.Errorf("expected VALIDATION_FAILED for empty content, got %v", err)
	}
}

// TestService_MarkRead は受信者のみが既読にできることを検証する。
func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryMessageRepo(), &mockSanitizer{})
	id, _ := svc.Send(ctx, "student1", "teacher1", "hello")

	if err := svc.MarkRead(ctx, "student1", id); !model.IsCode(err, model.ErrCodeForbidden) {
		t.Errorf("sender: expected FORBIDDEN, got %v", err)
	}
	if err := svc.MarkRead(ctx, "teacher1", id); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	inbox, _ := svc.Inbox(ctx, "teacher1")
	if !inbox[0].Read {
		t.Error("message should be read")
	}

	if err := svc.MarkRead(ctx, "teacher1", "missing"); !model.IsCode(err, model.ErrCodeMessageNotFound) {
		t.Errorf("expected MESSAGE_NOT_FOUND, got %v", err)
	}
}

func TestService_Send_RepoError(t *testing.T) {
	repoErr := errors.New("boom")
	svc := NewService(&mockMessageRepo{
		createFn: func(ctx context.Context, m *model.Message) error { return repoErr },
	}, &mockSanitizer{})

	if _, err := svc.Send(context.Background(), "s", "t", "hi"); !errors.Is(err, repoErr) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
}
