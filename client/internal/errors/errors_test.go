package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPError_Kinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status      int
		kind        Kind
		recoverable bool
	}{
		{400, KindClient, false},
		{401, KindAuth, false},
		{403, KindClient, false},
		{404, KindClient, false},
		{408, KindClient, true},
		{429, KindClient, true},
		{500, KindServer, true},
		{503, KindServer, true},
		{302, KindServer, true},
	}
	for _, c := range cases {
		err := NewHTTPError(c.status, "", "op")
		if err.Kind != c.kind {
			t.Fatalf("status %d: kind = %s, want %s", c.status, err.Kind, c.kind)
		}
		if err.Recoverable() != c.recoverable {
			t.Fatalf("status %d: recoverable = %v", c.status, err.Recoverable())
		}
	}
}

func TestClassifyHTTPError_ServerMessage(t *testing.T) {
	t.Parallel()
	err := NewHTTPError(400, `{"status":400,"message":" Email already registered "}`, "signup")
	if err.Message != "Email already registered" {
		t.Fatalf("message = %q", err.Message)
	}
	if NewHTTPError(500, "<html>oops</html>", "x").Message != "" {
		t.Fatal("non-JSON body must not yield a message")
	}
	if NewHTTPError(500, "{bad", "x").Message != "" {
		t.Fatal("malformed JSON must not yield a message")
	}
}

func TestNetworkError(t *testing.T) {
	t.Parallel()
	err := NewNetworkError("list articles", context.Canceled)
	if err.Kind != KindNetwork || !err.Recoverable() {
		t.Fatalf("unexpected classification: %+v", err)
	}
	if !stderrors.Is(err, context.Canceled) {
		t.Fatal("network error must unwrap to its cause")
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("get article: %w", NewHTTPError(401, "", "get"))
	if !IsKind(wrapped, KindAuth) {
		t.Fatal("IsKind must see through wrapping")
	}
	if IsRecoverable(wrapped) {
		t.Fatal("auth failures are not recoverable")
	}
	if _, ok := As(stderrors.New("plain")); ok {
		t.Fatal("plain error is not classified")
	}
	if got := Kind(42).String(); got != "unknown(42)" {
		t.Fatalf("got %q", got)
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()
	err := NewHTTPError(404, `{"message":"Article not found"}`, "get article")
	want := "[client] HTTP 404: get article failed: HTTP 404: Article not found"
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
}
