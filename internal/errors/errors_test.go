package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New("E101")
	if err.Code != "E101" {
		t.Errorf("Code: got %q", err.Code)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category: got %q, want config", err.Category)
	}
	if err.Message != "Invalid config file" {
		t.Errorf("Message: got %q", err.Message)
	}

	unknown := New("E999")
	if unknown.Message != "Unknown error" {
		t.Errorf("unknown code message: got %q", unknown.Message)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New("E100"), "E100: Config file not found"},
		{Newf(CategoryCLI, "bad width %d", -1), "bad width -1"},
		{New("E200").Wrap(fs.ErrNotExist), "E200: Page not found: file does not exist"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error(): got %q, want %q", got, tt.want)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	err := New("E200").Wrap(fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}

	outer := fmt.Errorf("loading: %w", err)
	var e *Error
	if !stderrors.As(outer, &e) || e.Code != "E200" {
		t.Error("errors.As should find the *Error")
	}
	if !HasCode(outer, "E200") || HasCode(outer, "E100") {
		t.Error("HasCode mismatch")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should be nil")
	}

	plain := stderrors.New("boom")
	wrapped := FromError(plain, "E300")
	if wrapped.Code != "E300" || wrapped.Wrapped != plain {
		t.Errorf("FromError: got %+v", wrapped)
	}

	existing := New("E101")
	if FromError(fmt.Errorf("ctx: %w", existing), "E300") != existing {
		t.Error("FromError should return an existing *Error unchanged")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E102").
		WithDetail("paramKey must not contain '&'").
		WithSuggestion(`Use "view"`).
		Wrap(stderrors.New("got \"a&b\""))
	out := err.Format()

	for _, want := range []string{"ERROR E102: Invalid switcher option", "paramKey must not contain", "Cause: got", `Hint: Use "view"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Format missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	var got map[string]string
	if err := json.Unmarshal([]byte(New("E201").WithSuggestion("use s3://").FormatJSON()), &got); err != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", err)
	}
	if got["code"] != "E201" || got["category"] != "page" || got["suggestion"] != "use s3://" {
		t.Errorf("FormatJSON: got %v", got)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("plain error: got %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, fmt.Errorf("wrapped: %w", New("E300")))
	if !strings.Contains(buf.String(), "ERROR E300: Server failed to start") {
		t.Errorf("structured error: got %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s incomplete: %+v", code, tmpl)
		}
	}
	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not be registered")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should give no lines")
	}
}
