package documents

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractTextFallsBackToBody(t *testing.T) {
	// Too short for readability to call it an article
	body := []byte(`<html><body><header>Site</header><p>Short ruling.</p><script>x()</script></body></html>`)

	text, err := ExtractText("text/html", body, "https://www.courtlistener.com/opinion/1/a/")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "Short ruling.") {
		t.Errorf("text = %q", text)
	}
	if strings.Contains(text, "x()") {
		t.Errorf("text contains script: %q", text)
	}
}

func TestExtractTextXML(t *testing.T) {
	text, err := ExtractText("application/xml; charset=utf-8", []byte("<opinion>\n  Affirmed.\n</opinion>"), "")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "Affirmed.") {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextInvalidPDF(t *testing.T) {
	if _, err := ExtractText("application/pdf", []byte("not a pdf"), ""); err == nil {
		t.Fatal("want error for invalid PDF")
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("application/octet-stream", []byte{0, 1, 2}, "")
	if !errors.Is(err, ErrUnsupportedContent) {
		t.Fatalf("err = %v, want ErrUnsupportedContent", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a  b\t c", "a b c"},
		{"\n\n a \n\n\n b \n\n", "a\n\nb"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
