package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeFetcher struct {
	// data maps attachment id to payload; fail lists ids whose download
	// errors out.
	data map[int][]byte
	fail map[int]bool

	contentType string
	calls       []int
}

func (f *fakeFetcher) FetchBytes(_ context.Context, attachmentID int) ([]byte, string, error) {
	f.calls = append(f.calls, attachmentID)
	if f.fail[attachmentID] {
		return nil, "", errors.New("boom")
	}
	data, ok := f.data[attachmentID]
	if !ok {
		return nil, "", fmt.Errorf("no attachment %d", attachmentID)
	}
	ct := f.contentType
	if ct == "" {
		ct = "image/png"
	}
	return data, ct, nil
}

func TestRehomeRewritesAttachmentImages(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{data: map[int][]byte{
		46: []byte("first"),
		47: []byte("second"),
	}}
	r := NewImageRehomer(fetcher, NewWriter(root, nil), nil)

	html := `<p>before</p>` +
		`<img src="/api/v1/attachments/46">` +
		`<img src="https://support.example.com/api/v1/attachments/47" alt="rig">` +
		`<img src="https://elsewhere.example.com/logo.png">`

	rewritten, downloaded, warnings, err := r.Rehome(context.Background(), "ballistics", html, 2)
	if err != nil {
		t.Fatalf("Rehome: %v", err)
	}
	if downloaded != 2 {
		t.Fatalf("downloaded = %d, want 2", downloaded)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}

	for _, want := range []string{
		`src="../../images/ballistics-1.png"`,
		`src="../../images/ballistics-2.png"`,
		`src="https://elsewhere.example.com/logo.png"`,
	} {
		if !strings.Contains(rewritten, want) {
			t.Fatalf("rewritten html missing %s:\n%s", want, rewritten)
		}
	}

	got, err := os.ReadFile(filepath.Join(root, "images", "ballistics-1.png"))
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("image bytes = %q, want %q", got, "first")
	}
}

func TestRehomeOrdinalsFollowDocumentOrder(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{data: map[int][]byte{
		9: []byte("a"),
		3: []byte("b"),
		7: []byte("c"),
	}}
	r := NewImageRehomer(fetcher, NewWriter(root, nil), nil)

	html := `<img src="/api/v1/attachments/9"><img src="/api/v1/attachments/3"><img src="/api/v1/attachments/7">`
	_, downloaded, _, err := r.Rehome(context.Background(), "rigging", html, 0)
	if err != nil {
		t.Fatalf("Rehome: %v", err)
	}
	if downloaded != 3 {
		t.Fatalf("downloaded = %d, want 3", downloaded)
	}

	want := []int{9, 3, 7}
	if len(fetcher.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", fetcher.calls, want)
	}
	for i, id := range want {
		if fetcher.calls[i] != id {
			t.Fatalf("call %d = %d, want %d", i, fetcher.calls[i], id)
		}
	}

	// Ordinal 2 belongs to attachment 3, the second image in the document.
	got, err := os.ReadFile(filepath.Join(root, "images", "rigging-2.png"))
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(got) != "b" {
		t.Fatalf("rigging-2.png = %q, want %q", got, "b")
	}
}

func TestRehomeFailedDownloadLeavesSrc(t *testing.T) {
	root := t.TempDir()
	fetcher := &fakeFetcher{
		data: map[int][]byte{52: []byte("ok")},
		fail: map[int]bool{51: true},
	}
	r := NewImageRehomer(fetcher, NewWriter(root, nil), nil)

	html := `<img src="/api/v1/attachments/51"><img src="/api/v1/attachments/52">`
	rewritten, downloaded, warnings, err := r.Rehome(context.Background(), "anchors", html, 1)
	if err != nil {
		t.Fatalf("Rehome: %v", err)
	}
	if downloaded != 1 {
		t.Fatalf("downloaded = %d, want 1", downloaded)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "attachment 51") {
		t.Fatalf("warnings = %v, want one naming attachment 51", warnings)
	}

	if !strings.Contains(rewritten, `src="/api/v1/attachments/51"`) {
		t.Fatalf("failed download should keep original src:\n%s", rewritten)
	}
	// The failed image still consumed ordinal 1.
	if !strings.Contains(rewritten, `src="../images/anchors-2.png"`) {
		t.Fatalf("surviving image should take ordinal 2:\n%s", rewritten)
	}
}

func TestRehomeNoAttachmentsIsPassthrough(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewImageRehomer(fetcher, NewWriter(t.TempDir(), nil), nil)

	html := `<p>plain <img src="https://elsewhere.example.com/x.png"> text</p>`
	rewritten, downloaded, warnings, err := r.Rehome(context.Background(), "plain", html, 0)
	if err != nil {
		t.Fatalf("Rehome: %v", err)
	}
	if rewritten != html {
		t.Fatalf("passthrough mutated html:\n%s", rewritten)
	}
	if downloaded != 0 || len(warnings) != 0 || len(fetcher.calls) != 0 {
		t.Fatalf("passthrough did work: downloaded=%d warnings=%v calls=%v", downloaded, warnings, fetcher.calls)
	}
}

func TestExtensionFor(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpg"},
		{"image/svg+xml", "svg"},
		{"image/png; charset=binary", "png"},
		{"image/x-weird$type", "bin"},
		{"", "bin"},
	}
	for _, tc := range cases {
		if got := extensionFor(tc.contentType); got != tc.want {
			t.Fatalf("extensionFor(%q) = %q, want %q", tc.contentType, got, tc.want)
		}
	}
}
