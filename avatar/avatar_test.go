package avatar

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUpload(t *testing.T) {
	var gotMethod, gotPath, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotType, gotBody = r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(data)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := New(context.Background(), Options{
		Bucket:          "avatars",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	url, err := s.Upload(context.Background(), "u1.png", strings.NewReader("png bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/avatars/u1.png" {
		t.Errorf("request = %s %s, want PUT /avatars/u1.png", gotMethod, gotPath)
	}
	if gotType != "image/png" {
		t.Errorf("content type = %q, want image/png", gotType)
	}
	if gotBody != "png bytes" {
		t.Errorf("body = %q, want png bytes", gotBody)
	}
	if want := srv.URL + "/avatars/u1.png"; url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
}

func TestUploadRejects(t *testing.T) {
	s, err := New(context.Background(), Options{Bucket: "b", Region: "eu-west-1", AccessKeyID: "k", SecretAccessKey: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upload(context.Background(), "u1.png", strings.NewReader(""), "image/png"); err == nil {
		t.Error("Upload(empty) succeeded")
	}
	big := strings.NewReader(strings.Repeat("x", MaxSize+1))
	if _, err := s.Upload(context.Background(), "u1.png", big, "image/png"); err == nil {
		t.Error("Upload(too large) succeeded")
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/u1.png"},
		{Options{Bucket: "b", Endpoint: "http://minio:9000/"}, "http://minio:9000/b/u1.png"},
		{Options{Bucket: "b", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com/avatars/"}, "https://cdn.example.com/avatars/u1.png"},
	}
	for _, tt := range tests {
		s := &Storage{opts: tt.opts}
		if got := s.PublicURL("u1.png"); got != tt.want {
			t.Errorf("PublicURL() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Region: "us-east-1"}); err == nil {
		t.Error("New() without bucket succeeded")
	}
}
