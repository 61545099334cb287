package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var (
	errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
	errNotFound  = &apiError{code: "NotFound", msg: "not found"}
)

// mockS3 is a thread-safe in-memory S3 backend for testing.
type mockS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	puts         int

	putErr  error
	headErr error
}

func newMockS3() *mockS3 {
	return &mockS3{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, errNoSuchKey
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if in.ContentLength == nil || *in.ContentLength != int64(len(data)) {
		return nil, errors.New("content length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	m.objects[*in.Key] = data
	if in.ContentType != nil {
		m.contentTypes[*in.Key] = *in.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[*in.Key]; !ok {
		return nil, errNotFound
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3WriteFile(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "exports")
	ctx := context.Background()

	err := WriteFile(ctx, store, "slideshow.zip", func(w io.Writer) error {
		_, err := io.WriteString(w, "zipdata")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := string(mock.objects["exports/slideshow.zip"]); got != "zipdata" {
		t.Fatalf("object = %q, want %q", got, "zipdata")
	}
	if ct := mock.contentTypes["exports/slideshow.zip"]; ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	if got := readAll(t, store, "slideshow.zip"); got != "zipdata" {
		t.Fatalf("Read = %q", got)
	}
}

func TestS3AbortSkipsUpload(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "")
	boom := errors.New("boom")

	err := WriteFile(context.Background(), store, "a.zip", func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if mock.puts != 0 {
		t.Fatalf("PutObject called %d times, want 0", mock.puts)
	}
}

func TestS3PutError(t *testing.T) {
	mock := newMockS3()
	mock.putErr = errors.New("access denied")
	store := NewS3(mock, "bucket", "")

	err := WriteFile(context.Background(), store, "a.zip", func(w io.Writer) error {
		_, err := io.WriteString(w, "x")
		return err
	})
	if !errors.Is(err, mock.putErr) {
		t.Fatalf("err = %v, want put error", err)
	}
}

func TestS3ReadNotExist(t *testing.T) {
	store := NewS3(newMockS3(), "bucket", "")
	_, err := store.Read(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestS3Exists(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "p")
	ctx := context.Background()

	if ok, err := store.Exists(ctx, "a"); err != nil || ok {
		t.Fatalf("Exists before write = %v, %v", ok, err)
	}
	mock.objects["p/a"] = []byte("x")
	if ok, err := store.Exists(ctx, "a"); err != nil || !ok {
		t.Fatalf("Exists after write = %v, %v", ok, err)
	}

	mock.headErr = &apiError{code: "AccessDenied", msg: "denied"}
	if _, err := store.Exists(ctx, "a"); err == nil {
		t.Fatal("expected error for AccessDenied")
	}
}

func TestS3DeleteAndLocation(t *testing.T) {
	mock := newMockS3()
	store := NewS3(mock, "bucket", "p")
	mock.objects["p/a"] = []byte("x")
	if err := store.Delete(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := mock.objects["p/a"]; ok {
		t.Fatal("object not deleted")
	}
	if got := store.Location("a"); got != "s3://bucket/p/a" {
		t.Fatalf("Location = %q", got)
	}
}

func TestNewS3FromEnvRequiresBucket(t *testing.T) {
	if _, err := NewS3FromEnv(context.Background(), "us-east-1", "", ""); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}
