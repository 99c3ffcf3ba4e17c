package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObjectGetter struct {
	input *s3.GetObjectInput
	err   error
}

func (f *fakeObjectGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("bytes")),
		ContentLength: aws.Int64(5),
		ContentType:   aws.String("video/webm"),
	}
	if in.Range != nil {
		out.ContentRange = aws.String("bytes 0-4/100")
	}
	return out, nil
}

func TestParseS3URL(t *testing.T) {
	t.Parallel()

	bucket, key, err := ParseS3URL("s3://media/videos/a b.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "media" || key != "videos/a b.mp4" {
		t.Fatalf("unexpected split: %s %s", bucket, key)
	}
	for _, bad := range []string{"s3://bucket", "s3:///key", "https://x/y"} {
		if _, _, err := ParseS3URL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestS3FetcherRange(t *testing.T) {
	t.Parallel()

	getter := &fakeObjectGetter{}
	f := newS3Fetcher(nil, getter)
	body, resp, err := f.Fetch(context.Background(), "s3://media/v.webm", &Range{Start: 0, End: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	if aws.ToString(getter.input.Range) != "bytes=0-4" {
		t.Fatalf("unexpected range: %v", aws.ToString(getter.input.Range))
	}
	if aws.ToString(getter.input.Bucket) != "media" || aws.ToString(getter.input.Key) != "v.webm" {
		t.Fatalf("unexpected object: %+v", getter.input)
	}
	if !resp.Ranged || resp.StatusCode != http.StatusPartialContent || resp.ContentLength != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestS3FetcherWithoutRange(t *testing.T) {
	t.Parallel()

	f := newS3Fetcher(nil, &fakeObjectGetter{})
	body, resp, err := f.Fetch(context.Background(), "s3://media/v.webm", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()
	if resp.Ranged || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestS3FetcherMissingKey(t *testing.T) {
	t.Parallel()

	f := newS3Fetcher(nil, &fakeObjectGetter{err: &types.NoSuchKey{}})
	_, _, err := f.Fetch(context.Background(), "s3://media/missing.mp4", nil)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}
}
