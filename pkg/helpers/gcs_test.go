package helpers

import (
	"context"
	"testing"
)

func TestGCSBucketObjectPath(t *testing.T) {
	b := &GCSBucket{Bucket: "foodgram-images"}
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{PublicURL("foodgram-images", "recipes/1/a.png"), "recipes/1/a.png", true},
		{"https://storage.googleapis.com/foodgram-images/", "", false},
		{"https://storage.googleapis.com/other/recipes/1/a.png", "", false},
		{"data:image/png;base64,cG5n", "", false},
	}
	for _, tt := range tests {
		got, ok := b.ObjectPath(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ObjectPath(%q) = %q, %v", tt.url, got, ok)
		}
	}
}

func TestGCSBucketRemoveIgnoresForeignURLs(t *testing.T) {
	// no client: a foreign URL must not reach the API
	b := &GCSBucket{Bucket: "foodgram-images"}
	if err := b.Remove(context.Background(), "data:image/png;base64,cG5n"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}
