package media

import "testing"

func TestIsVideoFilename(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"clip.mp4":         true,
		"CLIP.MKV":         true,
		"movie.final.webm": true,
		"notes.txt":        false,
		"mp4":              false,
		"":                 false,
		"archive.rmvb":     true,
	}
	for name, want := range cases {
		if got := IsVideoFilename(name); got != want {
			t.Fatalf("IsVideoFilename(%q): want %v got %v", name, want, got)
		}
	}
}

func TestResolveMime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		declared string
		filename string
		want     string
	}{
		{name: "declared video wins", declared: "video/webm", filename: "x.mp4", want: "video/webm"},
		{name: "declared with params", declared: "Video/MP4; codecs=avc1", filename: "", want: "video/mp4"},
		{name: "declared audio kept", declared: "audio/ogg", filename: "x.ogv", want: "audio/ogg"},
		{name: "octet stream falls to extension", declared: "application/octet-stream", filename: "x.mkv", want: "video/x-matroska"},
		{name: "no declared uses extension", declared: "", filename: "x.mov", want: "video/quicktime"},
		{name: "unknown extension default", declared: "", filename: "x.zzz", want: DefaultVideoMime},
		{name: "nothing known", declared: "application/pdf", filename: "", want: DefaultVideoMime},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveMime(tt.declared, tt.filename); got != tt.want {
				t.Fatalf("want %q got %q", tt.want, got)
			}
		})
	}
}
