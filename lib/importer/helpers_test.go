package importer

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hollow Knight", "hollow-knight"},
		{"NieR:Automata", "nier-automata"},
		{"The Witcher 3: Wild Hunt", "the-witcher-3-wild-hunt"},
		{"Ōkami", "okami"},
	}
	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		size string
		want string
	}{
		{
			name: "protocol-relative thumb upgraded to cover",
			raw:  "//images.example/t_thumb/co1rgi.jpg",
			size: sizeCoverBig,
			want: "https://images.example/t_cover_big/co1rgi.jpg",
		},
		{
			name: "thumb size keeps url",
			raw:  "https://images.example/t_thumb/sc1.jpg",
			size: sizeThumb,
			want: "https://images.example/t_thumb/sc1.jpg",
		},
		{
			name: "empty",
			raw:  "",
			size: sizeCoverBig,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imageURL(tt.raw, tt.size); got != tt.want {
				t.Errorf("imageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVideoURL(t *testing.T) {
	if got := videoURL("mhCHNHy_Pek"); got != "https://www.youtube.com/watch?v=mhCHNHy_Pek" {
		t.Errorf("videoURL() = %q", got)
	}
}
