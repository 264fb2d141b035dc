package markup

import (
	"reflect"
	"testing"
)

func TestHarvest(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "text then attributes in declaration order",
			input: `<root><slide title="Intro" id="s1"> Hello </slide><note>World</note></root>`,
			want:  []string{"Hello", "Intro", "s1", "World"},
		},
		{
			name:  "depth first document order",
			input: `<a>one<b>two<c>three</c></b><d>four</d></a>`,
			want:  []string{"one", "two", "three", "four"},
		},
		{
			name:  "only text before the first child counts",
			input: `<a>lead<b>inner</b>tail</a>`,
			want:  []string{"lead", "inner"},
		},
		{
			name:  "blank text and attributes dropped",
			input: "<a x=\"  \">\n\t<b y=\"\"/>  </a>",
			want:  nil,
		},
		{
			name:  "namespace declarations are not attributes",
			input: `<key:presentation xmlns:key="http://example.com/key" xmlns="http://example.com/d" key:version="92008102">Deck</key:presentation>`,
			want:  []string{"Deck", "92008102"},
		},
		{
			name:  "cdata is text",
			input: `<a><![CDATA[ raw <text> ]]></a>`,
			want:  []string{"raw <text>"},
		},
		{
			name:  "html entities resolved",
			input: `<a>caf&eacute; bar &amp; baz</a>`,
			want:  []string{"café bar & baz"},
		},
		{
			name:  "comment ends direct text and contributes its content",
			input: `<a>before<!-- c -->after</a>`,
			want:  []string{"before", "c"},
		},
		{
			name:  "comment and processing instruction content",
			input: `<a><!-- note text --><?pi data?>x</a>`,
			want:  []string{"note text", "data"},
		},
		{
			name:  "comments outside the root are skipped",
			input: `<?xml version="1.0"?><!-- header --><a>body</a><!-- trailer -->`,
			want:  []string{"body"},
		},
		{
			name:  "attribute without value dropped",
			input: `<a b>t</a>`,
			want:  []string{"t"},
		},
		{
			name:  "attribute whose value equals its name kept",
			input: `<a b="b" k:c = "c">t</a>`,
			want:  []string{"t", "b", "c"},
		},
		{
			name:  "empty input",
			input: ``,
			want:  nil,
		},
		{
			name:  "not markup at all",
			input: "just some words without tags",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Harvest([]byte(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Harvest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHarvest_truncatedKeepsParsedLines(t *testing.T) {
	got := Harvest([]byte(`<root><p>first</p><p>second</p><p>thi`))
	want := []string{"first", "second", "thi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_resumesAfterMalformedFragment(t *testing.T) {
	got := Harvest([]byte(`<root><p>before</p><p =broken></p><p>after</p></root>`))
	if len(got) < 2 || got[0] != "before" || got[len(got)-1] != "after" {
		t.Errorf("Harvest() = %q, want before ... after", got)
	}
}

func TestHarvest_strayEndTagSkipped(t *testing.T) {
	got := Harvest([]byte(`</orphan><a>kept</a>`))
	want := []string{"kept"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_invalidUTF8Replaced(t *testing.T) {
	got := Harvest([]byte("<a>bad\xffbyte</a>"))
	want := []string{"bad�byte"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_controlCharactersDropped(t *testing.T) {
	got := Harvest([]byte("<a>be\x00\x01ll</a>"))
	want := []string{"bell"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_declaredLatin1(t *testing.T) {
	data := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><a>caf`), 0xE9, '<', '/', 'a', '>')
	got := Harvest(data)
	want := []string{"café"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_utf16WithBOM(t *testing.T) {
	src := `<a>hi</a>`
	data := []byte{0xFF, 0xFE}
	for _, r := range src {
		data = append(data, byte(r), 0)
	}
	got := Harvest(data)
	want := []string{"hi"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest() = %q, want %q", got, want)
	}
}

func TestHarvest_declaredCharsetMislabels(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "utf-16 label over ascii bytes",
			input: `<?xml version="1.0" encoding="UTF-16"?><a title="Deck">hello</a>`,
			want:  []string{"hello", "Deck"},
		},
		{
			name:  "latin-1 label over utf-8 bytes",
			input: `<?xml version="1.0" encoding="ISO-8859-1"?><a>café</a>`,
			want:  []string{"café"},
		},
		{
			name:  "utf-32 label over ascii bytes",
			input: `<?xml version='1.0' encoding='UTF-32'?><a>plain</a>`,
			want:  []string{"plain"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Harvest([]byte(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Harvest() = %q, want %q", got, tt.want)
			}
		})
	}
}
