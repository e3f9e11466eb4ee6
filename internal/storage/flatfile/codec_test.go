package flatfile

import (
	"errors"
	"testing"
)

func TestDecodeLine(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "plain", line: "1,Burger,Juicy,150,10", want: []string{"1", "Burger", "Juicy", "150", "10"}},
		{name: "quoted comma", line: `1,Burger,"Beef, cheese",150,10`, want: []string{"1", "Burger", "Beef, cheese", "150", "10"}},
		{name: "bare quote kept", line: `2,Pizza,12" crust,500,20`, want: []string{"2", "Pizza", `12" crust`, "500", "20"}},
		{name: "empty fields", line: "3,,,0,0", want: []string{"3", "", "", "0", "0"}},
		{name: "blank", line: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeLine(tc.line)
			if tc.wantErr {
				if !errors.Is(err, errMalformed) {
					t.Fatalf("expected malformed error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d fields, got %d: %q", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("field %d: expected %q, got %q", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestEncodeLine_RoundTrip(t *testing.T) {
	fields := []string{"7", "Kebab", `Lamb, "spicy"`, "220", "15"}

	line, err := encodeLine(fields)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := decodeLine(line)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for i := range fields {
		if got[i] != fields[i] {
			t.Fatalf("field %d: expected %q, got %q", i, fields[i], got[i])
		}
	}
}

func TestNextSequence(t *testing.T) {
	cases := []struct {
		name   string
		stored int
		lines  int
		keys   []string
		want   int
	}{
		{name: "empty table", want: 1},
		{name: "legacy line count", lines: 3, keys: []string{"O1", "O2", "O3"}, want: 4},
		{name: "counter ahead after delete", stored: 5, lines: 2, keys: []string{"O1", "O4"}, want: 6},
		{name: "suffix ahead of counter", stored: 1, lines: 1, keys: []string{"O9"}, want: 10},
		{name: "foreign keys ignored", lines: 1, keys: []string{"X99", "Oabc"}, want: 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextSequence(tc.stored, tc.lines, tc.keys, "O"); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
