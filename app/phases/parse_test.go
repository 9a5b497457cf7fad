package phases

import "testing"

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"fenced_no_lang", "```\n{\"a\":1}\n```", `{"a":1}`, false},
		{"prose_around", "Sure! Here it is:\n{\"a\":1}\nHope that helps.", `{"a":1}`, false},
		{"no_json", "I could not produce a result.", "", true},
		{"empty", "", "", true},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			got, err := extractJSON(cse.raw)
			if cse.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != cse.want {
				t.Fatalf("got %q want %q", got, cse.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"low": LevelLow, "Medium": LevelMedium, " HIGH ": LevelHigh} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("extreme"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
