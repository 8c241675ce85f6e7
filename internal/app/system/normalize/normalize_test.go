package normalize

import (
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Eiichiro Oda", "Eiichiro Oda"},
		{"  Eiichiro   Oda  ", "Eiichiro Oda"},
		{"", ""},
		{"   ", ""},
		{"JIM LEE", "JIM LEE"}, // case preserved
		{"\tMœbius\n", "Mœbius"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	got := Names([]string{"Goscinny", " Uderzo", "", "Goscinny", "goscinny"})
	want := []string{"Goscinny", "Uderzo", "goscinny"}

	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQuery_Truncates(t *testing.T) {
	long := strings.Repeat("é", maxQueryLen+20)
	got := Query(long)
	if n := len([]rune(got)); n != maxQueryLen {
		t.Errorf("Query() rune length = %d, want %d", n, maxQueryLen)
	}
}

func TestListName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"collection", "collection"},
		{"  Wishlist ", "wishlist"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ListName(tt.input); got != tt.want {
			t.Errorf("ListName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
