package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	set := Set{"d": true, "plots": true, "migrate-legacy": false}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "value flag keeps the next argument",
			args: []string{"-d", "farm.db", "-x", "1"},
			want: []string{"-d", "farm.db"},
		},
		{
			name: "double dash and inline value",
			args: []string{"--d=farm.db", "--plots", "12"},
			want: []string{"--d=farm.db", "--plots", "12"},
		},
		{
			name: "bool flag leaves positionals alone",
			args: []string{"-migrate-legacy", "farm.db"},
			want: []string{"-migrate-legacy"},
		},
		{
			name: "bool flag with explicit value",
			args: []string{"-migrate-legacy=false"},
			want: []string{"-migrate-legacy=false"},
		},
		{
			name: "value flag followed by another flag",
			args: []string{"-d", "-plots", "3"},
			want: []string{"-d", "-plots", "3"},
		},
		{
			name: "value flag at end",
			args: []string{"-d"},
			want: []string{"-d"},
		},
		{
			name: "unknown flags and markers dropped",
			args: []string{"-", "--", "-unknown", "x", "positional"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pick(tt.args, set))
		})
	}
}

func TestLookup(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/etc/farm.json", Lookup([]string{"-c", "/etc/farm.json"}, "c", "config"))
	})

	t.Run("long inline", func(t *testing.T) {
		assert.Equal(t, "farm.json", Lookup([]string{"--config=farm.json", "-d", "x.db"}, "c", "config"))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, Lookup([]string{"-d", "farm.db", "-plots", "12"}, "c", "config"))
	})

	t.Run("missing value", func(t *testing.T) {
		assert.Empty(t, Lookup([]string{"-c"}, "c"))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "2.json", Lookup([]string{"-c", "1.json", "-config", "2.json"}, "c", "config"))
	})
}
