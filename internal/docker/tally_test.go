package docker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		line string
		want State
	}{
		{"running", StateRunning},
		{"exited", StateExited},
		{"created", StateOther},
		{"paused", StateOther},
		{"restarting", StateOther},
		{"dead", StateOther},
		{"Running", StateOther},
		{" running", StateOther},
		{"running ", StateOther},
		{"Up 3 hours", StateOther},
		{"", StateOther},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseState(tt.line))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "exited", StateExited.String())
	assert.Equal(t, "other", StateOther.String())
	assert.Equal(t, "other", State(42).String())
}

func TestTallyAdd(t *testing.T) {
	var tally Tally
	tally.Add(StateRunning)
	tally.Add(StateExited)
	tally.Add(StateOther)
	tally.Add(State(99))

	assert.Equal(t, Tally{Total: 4, Up: 1, Down: 1, Failed: 2}, tally)
	assert.NoError(t, tally.Validate())
}

func TestTallyValidate(t *testing.T) {
	assert.NoError(t, Tally{}.Validate())
	assert.NoError(t, Tally{Total: 10, Up: 5, Down: 3, Failed: 2}.Validate())

	err := Tally{Total: 9, Up: 5, Down: 3, Failed: 2}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total 9")

	assert.Error(t, Tally{Total: 0, Up: 1, Down: -1}.Validate())
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Tally
	}{
		{
			name:   "empty output",
			output: "",
			want:   Tally{},
		},
		{
			name:   "only newline",
			output: "\n",
			want:   Tally{},
		},
		{
			name:   "mixed states",
			output: "running\nrunning\nexited\ncreated\nrunning\n",
			want:   Tally{Total: 5, Up: 3, Down: 1, Failed: 1},
		},
		{
			name:   "no trailing newline",
			output: "running\nexited",
			want:   Tally{Total: 2, Up: 1, Down: 1},
		},
		{
			name:   "trailing blank lines add nothing",
			output: "running\n\n\n",
			want:   Tally{Total: 1, Up: 1},
		},
		{
			name:   "blank line in the middle is skipped",
			output: "running\n\nexited\n",
			want:   Tally{Total: 2, Up: 1, Down: 1},
		},
		{
			name:   "crlf line endings",
			output: "running\r\nexited\r\n",
			want:   Tally{Total: 2, Up: 1, Down: 1},
		},
		{
			name:   "malformed text counts as failed",
			output: "running\nrunning (healthy)\nEXITED\n\tpaused\n",
			want:   Tally{Total: 4, Up: 1, Failed: 3},
		},
		{
			name:   "ten containers",
			output: "running\nrunning\nrunning\nrunning\nrunning\nexited\nexited\nexited\ndead\nrestarting\n",
			want:   Tally{Total: 10, Up: 5, Down: 3, Failed: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce([]byte(tt.output))
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestReduce_TotalIsAlwaysTheSum(t *testing.T) {
	words := []string{"running", "exited", "created", "", "paused", "exited ", "x", "dead", "running"}

	// Every combination of up to three lines drawn from words.
	for _, a := range words {
		for _, b := range words {
			for _, c := range words {
				out := strings.Join([]string{a, b, c}, "\n")
				tally := Reduce([]byte(out))
				require.NoError(t, tally.Validate(), "output %q", out)

				nonEmpty := 0
				for _, w := range []string{a, b, c} {
					if w != "" {
						nonEmpty++
					}
				}
				require.Equal(t, nonEmpty, tally.Total, "output %q", out)
			}
		}
	}
}

func TestReduce_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	got := Reduce([]byte("running\n" + long + "\nexited\n"))
	assert.Equal(t, Tally{Total: 3, Up: 1, Down: 1, Failed: 1}, got)
}
