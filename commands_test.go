package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endlessInput never reaches EOF
type endlessInput struct{}

func (endlessInput) Read(p []byte) (int, error) {
	n := copy(p, "price of tomato\n")
	return n, nil
}

func drain(t *testing.T, lines <-chan string, timeout time.Duration) []string {
	t.Helper()
	var got []string
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return got
			}
			got = append(got, line)
		case <-deadline:
			t.Fatal("line reader did not stop")
			return got
		}
	}
}

func TestReadLinesUntilEOF(t *testing.T) {
	lines := readLines(context.Background(), strings.NewReader("hello\n/clear\n/exit\n"))

	assert.Equal(t, []string{"hello", "/clear", "/exit"}, drain(t, lines, time.Second))
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, endlessInput{})

	first, ok := <-lines
	require.True(t, ok)
	assert.Equal(t, "price of tomato", first)

	cancel()
	drain(t, lines, time.Second)
}

func TestAskCommandFlags(t *testing.T) {
	assert.NotNil(t, askCmd.Flags().Lookup("json"))
	assert.Nil(t, askCmd.Flags().Lookup("session"))
}
