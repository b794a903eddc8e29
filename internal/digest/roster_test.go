package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		expected []*Person
	}{
		{
			name:    "bare handles",
			entries: []string{"alice", "bob"},
			expected: []*Person{
				{Handle: "alice", Display: "alice"},
				{Handle: "bob", Display: "bob"},
			},
		},
		{
			name:    "handle with display mapping",
			entries: []string{"alice:Алиса", "bob"},
			expected: []*Person{
				{Handle: "alice", Display: "Алиса"},
				{Handle: "bob", Display: "bob"},
			},
		},
		{
			name:    "blank and whitespace entries dropped",
			entries: []string{"", "  ", "alice", ":ghost"},
			expected: []*Person{
				{Handle: "alice", Display: "alice"},
			},
		},
		{
			name:    "empty display falls back to handle",
			entries: []string{"alice:"},
			expected: []*Person{
				{Handle: "alice", Display: "alice"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRoster(tt.entries))
		})
	}
}

func TestResolveRosterStatic(t *testing.T) {
	roster, err := ResolveRoster(context.Background(), &stubClient{}, []string{"alice", "bob:Bobby"}, "")
	require.NoError(t, err)

	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].Handle)
	assert.Equal(t, "Bobby", roster[1].Display)
}

func TestResolveRosterDirectory(t *testing.T) {
	gh := &stubClient{members: []string{"alice", "bob"}}

	roster, err := ResolveRoster(context.Background(), gh, nil, "acme")
	require.NoError(t, err)

	require.Len(t, roster, 2)
	assert.Equal(t, "alice", roster[0].Handle)
	assert.Equal(t, "alice", roster[0].Display)
}

func TestResolveRosterEmptyDirectoryFails(t *testing.T) {
	_, err := ResolveRoster(context.Background(), &stubClient{}, nil, "acme")
	assert.Error(t, err)
}

func TestResolveRosterUnusableStaticFails(t *testing.T) {
	_, err := ResolveRoster(context.Background(), &stubClient{}, []string{"  ", ""}, "acme")
	assert.Error(t, err)
}
