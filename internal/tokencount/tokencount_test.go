package tokencount

import (
	"testing"

	gateway "github.com/corvid-systems/llmgate/internal"
)

func TestEstimateMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		messages []gateway.Message
		wantMin  int
		wantMax  int
	}{
		{
			name:     "single short message",
			messages: []gateway.Message{{Role: "user", Content: "hello"}},
			wantMin:  4,
			wantMax:  20,
		},
		{
			name: "multiple messages",
			messages: []gateway.Message{
				{Role: "system", Content: "You are helpful."},
				{Role: "user", Content: "Explain quantum computing."},
			},
			wantMin: 15,
			wantMax: 40,
		},
		{
			name:     "empty messages",
			messages: nil,
			wantMin:  1,
			wantMax:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EstimateMessages(tt.messages)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("EstimateMessages() = %d, want [%d, %d]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestEstimateText(t *testing.T) {
	t.Parallel()

	got := EstimateText("Hello, world!")
	if got < 1 {
		t.Errorf("EstimateText() = %d, want >= 1", got)
	}
}

func TestEstimateTextEmpty(t *testing.T) {
	t.Parallel()

	got := EstimateText("")
	if got != 1 {
		t.Errorf("EstimateText('') = %d, want 1 (min)", got)
	}
}
