package channel

import (
	"testing"

	"github.com/zulandar/switchboard/internal/models"
)

func textMsg(content string) *models.Message {
	return &models.Message{
		ID:        "m1",
		Sender:    "Captain",
		Recipient: "Agent-4",
		Content:   content,
		Type:      models.TypeText,
		Priority:  models.PriorityNormal,
		Status:    models.StatusPending,
	}
}

func TestChoose_LengthThreshold(t *testing.T) {
	tests := []struct {
		content   string
		threshold int
		want      Kind
	}{
		{"hi", 5, KindFile},
		{"hello world", 5, KindGUI},
		{"exact", 5, KindFile},
		{"", 5, KindFile},
		{"a longer coordination message", 100, KindFile},
	}
	for _, tt := range tests {
		if got := Choose(textMsg(tt.content), tt.threshold); got != tt.want {
			t.Errorf("Choose(%q, %d) = %q, want %q", tt.content, tt.threshold, got, tt.want)
		}
	}
}

func TestChoose_MetadataOverride(t *testing.T) {
	m := textMsg("hi")
	m.Metadata = map[string]string{models.MetaChannel: "gui"}
	if got := Choose(m, 5); got != KindGUI {
		t.Errorf("Choose with gui override = %q, want gui", got)
	}

	m = textMsg("a much longer message that would normally pick gui")
	m.Metadata = map[string]string{models.MetaChannel: "file"}
	if got := Choose(m, 5); got != KindFile {
		t.Errorf("Choose with file override = %q, want file", got)
	}
}
