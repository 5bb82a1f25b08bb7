package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsAuditLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	ev := PerformanceEvent{
		Type:          TypePerformanceReconfirmRequested,
		PerformanceID: "p1",
		EventID:       "e1",
		ActID:         "a1",
		Status:        "pending_reconfirm",
		Reason:        "EVENT_DATE_CHANGED",
		ActorID:       "org",
		OccurredAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(dir, body))
	ev.Type, ev.Reason = TypePerformanceReconfirmed, ""
	body, _ = json.Marshal(ev)
	require.NoError(t, handleMessage(dir, body))

	raw, err := os.ReadFile(filepath.Join(dir, AuditLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"[2024-05-01T12:00:00Z] performance.reconfirm_requested | performance_id=p1 | event_id=e1 | act_id=a1 | status=pending_reconfirm | reason=EVENT_DATE_CHANGED | actor=org",
		lines[0])
	assert.Contains(t, lines[1], "reason=-")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage(dir, []byte("{not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"type":""}`)))
	_, err := os.Stat(filepath.Join(dir, AuditLogFile))
	assert.True(t, os.IsNotExist(err))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), PerformanceEvent{}))
}
