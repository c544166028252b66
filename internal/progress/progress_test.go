package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "elexon.download.abc.progress", Subject("elexon", "abc"))
	assert.Equal(t, "elexon.download.*.progress", WildcardSubject("elexon"))
}

func TestMulti(t *testing.T) {
	var a, b []Event
	m := Multi{
		Func(func(e Event) { a = append(a, e) }),
		Func(func(e Event) { b = append(b, e) }),
		Noop{},
		NewLogReporter(),
	}

	m.Report(Event{DownloadID: "x", Chunk: 1, Total: 2, Status: StatusRunning})
	m.Close()

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Equal(t, StatusRunning, b[0].Status)
}

func TestNewNATSReporter_Unreachable(t *testing.T) {
	r := NewNATSReporter("nats://127.0.0.1:1", "elexon")
	_, ok := r.(*LogReporter)
	assert.True(t, ok)
	r.Report(Event{DownloadID: "x"})
	r.Close()
}
