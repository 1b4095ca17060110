package output

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingCapturesEvents(t *testing.T) {
	rec := &Recording{}

	rec.Copied("a.txt")
	rec.Copied("b/c.txt")
	rec.BinarySkipped("blob.dat")
	rec.FileError("bad.txt", fmt.Errorf("boom"))
	rec.Info("Zipped files saved to %s", "/bak/versions/backup.zip")
	rec.Error("Error creating zip file: %v", fmt.Errorf("disk full"))

	assert.Equal(t, []string{"a.txt", "b/c.txt"}, rec.CopiedFiles)
	assert.Equal(t, []string{"blob.dat"}, rec.BinaryFiles)
	assert.Equal(t, []string{"bad.txt"}, rec.FailedFiles)
	assert.Equal(t, []string{"Zipped files saved to /bak/versions/backup.zip"}, rec.InfoMessages)
	assert.Equal(t, []string{"Error creating zip file: disk full"}, rec.Errors)
}

func TestDiscardIsSilent(t *testing.T) {
	// Discard must be safe to use anywhere a Reporter is required
	var r Reporter = Discard{}
	r.Copied("a.txt")
	r.BinarySkipped("b.dat")
	r.FileError("c.txt", fmt.Errorf("ignored"))
	r.Info("ignored %d", 1)
	r.Error("ignored %d", 2)
}
