package pdfutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/pdf/pdftest"
)

func TestInspect(t *testing.T) {
	pages, err := Inspect(pdftest.Document(2))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestInspectRejectsNonPDF(t *testing.T) {
	_, err := Inspect([]byte("<html>Service Unavailable</html>"))
	assert.Error(t, err)

	_, err = Inspect([]byte("%PDF-1.4\ngarbage"))
	assert.Error(t, err)
}
