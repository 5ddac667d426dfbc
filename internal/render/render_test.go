package render

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

func TestRenderPostsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, `\documentclass{article}`, r.FormValue("latex"))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "student-passport-photo.jpg", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("jpeg"), data)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, time.Second).Render(context.Background(), `\documentclass{article}`, []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), out)
}

func TestRenderReportsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pdflatex failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Render(context.Background(), "x", nil)
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusInternalServerError, remote.Status)
	assert.Equal(t, "API request failed with status 500: pdflatex failed", err.Error())
}

func TestRenderHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second).Render(ctx, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLaTeXEscapesValues(t *testing.T) {
	rec := student.Record{Name: "Asha & Co", RollNo: "21_CS#1", Allergies: "50% dust"}
	out, err := LaTeX(rec)
	require.NoError(t, err)
	assert.Contains(t, out, `Asha \& Co (21\_CS\#1)`)
	assert.Contains(t, out, `50\% dust`)
	assert.Contains(t, out, `\includegraphics[width=3.5cm,height=4.5cm,keepaspectratio]{student-passport-photo.jpg}`)
	assert.True(t, strings.HasSuffix(out, "\\end{document}\n"))
	for _, f := range student.Fields() {
		assert.Contains(t, out, Escape(f.Label()))
	}
}
