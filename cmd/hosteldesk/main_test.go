package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentsListOnMemoryStore(t *testing.T) {
	t.Setenv("HOSTELDESK_STORE", "memory")
	t.Setenv("HOSTELDESK_JWT_SECRET", "secret")
	t.Setenv("S3_ENDPOINT", "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"students", "list", "--search", "asha"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ROLL NO")
	assert.Contains(t, out.String(), "0 student(s)")
}

func TestStaffAddRequiresPassword(t *testing.T) {
	t.Setenv("HOSTELDESK_STAFF_PASSWORD", "")
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"staff", "add", "warden@hostel.test"})
	assert.Error(t, cmd.Execute())
}

func TestStudentsListRejectsUnknownKey(t *testing.T) {
	t.Setenv("HOSTELDESK_STORE", "memory")
	t.Setenv("HOSTELDESK_JWT_SECRET", "secret")
	t.Setenv("S3_ENDPOINT", "")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"students", "list", "--key", "shoeSize"})
	assert.Error(t, cmd.Execute())
}
