package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "mentor.yaml"), "--store", "memory", "--log-level", "off"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeSection(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "section.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mentor version 0.1.0")
}

func TestValidateCommand(t *testing.T) {
	valid := writeSection(t, `id: basics
cases:
  - id: one
    question: Q1
    mentor_answer: A1
`)
	out, err := execute(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Section 'basics' is valid (1 cases).")

	broken := writeSection(t, `id: broken
cases:
  - id: one
    question: Q1
    mentor_answer: A1
    next: ghost
`)
	out, err = execute(t, "validate", broken)
	assert.Error(t, err)
	assert.Contains(t, out, "error:")
}

func TestGraphCommand(t *testing.T) {
	path := writeSection(t, `id: basics
cases:
  - id: one
    question: Q1
    mentor_answer: A1
`)
	out, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "one")
}

func TestSessionLsCommand(t *testing.T) {
	out, err := execute(t, "session", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored sessions found.")
}
