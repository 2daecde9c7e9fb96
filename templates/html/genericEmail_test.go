package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNotificationEmail(t *testing.T) {
	out := RenderNotificationEmail("Jadwal <baru>", "line one\nline two", "https://ppk.example.ac.id/cases/1")

	assert.Contains(t, out, "Jadwal &lt;baru&gt;")
	assert.Contains(t, out, "line one<br>line two")
	assert.Contains(t, out, `href="https://ppk.example.ac.id/cases/1"`)
}

func TestRenderNotificationEmailWithoutLink(t *testing.T) {
	out := RenderNotificationEmail("Subject", "body", "")
	assert.NotContains(t, out, `class="action"`)
}
