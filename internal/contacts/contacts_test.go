package contacts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupsHTML = `
<html><body>
<div role="group" aria-label="Chess Club">
  <h3>Chess Club</h3>
  <p>We play on Fridays. <a href="/about">About</a></p>
  <p>Contact: <a href="/u/1">Alice Smith</a>, <a href="/u/2"> Bob Jones </a></p>
</div>
<div role="group" aria-label=" Robotics ">
  <div class="inner">
    <p><strong>Contact:</strong> <a href="mailto:officers@x">Email group officers</a></p>
  </div>
</div>
<p>Contact: <a href="/u/3">Carol</a></p>
</body></html>`

func TestExtract(t *testing.T) {
	got, err := Extract(strings.NewReader(groupsHTML))
	require.NoError(t, err)

	want := []Contact{
		{Name: "Alice Smith", Club: "Chess Club"},
		{Name: "Bob Jones", Club: "Chess Club"},
		{Name: "Email group officers", Club: "Robotics"},
		{Name: "Carol", Club: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVRoundTripSkipsHeader(t *testing.T) {
	var buf bytes.Buffer
	in := []Contact{{Name: "Alice Smith", Club: "Chess Club"}, {Name: "Carol"}}
	require.NoError(t, WriteCSV(&buf, in))
	assert.True(t, strings.HasPrefix(buf.String(), "name,club\n"))

	out, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadCSVWithoutHeader(t *testing.T) {
	out, err := ReadCSV(strings.NewReader("Dana,Choir\nEli\n"))
	require.NoError(t, err)
	assert.Equal(t, []Contact{{Name: "Dana", Club: "Choir"}, {Name: "Eli"}}, out)
}

func TestJoinNames(t *testing.T) {
	got := JoinNames([]Contact{
		{Name: "Alice Smith"},
		{Name: OfficersPlaceholder},
		{Name: "Bob Jones"},
	})
	assert.Equal(t, "Alice Smith, Bob Jones", got)
}

func TestRenderEmails(t *testing.T) {
	tmpl, err := ParseTemplate("")
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := RenderEmails(&buf, tmpl, []Contact{
		{Name: "Alice Smith", Club: "Chess Club"},
		{Name: OfficersPlaceholder, Club: "Robotics"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "Hi Chess Club team,")
	assert.NotContains(t, buf.String(), "Robotics")
	assert.True(t, strings.HasSuffix(buf.String(), EmailSeparator))
}
