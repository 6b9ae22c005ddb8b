package templates

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SetupParsesAllPages(t *testing.T) {
	require.NoError(t, Setup())

	for _, name := range []string{"home", "about", "contact", "login", "register", "secrets", "submit"} {
		require.NotNil(t, All.Lookup(name), "template %q missing", name)
	}
}

func Test_RenderEscapesSecrets(t *testing.T) {
	require.NoError(t, Setup())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	Render(w, r, "secrets", struct{ Secrets []string }{Secrets: []string{"<script>alert(1)</script>"}})

	body := w.Body.String()
	require.Contains(t, body, "&lt;script&gt;")
	require.NotContains(t, body, "<script>alert")
}
