package handler

import (
	"html/template"
	"net/http"
)

// The login page is a thin shell: it echoes state and client_id as
// hidden fields and posts the credentials as JSON, exactly what the
// grant flow needs and nothing more. Real deployments replace it with
// their own frontend.
var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Sign in</title>
</head>
<body>
  <h1>Sign in</h1>
  <form id="loginForm">
    <input type="hidden" name="state" value="{{.State}}">
    <input type="hidden" name="client_id" value="{{.ClientID}}">
    <label>Email <input type="email" name="email" required></label>
    <label>Password <input type="password" name="password" required></label>
    <button type="submit">Sign in</button>
    <p id="error" hidden></p>
  </form>
  <script>
    document.getElementById('loginForm').addEventListener('submit', async (e) => {
      e.preventDefault();
      const data = Object.fromEntries(new FormData(e.target));
      const response = await fetch('/oauth/login', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify(data),
        redirect: 'follow'
      });
      if (response.redirected) {
        window.location = response.url;
        return;
      }
      if (!response.ok) {
        const err = await response.json();
        const el = document.getElementById('error');
        el.textContent = err.error_description || 'Login failed';
        el.hidden = false;
      }
    });
  </script>
</body>
</html>
`))

type loginPageData struct {
	State    string
	ClientID string
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{
		State:    r.URL.Query().Get("state"),
		ClientID: r.URL.Query().Get("client_id"),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := loginTemplate.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "render login page", "error", err.Error())
	}
}
