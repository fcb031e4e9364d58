package fixture

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spectolabs/specto/pkg/models"
)

// This package hosts a minimal single-page application honouring the DOM
// contract the verification scenario drives: a /login route with a password
// input, a remember checkbox and a submit control, and a /sessions route that
// fetches the sessions listing and renders each prompt. Its backend endpoints
// return fixture-flavoured payloads, so a run whose stubs were installed
// correctly renders different content than one that fell through to this
// backend. Development and self-test scaffolding only.

const loginPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Sign in</title>
</head>
<body>
    <h1>Sign in</h1>
    <form id="login-form">
        <input type="password" id="api-key" placeholder="API key" />
        <label><input type="checkbox" id="remember" /> Remember this device</label>
        <button type="submit">Sign in</button>
    </form>
    <script>
        var blocked = %s;
        document.getElementById('login-form').addEventListener('submit', function(ev) {
            ev.preventDefault();
            if (blocked) {
                console.log('submit blocked by form validation');
                return;
            }
            fetch('/v1alpha/sources')
                .then(function(resp) { return resp.json(); })
                .then(function() { window.location.href = '/sessions'; })
                .catch(function(err) { console.error('sources fetch failed: ' + err); });
        });
    </script>
</body>
</html>`

const sessionsPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Sessions</title>
</head>
<body>
    <h1>Sessions</h1>
    <ul id="session-list"></ul>
    <script>
        fetch('/v1alpha/sessions')
            .then(function(resp) { return resp.json(); })
            .then(function(data) {
                var list = document.getElementById('session-list');
                (data.sessions || []).forEach(function(s) {
                    var item = document.createElement('li');
                    item.textContent = s.prompt + ' [' + s.state + ']';
                    list.appendChild(item);
                });
            })
            .catch(function(err) { console.error('sessions fetch failed: ' + err); });
    </script>
</body>
</html>`

// Handler returns the fixture application's routes, usable directly with
// httptest in package tests
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/sessions", handleSessions)
	mux.HandleFunc("/v1alpha/sources", handleSourcesAPI)
	mux.HandleFunc("/v1alpha/sessions", handleSessionsAPI)
	mux.HandleFunc("/status", handleStatus)
	return mux
}

// Start runs the fixture application on the given port
func Start(port int) *http.Server {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: Handler(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Fixture server error: %v\n", err)
		}
	}()

	return server
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleLogin serves the login page. The ?block=1 variant renders a form whose
// validation rejects every submit, which is how the navigation-timeout path is
// exercised end to end.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	blocked := "false"
	if r.URL.Query().Get("block") == "1" {
		blocked = "true"
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, loginPageHTML, blocked)
}

func handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(sessionsPageHTML))
}

// handleSourcesAPI is the fixture's own sources backend. A correctly stubbed
// run never sees this payload.
func handleSourcesAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, models.SourceList{
		Sources: []models.Source{
			{
				Name: "projects/fixture/sources/local",
				GitHubRepo: models.GitHubRepo{
					Owner:    "fixture",
					Repo:     "fixture-app",
					Branches: []string{"main"},
				},
			},
		},
	})
}

// handleSessionsAPI is the fixture's own sessions backend. Its prompt
// deliberately differs from any stub so displacement is observable.
func handleSessionsAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, models.SessionList{
		Sessions: []models.Session{
			{
				Name:       "projects/fixture/sessions/1",
				State:      models.SessionStateCompleted,
				Prompt:     "Fixture backend placeholder prompt",
				CreateTime: time.Now().UTC(),
			},
		},
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok","server":"fixture","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
