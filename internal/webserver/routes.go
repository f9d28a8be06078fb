package webserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/toolgauge/toolgauge/internal/store"
	"github.com/toolgauge/toolgauge/internal/webapi"
)

// registerRoutes sets up API and dashboard routes on the given mux. It opens
// the session database and returns the handle so the server can close it.
func registerRoutes(mux *http.ServeMux, cfg Config) (*store.Store, error) {
	sessions, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	runs := webapi.NewFileStore(cfg.ResultsDir)
	webapi.RegisterRoutes(mux, runs, sessions)

	// Unregistered API paths get a JSON 404 instead of the dashboard page.
	mux.HandleFunc("/api/", handleAPINotFound)

	mux.HandleFunc("/", handleIndex)
	return sessions, nil
}

// handleAPINotFound returns 404 for unknown API endpoints.
func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "unknown API endpoint"}) //nolint:errcheck
}

// handleIndex serves the dashboard page. Unknown paths fall back to it so
// bookmarked fragment routes keep working.
func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML) //nolint:errcheck
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>toolgauge</title>
<style>
  body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 2rem auto; max-width: 64rem; padding: 0 1rem; color: #1a1a1a; }
  h1 { font-size: 1.4rem; }
  h2 { font-size: 1.1rem; margin-top: 2rem; }
  table { border-collapse: collapse; width: 100%; font-size: 0.9rem; }
  th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; }
  .kpis { display: flex; gap: 1.5rem; flex-wrap: wrap; }
  .kpi { border: 1px solid #ddd; border-radius: 6px; padding: 0.8rem 1.2rem; min-width: 8rem; }
  .kpi b { display: block; font-size: 1.3rem; }
  button { padding: 0.3rem 0.8rem; cursor: pointer; }
  .muted { color: #777; }
</style>
</head>
<body>
<h1>toolgauge <span class="muted">dashboard</span></h1>
<div class="kpis" id="kpis"></div>
<h2>Capability runs <button id="reload">Reload</button></h2>
<table><thead><tr><th>Run</th><th>When</th><th>Tested</th><th>Recommended</th><th>Top score</th></tr></thead>
<tbody id="runs"></tbody></table>
<h2>Planning sessions</h2>
<table><thead><tr><th>Title</th><th>Status</th><th>Created</th></tr></thead>
<tbody id="sessions"></tbody></table>
<script>
async function fetchJSON(url, opts) {
  const res = await fetch(url, opts);
  if (!res.ok) throw new Error(url + ": " + res.status);
  return res.json();
}
function cell(text) { const td = document.createElement("td"); td.textContent = text; return td; }
function row(cells) { const tr = document.createElement("tr"); cells.forEach(c => tr.appendChild(cell(c))); return tr; }
async function refresh() {
  const [summary, runs, sessions] = await Promise.all([
    fetchJSON("/api/summary"), fetchJSON("/api/runs"), fetchJSON("/api/sessions"),
  ]);
  const kpis = document.getElementById("kpis");
  kpis.replaceChildren();
  for (const [label, value] of [
    ["Runs", summary.totalRuns],
    ["Models tested", summary.totalModels],
    ["Recommended", summary.recommendedRate.toFixed(0) + "%"],
    ["Avg score", summary.avgScore.toFixed(1)],
  ]) {
    const div = document.createElement("div");
    div.className = "kpi";
    const b = document.createElement("b");
    b.textContent = value;
    div.append(b, label);
    kpis.appendChild(div);
  }
  const runsBody = document.getElementById("runs");
  runsBody.replaceChildren(...runs.map(r => row([
    r.id, new Date(r.timestamp).toLocaleString(), r.testedModels, r.recommended, r.topScore.toFixed(1),
  ])));
  const sessionsBody = document.getElementById("sessions");
  sessionsBody.replaceChildren(...sessions.map(s => row([
    s.title, s.status, new Date(s.createdAt).toLocaleString(),
  ])));
}
document.getElementById("reload").addEventListener("click", async () => {
  await fetchJSON("/api/reload", { method: "POST" });
  await refresh();
});
refresh().catch(err => console.error(err));
</script>
</body>
</html>
`
