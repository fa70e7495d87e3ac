// Package frontend renders the one-page demo shown next to a restored agent.
//
// The page is rendered once, when the Frontend is built, and served from
// memory afterwards.
package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"

	"cxkit/pkg/logging"
)

// Metadata describes the deployment the page reports on.
type Metadata struct {
	ProjectID        string
	Location         string
	AgentName        string
	AgentDisplayName string
	ConsoleURL       string
	WebhookURI       string
	StartedAt        time.Time
	Environment      map[string]string
}

// deploymentVars are the environment variables worth showing. Cloud Run sets
// the K_ ones.
var deploymentVars = []string{
	"GOOGLE_CLOUD_PROJECT",
	"K_CONFIGURATION",
	"K_REVISION",
	"K_SERVICE",
	"PORT",
	"PROJECT_ID",
}

// DeploymentEnv picks the deployment variables out of environ, which has the
// form returned by os.Environ.
func DeploymentEnv(environ []string) map[string]string {
	env := map[string]string{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		idx := sort.SearchStrings(deploymentVars, key)
		if idx < len(deploymentVars) && deploymentVars[idx] == key {
			env[key] = value
		}
	}
	return env
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>{{ .AgentDisplayName | default "Dialogflow CX sample" }}</title></head>
<body>
<h1>{{ .AgentDisplayName | default "Dialogflow CX sample" }}</h1>
<table>
<tr><th>Project</th><td>{{ .ProjectID | default "unknown" }}</td></tr>
<tr><th>Location</th><td>{{ .Location | default "global" }}</td></tr>
{{- if .AgentName }}
<tr><th>Agent</th><td>{{ .AgentName }}</td></tr>
{{- end }}
{{- if .WebhookURI }}
<tr><th>Webhook</th><td>{{ .WebhookURI }}</td></tr>
{{- end }}
<tr><th>Started</th><td>{{ dateInZone "2006-01-02 15:04:05 MST" .StartedAt "UTC" }}</td></tr>
</table>
{{- if .ConsoleURL }}
<p><a href="{{ .ConsoleURL }}">Open the agent in the Dialogflow console</a></p>
{{- end }}
{{- if .Environment }}
<h2>Environment</h2>
<ul>
{{- range $key, $value := .Environment }}
<li>{{ $key }}={{ $value | quote }}</li>
{{- end }}
</ul>
{{- end }}
</body>
</html>
`

// Frontend serves the pre-rendered page.
type Frontend struct {
	body []byte

	// OnView, when set, is called for every page served.
	OnView func()
}

// New renders the page for meta.
func New(meta Metadata) (*Frontend, error) {
	tmpl, err := template.New("index").Funcs(sprig.FuncMap()).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, meta); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	logging.Debug("Serve", "Rendered front end for %q (%d bytes)", meta.AgentDisplayName, buf.Len())
	return &Frontend{body: buf.Bytes()}, nil
}

func (f *Frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.OnView != nil {
		f.OnView()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(f.body); err != nil {
		logging.Error("Serve", err, "Failed to write front end")
	}
}
