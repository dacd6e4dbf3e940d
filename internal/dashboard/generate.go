// Grafana dashboard generation for the snapshot table in GreptimeDB.
package dashboard

import (
	"embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"ddosim/internal/model"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Render writes the rendered Grafana dashboards to outDir. The datasource
// uid comes from GRAFANA_DATASOURCE_UID and defaults to "greptimedb".
func Render(outDir string) error {
	data := struct {
		Table         string
		DatasourceUID string
	}{
		Table:         model.MetricsTableName,
		DatasourceUID: datasourceUID(),
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	entries, err := templates.ReadDir("templates")
	if err != nil {
		return err
	}
	for _, e := range entries {
		t, err := template.ParseFS(templates, "templates/"+e.Name())
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(e.Name(), ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func datasourceUID() string {
	if v := os.Getenv("GRAFANA_DATASOURCE_UID"); v != "" {
		return v
	}
	return "greptimedb"
}
