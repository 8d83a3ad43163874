package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
	"golang.org/x/tools/imports"
)

const hostTemplate = `// Code generated by componentc from {{.Source}}. DO NOT EDIT.

package {{.Package}}

// {{.Schema.GoName}} is the host-side layout of the {{.Schema.Name}} component.
type {{.Schema.GoName}} struct {
{{- range .Schema.Fields}}
	{{.GoName}} {{.GoType}} ` + "`compute:\"{{.Name}}\"`" + `
{{- end}}
}
`

const deviceTemplate = `-- generated component layout for device code
{{.Name}} = {
{{- range .Fields}}
  {{.Name}} = "{{.Kind}}",
{{- end}}
}

function new_{{.Name}}({{fieldList .Fields}})
  return {
{{- range .Fields}}
    {{.Name}} = {{.Name}} or {{zero .Kind}},
{{- end}}
  }
end
`

var (
	hostTmpl   = template.Must(template.New("host").Parse(hostTemplate))
	deviceTmpl = template.Must(template.New("device").Funcs(template.FuncMap{
		"fieldList": func(fields []Field) string {
			names := make([]string, len(fields))
			for i, f := range fields {
				names[i] = f.Name
			}
			return strings.Join(names, ", ")
		},
		"zero": func(k driver.Kind) string {
			if k == driver.Bool {
				return "false"
			}
			return "0"
		},
	}).Parse(deviceTemplate))
)

// HostSource renders the Go struct for s. source names the schema file in
// the generated header.
func HostSource(pkg, source string, s *Schema) ([]byte, error) {
	var buf bytes.Buffer
	err := hostTmpl.Execute(&buf, struct {
		Package string
		Source  string
		Schema  *Schema
	}{pkg, source, s})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Name, err)
	}
	return formatGo(s.Name+".go", buf.Bytes())
}

// DeviceSource renders the Lua layout table and constructor for s.
func DeviceSource(s *Schema) ([]byte, error) {
	var buf bytes.Buffer
	if err := deviceTmpl.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("render %s: %w", s.Name, err)
	}
	return buf.Bytes(), nil
}

func formatGo(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return out, nil
}

func isSchemaFile(name string) bool {
	switch filepath.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// listFiles returns the regular files of dir accepted by keep, sorted by
// name.
func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && keep(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// GenerateComponents writes <name>.go into hostDir and <name>.lua into
// deviceDir for every schema file in inDir. A bad schema does not stop the
// others; all failures are returned together.
func GenerateComponents(inDir, hostDir, deviceDir, pkg string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	files, err := listFiles(inDir, isSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	for _, dir := range []string{hostDir, deviceDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	var (
		generated []string
		errs      []error
	)
	for _, path := range files {
		name, err := generateComponent(path, hostDir, deviceDir, pkg)
		if err != nil {
			log.Error("component generation failed", zap.String("schema", path), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("generated component", zap.String("name", name), zap.String("schema", path))
		generated = append(generated, name)
	}
	return generated, errors.Join(errs...)
}

func generateComponent(path, hostDir, deviceDir, pkg string) (string, error) {
	s, err := LoadSchema(path)
	if err != nil {
		return "", err
	}
	host, err := HostSource(pkg, filepath.Base(path), s)
	if err != nil {
		return "", err
	}
	device, err := DeviceSource(s)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(hostDir, s.Name+".go"), host, 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(deviceDir, s.Name+".lua"), device, 0o644); err != nil {
		return "", err
	}
	return s.Name, nil
}
