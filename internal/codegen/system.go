package codegen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

// EcsImport is the import path generated systems refer to.
const EcsImport = "github.com/plus3/computecs/ecs"

var includeDirective = regexp.MustCompile(`^\s*--#include\s+"([^"]+)"\s*$`)

// ResolveIncludes replaces every include directive in source with the
// resolved content of the named file, looked up relative to base. Each
// distinct path is inlined at most once; visited records the paths already
// inlined and may be shared between calls.
func ResolveIncludes(source, base string, visited map[string]bool) (string, error) {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		match := includeDirective.FindStringSubmatch(line)
		if match == nil {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		path := filepath.Clean(filepath.Join(base, match[1]))
		if visited[path] {
			continue
		}
		visited[path] = true

		included, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("include %q: %w", match[1], err)
		}
		resolved, err := ResolveIncludes(string(included), base, visited)
		if err != nil {
			return "", err
		}
		out.WriteString(resolved)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return out.String(), nil
}

const systemTemplate = `// Code generated by systemc from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import "{{.Import}}"

// {{.GoName}} runs the {{.Entry}} kernel.
var {{.GoName}} = ecs.System{
	Name: {{quote .Entry}},
	Source: {{literal .Code}},
}
`

var systemTmpl = template.Must(template.New("system").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"literal": func(code string) string {
		if strings.Contains(code, "`") {
			return strconv.Quote(code)
		}
		return "`" + code + "`"
	},
}).Parse(systemTemplate))

// SystemSource renders a Go file declaring an ecs.System whose entry point
// is entry and whose source is code.
func SystemSource(pkg, source, entry, code string) ([]byte, error) {
	var buf bytes.Buffer
	err := systemTmpl.Execute(&buf, struct {
		Package, Source, Import, GoName, Entry, Code string
	}{pkg, source, EcsImport, exportedName(entry), entry, code})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", entry, err)
	}
	return formatGo(entry+".go", buf.Bytes())
}

// GenerateSystems writes <name>.go into outDir for every .lua kernel in
// inDir. Includes are resolved against includeBase and the entry point is
// the kernel file's base name.
func GenerateSystems(inDir, includeBase, outDir, pkg string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	files, err := listFiles(inDir, func(name string) bool {
		return filepath.Ext(name) == ".lua"
	})
	if err != nil {
		return nil, fmt.Errorf("list kernels: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	var (
		generated []string
		errs      []error
	)
	for _, path := range files {
		entry, err := generateSystem(path, includeBase, outDir, pkg)
		if err != nil {
			log.Error("system generation failed", zap.String("kernel", path), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		log.Info("generated system", zap.String("name", entry), zap.String("kernel", path))
		generated = append(generated, entry)
	}
	return generated, errors.Join(errs...)
}

func generateSystem(path, includeBase, outDir, pkg string) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	code, err := ResolveIncludes(string(source), includeBase, make(map[string]bool))
	if err != nil {
		return "", err
	}

	entry := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out, err := SystemSource(pkg, filepath.Base(path), entry, code)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(outDir, entry+".go"), out, 0o644); err != nil {
		return "", err
	}
	return entry, nil
}
