package recognition

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/foxseedlab/kikitori/internal/recognition"
)

// DirModelResolver looks for the model directory next to the working
// directory, next to the executable, and up to three levels above them.
type DirModelResolver struct {
	name   string
	cwd    string
	exeDir string
}

func NewDirModelResolver(name string) *DirModelResolver {
	cwd, _ := os.Getwd()
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return &DirModelResolver{name: name, cwd: cwd, exeDir: exeDir}
}

func (r *DirModelResolver) ResolveModelPath() (string, error) {
	candidates := r.candidates()
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.IsDir() {
			slog.Debug("recognition model found", "path", c)
			return c, nil
		}
	}
	return "", &recognition.NotFoundError{Name: r.name, Candidates: candidates}
}

func (r *DirModelResolver) candidates() []string {
	if filepath.IsAbs(r.name) {
		return []string{filepath.Clean(r.name)}
	}
	var list []string
	seen := make(map[string]struct{})
	add := func(base string, up int) {
		if base == "" {
			return
		}
		parts := []string{base}
		for i := 0; i < up; i++ {
			parts = append(parts, "..")
		}
		parts = append(parts, r.name)
		p := filepath.Clean(filepath.Join(parts...))
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		list = append(list, p)
	}
	add(r.cwd, 0)
	add(r.exeDir, 0)
	add(r.cwd, 1)
	add(r.cwd, 2)
	add(r.cwd, 3)
	add(r.exeDir, 1)
	return list
}
