package mgldal

import (
	"os"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/userextra"
)

type PathsConfig struct {
	StylesDir string
	TraceDir  string
}

// NewPathsConfig expands "~" in the paths. Empty paths are left empty.
func NewPathsConfig(stylesDir, traceDir string) (*PathsConfig, errorsx.Error) {
	pc := new(PathsConfig)
	for _, pair := range []struct {
		in  string
		out *string
	}{{stylesDir, &pc.StylesDir}, {traceDir, &pc.TraceDir}} {
		if pair.in == "" {
			continue
		}
		expanded, err := userextra.ExpandUser(pair.in)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", pair.in)
		}
		*pair.out = expanded
	}

	return pc, nil
}

func (pc *PathsConfig) EnsurePaths() errorsx.Error {
	for _, dirPath := range []string{pc.StylesDir, pc.TraceDir} {
		if dirPath == "" {
			continue
		}
		err := os.MkdirAll(dirPath, 0755)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}
