package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/schema"
	"github.com/roach88/gqlc/internal/syntax"
)

// Error code constants for command-level failures. Document diagnostics
// carry their own codes from internal/diag.
const (
	ErrCodeGeneric     = "E900" // Generic/unknown error
	ErrCodeConfig      = "E901" // Config file unreadable or invalid
	ErrCodeNotFound    = "E902" // Path not found
	ErrCodeNoFiles     = "E903" // No documents found
	ErrCodeNoSchema    = "E904" // No schema given
	ErrCodeSchemaLoad  = "E905" // Schema failed to load
	ErrCodeCache       = "E906" // Cache unavailable
	ErrCodeWriteFailed = "E907" // File write error
	ErrCodeStage       = "E908" // Unknown pipeline stage
)

// documentExts lists the extensions picked up when walking a directory.
var documentExts = []string{".graphql", ".gql"}

// LoadError represents an error that occurred while loading the project.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Input is one document file. Doc is nil when the file failed to parse; the
// parse diagnostics are in Err.
type Input struct {
	Key  diag.SourceKey
	Text string
	Doc  *syntax.Document
	Err  error
}

// Project is everything a command needs: the schema, the parsed
// documents and the effective settings after flags override the config.
type Project struct {
	Schema      *schema.Schema
	Inputs      []Input
	Flags       config.FeatureFlags
	Cache       string
	Parallelism int
}

// Sources maps every input to its text for diagnostic excerpts.
func (p *Project) Sources() diag.Sources {
	out := make(diag.Sources, len(p.Inputs))
	for _, in := range p.Inputs {
		out[in.Key] = in.Text
	}
	return out
}

// LoadProject resolves settings from the config file and flags, loads the
// schema and parses every document named by paths (or by the config when
// paths is empty).
func LoadProject(opts *RootOptions, paths []string) (*Project, error) {
	cfg := &config.Config{}
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
		}
		cfg = loaded
	}

	if len(opts.Schema) > 0 {
		cfg.Schema = opts.Schema
	}
	if len(paths) > 0 {
		cfg.Documents = paths
	}
	if opts.requiredPrefixSet {
		cfg.FeatureFlags.EnableRequiredTransformForPrefix = config.Prefix(opts.RequiredPrefix)
	}
	if opts.parallelismSet {
		cfg.Parallelism = opts.Parallelism
	}
	if opts.Cache != "" {
		cfg.Cache = opts.Cache
	}

	if len(cfg.Schema) == 0 {
		return nil, &LoadError{Code: ErrCodeNoSchema, Message: "no schema: pass --schema or set schema in the config file"}
	}

	s, err := LoadSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}

	files, err := FindDocuments(cfg.Documents)
	if err != nil {
		return nil, err
	}

	inputs := make([]Input, len(files))
	for i, path := range files {
		inputs[i] = ParseInput(path)
	}

	return &Project{
		Schema:      s,
		Inputs:      inputs,
		Flags:       cfg.FeatureFlags,
		Cache:       cfg.Cache,
		Parallelism: cfg.Parallelism,
	}, nil
}

// LoadSchema reads and loads the SDL files.
func LoadSchema(paths []string) (*schema.Schema, error) {
	sources := make([]*ast.Source, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema file not found: %s", path), Err: err}
		}
		sources[i] = &ast.Source{Name: path, Input: string(data)}
	}

	s, err := schema.Load(sources...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchemaLoad, Message: fmt.Sprintf("loading schema: %v", err), Err: err}
	}
	return s, nil
}

// FindDocuments expands paths into document files. Directories are walked
// for .graphql and .gql files. The result is sorted and deduplicated.
func FindDocuments(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document path not found: %s", path), Err: err}
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(documentExts, filepath.Ext(p)) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err), Err: err}
		}
	}

	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: "no documents found"}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// ParseInput reads and parses one document. Read and parse failures are
// recorded on the Input rather than returned, so one bad file never hides
// the others.
func ParseInput(path string) Input {
	in := Input{Key: diag.SourceKey(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		in.Err = fmt.Errorf("failed to read document: %w", err)
		return in
	}
	in.Text = string(data)
	in.Doc, in.Err = syntax.Parse(in.Key, in.Text)
	return in
}
