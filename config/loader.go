package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/gitinfo/errors"
)

// schema constrains CUE settings files. The definition is closed, so
// misspelled fields are rejected.
const schema = `
#Settings: {
	changelog?: {
		startingCommit?:     string
		startingTag?:        string
		markdown?:           bool
		projectUrl?:         string
		output?:             string
		conventionalGroups?: bool
	}
	version?: {
		tagPrefix?:       string
		noPrefix?:        bool
		tagPattern?:      string
		prereleaseLabel?: string
		metadata?:        bool
	}
	backends?: [...("cli" | "library")]
}
`

// Load reads the settings file at path from fsys. The format follows the
// file extension: .cue, .yaml or .yml. The result is validated.
func Load(fsys billy.Filesystem, path string) (*Settings, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigLoadFailed,
			"failed to read settings",
			map[string]interface{}{"path": path},
		)
	}

	var s *Settings
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		s, err = decodeCUE(path, data)
	case ".yaml", ".yml":
		s, err = decodeYAML(path, data)
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unsupported settings format %q for %s", ext, path)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeCUE(path string, data []byte) (*Settings, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema, cue.Filename("settings-schema.cue")).LookupPath(cue.ParsePath("#Settings"))
	if err := def.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to compile settings schema")
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigLoadFailed,
			"failed to compile settings",
			map[string]interface{}{"path": path},
		)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeSchemaFailed,
			"settings do not match schema",
			map[string]interface{}{"path": path},
		)
	}

	var s Settings
	if err := v.Decode(&s); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"failed to decode settings",
			map[string]interface{}{"path": path},
		)
	}
	return &s, nil
}

func decodeYAML(path string, data []byte) (*Settings, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Settings
	if err := dec.Decode(&s); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"failed to decode settings",
			map[string]interface{}{"path": path},
		)
	}
	return &s, nil
}
