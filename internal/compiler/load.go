package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/kindseq/internal/ir"
)

// LoadStage names the step of LoadDir that failed.
type LoadStage string

const (
	StageScan    LoadStage = "scan"    // directory missing or unreadable
	StageNoFiles LoadStage = "nofiles" // directory holds no .cue files
	StageLoad    LoadStage = "load"    // cue/load rejected the package
	StageBuild   LoadStage = "build"   // the package does not evaluate
	StageCompile LoadStage = "compile" // CompileProgram rejected the value
)

// LoadError reports a failure to turn a directory into a program.
type LoadError struct {
	Dir   string
	Stage LoadStage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s (%s): %v", e.Dir, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// BuildDir evaluates the CUE package in dir. It returns the value and the
// number of .cue files found.
func BuildDir(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Dir: dir, Stage: StageScan, Err: err}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Dir: dir, Stage: StageScan, Err: fmt.Errorf("not a directory")}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Dir: dir, Stage: StageScan, Err: err}
	}
	if len(files) == 0 {
		return cue.Value{}, 0, &LoadError{Dir: dir, Stage: StageNoFiles, Err: fmt.Errorf("no CUE files found")}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, len(files), &LoadError{Dir: dir, Stage: StageLoad, Err: fmt.Errorf("no CUE instances loaded")}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, len(files), &LoadError{Dir: dir, Stage: StageLoad, Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Validate(); err != nil {
		return cue.Value{}, len(files), &LoadError{Dir: dir, Stage: StageBuild, Err: formatCUEError(err)}
	}
	return value, len(files), nil
}

// LoadDir builds and compiles the CUE package in dir. The program is not
// validated; see Validate.
func LoadDir(dir string) (*ir.Program, error) {
	value, _, err := BuildDir(dir)
	if err != nil {
		return nil, err
	}
	prog, err := CompileProgram(value)
	if err != nil {
		return nil, &LoadError{Dir: dir, Stage: StageCompile, Err: err}
	}
	return prog, nil
}

// FindCUEFiles walks dir and returns every .cue file path.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
