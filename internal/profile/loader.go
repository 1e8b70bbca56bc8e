package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled during profile loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error code constants.
const (
	ErrCodeGeneric     = "P001" // Generic/unknown error
	ErrCodeScanError   = "P002" // Directory scan error
	ErrCodeNoFiles     = "P003" // No CUE files found
	ErrCodeLoadFailed  = "P004" // CUE load failed
	ErrCodeNotFound    = "P005" // Path not found
	ErrCodeBuildFailed = "P006" // CUE build failed

	ErrCodeBadField = "P101" // Field has the wrong type
	ErrCodePageSize = "P102" // page_size must be positive
	ErrCodeBadList  = "P103" // synthetics must be a list of strings
)

// LoadError is a profile loading problem with a machine-readable code and,
// when available, the CUE source position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads CUE profile files from a directory and overlays them on the
// built-in defaults. Files share one package and declare profiles under a
// top-level "table" struct keyed by table name:
//
//	package profiles
//
//	table: items: {
//		date:      "created_at"
//		modified:  "updated_at"
//		order:     "name"
//		page_size: 50
//	}
func Load(dir string, mode LoadMode) (Set, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("profile directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing profile directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	set := Defaults()
	var errs []error

	tablesVal := value.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return set, nil
	}
	iter, iterErr := tablesVal.Fields()
	if iterErr != nil {
		return set, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating tables: %v", iterErr)}}
	}
	for iter.Next() {
		name := iter.Label()
		t, tableErrs := compileTable(name, iter.Value(), set[name])
		if len(tableErrs) > 0 {
			errs = append(errs, tableErrs...)
			if mode == LoadModeFailFast {
				return set, errs
			}
			continue
		}
		set[name] = t
	}
	return set, errs
}

// compileTable overlays one CUE table declaration on a base profile
// (zero-valued when the table has no built-in default).
func compileTable(name string, v cue.Value, base Table) (Table, []error) {
	t := base
	t.Name = name
	var errs []error

	stringField := func(field string, dst *string) {
		fv := v.LookupPath(cue.ParsePath(field))
		if !fv.Exists() {
			return
		}
		s, err := fv.String()
		if err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeBadField,
				Message: fmt.Sprintf("table %s: %s must be a string: %v", name, field, err),
				Pos:     fv.Pos(),
			})
			return
		}
		*dst = s
	}

	stringField("alias", &t.Alias)
	stringField("date", &t.DateColumn)
	stringField("modified", &t.ModifiedColumn)
	stringField("order", &t.OrderColumn)

	if fv := v.LookupPath(cue.ParsePath("page_size")); fv.Exists() {
		n, err := fv.Int64()
		if err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeBadField,
				Message: fmt.Sprintf("table %s: page_size must be an integer: %v", name, err),
				Pos:     fv.Pos(),
			})
		} else if n <= 0 {
			errs = append(errs, &LoadError{
				Code:    ErrCodePageSize,
				Message: fmt.Sprintf("table %s: page_size must be positive, got %d", name, n),
				Pos:     fv.Pos(),
			})
		} else {
			t.PageSize = int(n)
		}
	}

	if fv := v.LookupPath(cue.ParsePath("synthetics")); fv.Exists() {
		listIter, err := fv.List()
		if err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrCodeBadList,
				Message: fmt.Sprintf("table %s: synthetics must be a list: %v", name, err),
				Pos:     fv.Pos(),
			})
		} else {
			var names []string
			for listIter.Next() {
				s, serr := listIter.Value().String()
				if serr != nil {
					errs = append(errs, &LoadError{
						Code:    ErrCodeBadList,
						Message: fmt.Sprintf("table %s: synthetics entries must be strings: %v", name, serr),
						Pos:     listIter.Value().Pos(),
					})
					continue
				}
				names = append(names, s)
			}
			t.Synthetics = names
		}
	}

	return t, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
