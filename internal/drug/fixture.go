package drug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FixtureError reports a seed fixture that could not be used.
type FixtureError struct {
	Path string
	Err  error
}

func (e *FixtureError) Error() string {
	return fmt.Sprintf("fixture %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrFixture and the underlying cause.
func (e *FixtureError) Unwrap() []error {
	return []error{ErrFixture, e.Err}
}

type fixtureRecord struct {
	ID         string `validate:"omitempty,uuid"`
	Code       string `validate:"required"`
	LaunchDate bool   `validate:"required"`
}

// LoadFixture reads and validates a JSON array of drugs.
func LoadFixture(path string) ([]Drug, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &FixtureError{Path: path, Err: err}
	}

	var drugs []Drug
	if err := json.Unmarshal(b, &drugs); err != nil {
		return nil, &FixtureError{Path: path, Err: err}
	}
	if drugs == nil {
		return nil, &FixtureError{Path: path, Err: fmt.Errorf("expected a JSON array of drugs")}
	}

	for i, d := range drugs {
		rec := fixtureRecord{ID: d.ID, Code: strings.TrimSpace(d.Code), LaunchDate: !d.LaunchDate.IsZero()}
		if err := validate.Struct(rec); err != nil {
			return nil, &FixtureError{Path: path, Err: fmt.Errorf("record %d: %s", i, describeValidation(err))}
		}
	}
	return drugs, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "ID":
			msgs = append(msgs, "id must be a UUID")
		case "Code":
			msgs = append(msgs, "code is required")
		case "LaunchDate":
			msgs = append(msgs, "launchDate is required")
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return strings.Join(msgs, "; ")
}

// ResolveFixturePath anchors a relative path at the executable directory,
// falling back to the working directory when the file is not there.
func ResolveFixturePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}
