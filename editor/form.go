package editor

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eringen/wikiedit/pageapi"
)

const maxTitleLen = 200

var (
	// ErrInvalidForm wraps every validation failure on save.
	ErrInvalidForm = errors.New("editor: invalid form")
	// ErrTitleRequired is reported when the title is blank.
	ErrTitleRequired = errors.New("editor: title is required")
	// ErrInvalidSlug is returned when a page slug is not a relative path.
	ErrInvalidSlug = errors.New("editor: invalid page slug")
)

// relativeDir accepts an empty dir or a relative page path.
var relativeDir = validation.By(func(value interface{}) error {
	dir, _ := value.(string)
	if dir == "" || pageapi.ValidPath(dir) {
		return nil
	}
	return errors.New("must be a relative path without . or .. segments")
})

// Form holds the editor's fields. Content is the backing field mirrored
// from the widget buffer.
type Form struct {
	Title   string
	Content string
	Private bool
	Dir     string
}

// Validate checks the fields a commit needs.
func (f Form) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidForm, ErrTitleRequired)
	}
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&f.Dir, relativeDir),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}

func (f Form) commit() pageapi.Commit {
	return pageapi.Commit{
		Title:   f.Title,
		Content: f.Content,
		Private: f.Private,
		Dir:     f.Dir,
	}
}
