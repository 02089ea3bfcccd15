// Package site writes the generated artifacts into the output directory:
//
//	<dir>/users.json          raw user records
//	<dir>/<page>.html         overview pages, 1-indexed
//	<dir>/users/<uuid>.html   one profile per user
//
// It also reads a previously written users.json back.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usersite/internal/models"
)

const (
	UsersFileName = "users.json"
	ProfilesDir   = "users"
	pageExt       = ".html"
	dirPerm       = 0755
	filePerm      = 0644
)

var ErrMalformedUsersFile = errors.New("malformed users file")

// Writer is bound to one output directory.
type Writer struct {
	dir string
}

func New(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Prepare creates the output directory and its profiles subdirectory.
func (w *Writer) Prepare() error {
	if err := os.MkdirAll(filepath.Join(w.dir, ProfilesDir), dirPerm); err != nil {
		return fmt.Errorf("in internal/site/site.go/Prepare(): error while creating %q: %w", w.dir, err)
	}

	return nil
}

// WriteUsers dumps the records into users.json.
func (w *Writer) WriteUsers(users []models.User) error {
	if users == nil {
		users = []models.User{}
	}

	jsonData, err := json.MarshalIndent(users, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	return writeFile(filepath.Join(w.dir, UsersFileName), jsonData)
}

// WriteOverview writes one file per page and returns the written paths.
func (w *Writer) WriteOverview(pages map[string]string) ([]string, error) {
	return writeDocuments(w.dir, pages)
}

// WriteProfiles writes one file per UUID into the profiles subdirectory.
func (w *Writer) WriteProfiles(profiles map[string]string) ([]string, error) {
	return writeDocuments(filepath.Join(w.dir, ProfilesDir), profiles)
}

func writeDocuments(dir string, documents map[string]string) ([]string, error) {
	names := funk.Keys(documents).([]string)
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || filepath.Base(name) != name {
			return paths, fmt.Errorf("in internal/site/site.go/writeDocuments(): refusing to write %q outside of %q", name, dir)
		}

		path := filepath.Join(dir, name+pageExt)
		if err := writeFile(path, []byte(documents[name])); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writeFile(fileName string, data []byte) error {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		return fmt.Errorf("error writing to file %s: %w", fileName, err)
	}

	return file.Close()
}

// ReadUsers decodes a users.json written by WriteUsers.
func ReadUsers(fileName string) ([]models.User, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var users []models.User
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	err = decoder.Decode(&users)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedUsersFile, fileName, err)
	}

	for i, usr := range users {
		if err := usr.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: record %d: %v", ErrMalformedUsersFile, fileName, i, err)
		}
	}

	return users, nil
}

// FileSource serves users from a previously written users.json.
type FileSource struct {
	fileName string
}

func NewFileSource(fileName string) *FileSource {
	return &FileSource{fileName: fileName}
}

func (s *FileSource) FetchUsers(_ context.Context) ([]models.User, error) {
	return ReadUsers(s.fileName)
}
