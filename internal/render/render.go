// Package render turns user records into standalone HTML documents:
// paginated overview pages and one profile page per user.
package render

import (
	"bytes"
	"crypto/rand"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math/big"
	"strconv"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usersite/internal/models"
)

const (
	// Title is the site-wide header shown on every page.
	Title = "Fabians Webscraping Adventure"

	// Flag is the hidden marker carried by every profile page.
	Flag = "OLA-WEBSCRAPING-nS7KugKGCE"
)

var ErrNoUsers = errors.New("no users to render")

var ErrInvalidPageSize = errors.New("page size must be positive")

var ErrEmptyRange = errors.New("cannot pick from an empty range")

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type overviewPage struct {
	Title  string
	Number int
	Prev   int
	Next   int
	Users  []models.User
}

type profilePage struct {
	Title    string
	User     models.User
	Featured bool
	Flag     string
}

// Picker returns an index in [0, n).
type Picker func(n int) (int, error)

// CryptoPicker draws the index uniformly from crypto/rand.
func CryptoPicker(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: n = %d", ErrEmptyRange, n)
	}

	index, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}

	return int(index.Int64()), nil
}

// Profiles is the result of one profile rendering run.
type Profiles struct {
	// Pages maps a user's UUID to its HTML document.
	Pages    map[string]string
	Featured models.User
}

// PageCount returns the number of full pages. A trailing partial page is not counted.
func PageCount(total, pageSize int) int {
	if pageSize < 1 {
		return 0
	}

	return total / pageSize
}

// Paginate splits users into full pages of pageSize users, dropping the remainder.
func Paginate(users []models.User, pageSize int) ([][]models.User, error) {
	if pageSize < 1 {
		return nil, ErrInvalidPageSize
	}

	chunks := funk.Chunk(users, pageSize).([][]models.User)

	return chunks[:PageCount(len(users), pageSize)], nil
}

// RenderOverview renders the overview pages keyed by their 1-based number.
func RenderOverview(users []models.User, pageSize int) (map[string]string, error) {
	chunks, err := Paginate(users, pageSize)
	if err != nil {
		return nil, err
	}

	pages := make(map[string]string, len(chunks))
	for i, chunk := range chunks {
		page := overviewPage{
			Title:  Title,
			Number: i + 1,
			Users:  chunk,
		}
		if i > 0 {
			page.Prev = i
		}
		if i < len(chunks)-1 {
			page.Next = i + 2
		}

		doc, err := execute("overview.html", page)
		if err != nil {
			return nil, err
		}
		pages[strconv.Itoa(page.Number)] = doc
	}

	return pages, nil
}

// RenderProfiles picks the featured user once and renders a profile for every user.
func RenderProfiles(users []models.User, pick Picker) (Profiles, error) {
	if len(users) == 0 {
		return Profiles{}, ErrNoUsers
	}

	featuredIndex, err := pick(len(users))
	if err != nil {
		return Profiles{}, fmt.Errorf("in internal/render/render.go/RenderProfiles(): error while picking the featured user: %w", err)
	}
	if featuredIndex < 0 || featuredIndex >= len(users) {
		return Profiles{}, fmt.Errorf("featured index %d out of range [0, %d)", featuredIndex, len(users))
	}

	result := Profiles{
		Pages:    make(map[string]string, len(users)),
		Featured: users[featuredIndex],
	}
	for i, usr := range users {
		doc, err := execute("profile.html", profilePage{
			Title:    Title,
			User:     usr,
			Featured: i == featuredIndex,
			Flag:     Flag,
		})
		if err != nil {
			return Profiles{}, err
		}
		result.Pages[usr.UUID] = doc
	}

	return result, nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("in internal/render/render.go/execute(): error while rendering %s: %w", name, err)
	}

	return buf.String(), nil
}
