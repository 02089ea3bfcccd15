package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersite/internal/models"
)

func makeUsers(n int) []models.User {
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, models.User{
			Name:  fmt.Sprintf("User %03d", i),
			Mail:  fmt.Sprintf("user%03d@example.com", i),
			Phone: fmt.Sprintf("0171-%07d", i),
			City:  "Berlin",
			Image: fmt.Sprintf("https://randomuser.me/api/portraits/women/%d.jpg", i%100),
			UUID:  uuid.NewString(),
		})
	}
	return users
}

func fixedPicker(index int) Picker {
	return func(n int) (int, error) {
		return index, nil
	}
}

func TestPageCount(t *testing.T) {
	testCases := []struct {
		total    int
		pageSize int
		want     int
	}{
		{total: 100, pageSize: 10, want: 10},
		{total: 95, pageSize: 10, want: 9},
		{total: 9, pageSize: 10, want: 0},
		{total: 0, pageSize: 10, want: 0},
		{total: 101, pageSize: 10, want: 10},
		{total: 7, pageSize: 1, want: 7},
		{total: 7, pageSize: 0, want: 0},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%d/%d", testCase.total, testCase.pageSize), func(t *testing.T) {
			assert.Equal(t, testCase.want, PageCount(testCase.total, testCase.pageSize))
		})
	}
}

func TestPaginate(t *testing.T) {
	users := makeUsers(95)

	chunks, err := Paginate(users, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 9)
	for i, chunk := range chunks {
		assert.Equal(t, users[i*10:(i+1)*10], chunk)
	}

	_, err = Paginate(users, 0)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	chunks, err = Paginate(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRenderOverviewPageCount(t *testing.T) {
	testCases := []struct {
		name  string
		users int
		pages int
	}{
		{name: "full pages only", users: 100, pages: 10},
		{name: "trailing partial page is dropped", users: 95, pages: 9},
		{name: "less than one page", users: 5, pages: 0},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			pages, err := RenderOverview(makeUsers(testCase.users), 10)
			require.NoError(t, err)
			assert.Len(t, pages, testCase.pages)
			for i := 1; i <= testCase.pages; i++ {
				assert.Contains(t, pages, strconv.Itoa(i))
			}
		})
	}
}

func TestRenderOverviewNavigation(t *testing.T) {
	pages, err := RenderOverview(makeUsers(100), 10)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		page := pages[strconv.Itoa(i)]

		prevLinks := strings.Count(page, `class="prev"`)
		nextLinks := strings.Count(page, `class="next"`)
		switch i {
		case 1:
			assert.Equal(t, 0, prevLinks, "page 1 must not link backwards")
			assert.Equal(t, 1, nextLinks)
		case 10:
			assert.Equal(t, 1, prevLinks)
			assert.Equal(t, 0, nextLinks, "the last page must not link forwards")
		default:
			assert.Equal(t, 1, prevLinks, "page %d", i)
			assert.Equal(t, 1, nextLinks, "page %d", i)
		}

		if i > 1 {
			assert.Contains(t, page, fmt.Sprintf(`<a class="prev" href="%d.html">&lt;</a>`, i-1))
		}
		if i < 10 {
			assert.Contains(t, page, fmt.Sprintf(`<a class="next" href="%d.html">&gt;</a>`, i+1))
		}
		assert.Contains(t, page, fmt.Sprintf(`<a href="#">%d</a>`, i))
	}
}

func TestRenderOverviewSinglePage(t *testing.T) {
	pages, err := RenderOverview(makeUsers(10), 10)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.NotContains(t, pages["1"], `class="prev"`)
	assert.NotContains(t, pages["1"], `class="next"`)
}

func TestRenderOverviewEntries(t *testing.T) {
	users := makeUsers(20)

	pages, err := RenderOverview(users, 10)
	require.NoError(t, err)

	assert.Contains(t, pages["1"], "<h1>"+Title+"</h1>")
	for i, usr := range users {
		page := pages[strconv.Itoa(i/10+1)]
		assert.Contains(t, page, `<span class="name">`+usr.Name+`</span>`)
		assert.Contains(t, page, `<a class="profile" href="users/`+usr.UUID+`.html">Profil</a>`)
	}
	assert.Equal(t, 10, strings.Count(pages["2"], "<li>"))
	assert.NotContains(t, pages["2"], users[0].UUID)
}

func TestRenderOverviewDeterministic(t *testing.T) {
	users := makeUsers(100)

	first, err := RenderOverview(users, 10)
	require.NoError(t, err)
	second, err := RenderOverview(users, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderOverviewEscapes(t *testing.T) {
	users := makeUsers(10)
	users[3].Name = `<script>alert("x")</script>`

	pages, err := RenderOverview(users, 10)
	require.NoError(t, err)

	assert.NotContains(t, pages["1"], "<script>")
	assert.Contains(t, pages["1"], "&lt;script&gt;")
}

func TestRenderOverviewInvalidPageSize(t *testing.T) {
	_, err := RenderOverview(makeUsers(10), 0)
	assert.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestRenderProfiles(t *testing.T) {
	users := makeUsers(100)

	profiles, err := RenderProfiles(users, fixedPicker(42))
	require.NoError(t, err)

	require.Len(t, profiles.Pages, len(users))
	assert.Equal(t, users[42], profiles.Featured)

	featured := 0
	for _, usr := range users {
		page, ok := profiles.Pages[usr.UUID]
		require.True(t, ok, "missing profile for %s", usr.UUID)

		if strings.Contains(page, `class="name holy-user"`) {
			featured++
			assert.Equal(t, users[42].UUID, usr.UUID)
		} else {
			assert.Contains(t, page, `<h3 class="name">`+usr.Name+`</h3>`)
		}

		assert.Contains(t, page, `<img src="`+usr.Image+`"`)
		assert.Contains(t, page, `<span class="mail">`+usr.Mail+`</span>`)
		assert.Contains(t, page, `<span class="phone">`+usr.Phone+`</span>`)
		assert.Contains(t, page, `<span class="city">`+usr.City+`</span>`)
		assert.Contains(t, page, `<p class="hidden"><b>Flag: </b><span class="flag">`+Flag+`</span></p>`)
	}
	assert.Equal(t, 1, featured)
}

func TestRenderProfilesFlagIsConstant(t *testing.T) {
	users := makeUsers(30)

	profiles, err := RenderProfiles(users, CryptoPicker)
	require.NoError(t, err)

	for _, page := range profiles.Pages {
		start := strings.Index(page, `<span class="flag">`)
		require.NotEqual(t, -1, start)
		rest := page[start+len(`<span class="flag">`):]
		assert.Equal(t, "OLA-WEBSCRAPING-nS7KugKGCE", rest[:strings.Index(rest, "</span>")])
	}
}

func TestRenderProfilesErrors(t *testing.T) {
	_, err := RenderProfiles(nil, CryptoPicker)
	assert.ErrorIs(t, err, ErrNoUsers)

	pickerErr := errors.New("entropy exhausted")
	_, err = RenderProfiles(makeUsers(3), func(n int) (int, error) {
		return 0, pickerErr
	})
	assert.ErrorIs(t, err, pickerErr)

	_, err = RenderProfiles(makeUsers(3), fixedPicker(3))
	assert.Error(t, err)
}

func TestRenderProfilesFeaturedIsUniform(t *testing.T) {
	const (
		usersCount = 10
		runs       = 5000
		// Chi-square with 9 degrees of freedom exceeds 40 with probability below 1e-5.
		chiSquareLimit = 40.0
	)

	users := makeUsers(usersCount)
	counts := map[string]int{}
	for run := 0; run < runs; run++ {
		profiles, err := RenderProfiles(users, CryptoPicker)
		require.NoError(t, err)

		featured := 0
		for id, page := range profiles.Pages {
			if strings.Contains(page, "holy-user\"") {
				featured++
				counts[id]++
			}
		}
		require.Equal(t, 1, featured)
	}

	expected := float64(runs) / usersCount
	chiSquare := 0.0
	for _, usr := range users {
		diff := float64(counts[usr.UUID]) - expected
		chiSquare += diff * diff / expected
	}
	assert.Less(t, chiSquare, chiSquareLimit, "counts: %v", counts)
}

func TestCryptoPicker(t *testing.T) {
	for i := 0; i < 1000; i++ {
		index, err := CryptoPicker(7)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, index, 0)
		assert.Less(t, index, 7)
	}

	for _, n := range []int{0, -3} {
		index, err := CryptoPicker(n)
		assert.ErrorIs(t, err, ErrEmptyRange)
		assert.Zero(t, index)
	}
}
